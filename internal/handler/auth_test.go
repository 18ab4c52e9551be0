package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/enat-pos/api/internal/auth"
	"github.com/enat-pos/api/internal/database"
	"github.com/enat-pos/api/internal/enum"
	"github.com/enat-pos/api/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

// --- Mock store ---

type mockAuthStore struct {
	users map[string]database.User // keyed by lowercase username
	logs  []database.CreateLoginLogParams
}

func newMockAuthStore() *mockAuthStore {
	return &mockAuthStore{users: make(map[string]database.User)}
}

func (m *mockAuthStore) addUser(u database.User) {
	m.users[lower(u.Username)] = u
}

func (m *mockAuthStore) GetUserByUsername(_ context.Context, username string) (database.User, error) {
	u, ok := m.users[lower(username)]
	if !ok {
		return database.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockAuthStore) CreateLoginLog(_ context.Context, arg database.CreateLoginLogParams) (database.LoginLog, error) {
	m.logs = append(m.logs, arg)
	return database.LoginLog{ID: uuid.New(), Username: arg.Username, Role: arg.Role, Status: arg.Status}, nil
}

func lower(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// --- Helpers ---

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(h)
}

func makeTestUser(t *testing.T, role string) database.User {
	t.Helper()
	return database.User{
		ID:             uuid.New(),
		Username:       "Selam",
		HashedPassword: hashPassword(t, "correct-password"),
		Role:           role,
		FullName:       "Selam T.",
		IsActive:       true,
	}
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeInto(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// --- Login tests ---

func TestLogin_ValidCredentials(t *testing.T) {
	store := newMockAuthStore()
	user := makeTestUser(t, enum.UserRoleAdmin)
	store.addUser(user)

	h := handler.NewAuthHandler(store, testSecret)
	r := chi.NewRouter()
	r.Route("/auth", h.RegisterRoutes)

	rr := postJSON(t, r, "/auth/login", map[string]string{
		"username": "Selam",
		"password": "correct-password",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	token, ok := resp["token"].(string)
	if !ok || token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := auth.ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("claims user ID: got %v, want %v", claims.UserID, user.ID)
	}
	if claims.Role != enum.UserRoleAdmin {
		t.Errorf("claims role: got %v, want ADMIN", claims.Role)
	}

	if len(store.logs) != 1 || store.logs[0].Status != enum.LoginStatusSuccess {
		t.Errorf("expected one SUCCESS login log, got %+v", store.logs)
	}
}

func TestLogin_CaseInsensitiveUsername(t *testing.T) {
	store := newMockAuthStore()
	store.addUser(makeTestUser(t, enum.UserRoleChef))

	h := handler.NewAuthHandler(store, testSecret)
	r := chi.NewRouter()
	r.Route("/auth", h.RegisterRoutes)

	rr := postJSON(t, r, "/auth/login", map[string]string{
		"username": "sElAm",
		"password": "correct-password",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	store := newMockAuthStore()
	store.addUser(makeTestUser(t, enum.UserRoleAdmin))

	h := handler.NewAuthHandler(store, testSecret)
	r := chi.NewRouter()
	r.Route("/auth", h.RegisterRoutes)

	rr := postJSON(t, r, "/auth/login", map[string]string{
		"username": "Selam",
		"password": "wrong-password",
	})

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	if len(store.logs) != 1 || store.logs[0].Status != enum.LoginStatusFailed {
		t.Errorf("expected one FAILED login log, got %+v", store.logs)
	}
}

func TestLogin_UserNotFound(t *testing.T) {
	store := newMockAuthStore()
	h := handler.NewAuthHandler(store, testSecret)
	r := chi.NewRouter()
	r.Route("/auth", h.RegisterRoutes)

	rr := postJSON(t, r, "/auth/login", map[string]string{
		"username": "nobody",
		"password": "password",
	})

	// Same response as a wrong password; no user enumeration.
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	resp := decodeResponse(t, rr)
	if resp["error"] != "invalid credentials" {
		t.Errorf("error: got %v, want invalid credentials", resp["error"])
	}
	if len(store.logs) != 1 || store.logs[0].Status != enum.LoginStatusFailed {
		t.Errorf("expected one FAILED login log, got %+v", store.logs)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	store := newMockAuthStore()
	h := handler.NewAuthHandler(store, testSecret)
	r := chi.NewRouter()
	r.Route("/auth", h.RegisterRoutes)

	rr := postJSON(t, r, "/auth/login", map[string]string{
		"username": "Selam",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
