package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/enat-pos/api/internal/auth"
	"github.com/enat-pos/api/internal/database"
)

// SettingsReader is the subset of the store the gate needs.
type SettingsReader interface {
	GetSettings(ctx context.Context) (database.SettingsView, error)
}

// MaintenanceGate blocks guest traffic while maintenance mode is on. A valid
// staff token bypasses the gate, mirroring the hidden staff-access affordance
// on the interstitial. If the settings read fails the request passes: guests
// are never blocked by an infrastructure error.
func MaintenanceGate(store SettingsReader, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			settings, err := store.GetSettings(r.Context())
			if err != nil || !settings.IsMaintenanceMode {
				next.ServeHTTP(w, r)
				return
			}

			if hasStaffToken(r, jwtSecret) {
				next.ServeHTTP(w, r)
				return
			}

			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error":   "maintenance",
				"message": settings.MaintenanceMessage,
			})
		})
	}
}

func hasStaffToken(r *http.Request, jwtSecret string) bool {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return false
	}
	_, err := auth.ValidateToken(jwtSecret, parts[1])
	return err == nil
}
