// Command kitchen-display renders the open order queue in a terminal. It polls
// the API instead of holding a websocket so it survives flaky kitchen wifi.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/enat-pos/api/pkg/poller"
)

type order struct {
	ID        string    `json:"id"`
	TableName string    `json:"table_name"`
	Status    string    `json:"status"`
	Total     string    `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

type orderList struct {
	Orders []order `json:"orders"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func main() {
	apiURL := flag.String("api", "http://localhost:8081", "API base URL")
	username := flag.String("username", "chef", "staff username")
	password := flag.String("password", "", "staff password (or KITCHEN_PASSWORD)")
	interval := flag.Duration("interval", 5*time.Second, "poll interval")
	flag.Parse()

	pass := *password
	if pass == "" {
		pass = os.Getenv("KITCHEN_PASSWORD")
	}
	if pass == "" {
		log.Fatal("set -password or KITCHEN_PASSWORD")
	}

	token, err := login(*apiURL, *username, pass)
	if err != nil {
		log.Fatalf("login: %v", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	source := poller.SourceFunc(func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", *apiURL+"/api/staff/orders", nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("orders endpoint returned %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})

	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
	}()

	p := poller.New(source, poller.SinkFunc(render), *interval)
	p.Run(ctx)
}

func login(apiURL, username, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(apiURL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login returned %d", resp.StatusCode)
	}
	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", err
	}
	return lr.Token, nil
}

// render repaints the whole screen on each changed snapshot. Terminal output
// is cheap enough that diffing is not worth it.
func render(snapshot []byte) {
	var list orderList
	if err := json.Unmarshal(snapshot, &list); err != nil {
		log.Printf("bad snapshot: %v", err)
		return
	}

	var open []order
	for _, o := range list.Orders {
		if o.Status == "PENDING" || o.Status == "PREPARING" || o.Status == "READY" {
			open = append(open, o)
		}
	}

	fmt.Print("\033[2J\033[H")
	fmt.Printf("KITCHEN  %s  (%d open)\n\n", time.Now().Format("15:04:05"), len(open))
	if len(open) == 0 {
		fmt.Println("  all caught up")
		return
	}
	for _, o := range open {
		age := time.Since(o.CreatedAt).Round(time.Minute)
		fmt.Printf("  %-10s %-12s %-8s %6s  %s\n",
			shortID(o.ID), o.TableName, o.Status, o.Total, age)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
