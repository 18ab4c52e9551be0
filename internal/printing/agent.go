package printing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrNoPrinter means no receipt printer is configured in settings; callers
// fall back to PDF.
var ErrNoPrinter = errors.New("no receipt printer configured")

// Agent talks to the local print agent that owns the thermal printer.
type Agent struct {
	baseURL string
	client  *http.Client
}

// NewAgent creates an Agent for the given base URL.
func NewAgent(baseURL string) *Agent {
	return &Agent{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type printRequest struct {
	Printer string   `json:"printer"`
	Lines   []string `json:"lines"`
}

// Print renders the receipt and sends it to the named printer. Errors carry
// enough detail for the dashboard to tell "agent down" from "agent refused".
func (a *Agent) Print(ctx context.Context, printerName string, receipt Receipt) error {
	if printerName == "" {
		return ErrNoPrinter
	}

	body, err := json.Marshal(printRequest{
		Printer: printerName,
		Lines:   receipt.Render(),
	})
	if err != nil {
		return fmt.Errorf("marshal print request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/print", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build print request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("print agent unreachable at %s: %w", a.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("print agent rejected job for printer %q: status %d", printerName, resp.StatusCode)
	}
	return nil
}
