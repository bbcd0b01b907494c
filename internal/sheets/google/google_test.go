package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"contribot/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type sheetsAPI struct {
	mu       sync.Mutex
	header   [][]any
	appended [][]any
	requests []string
}

func (a *sheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = append(a.requests, r.Method+" "+r.URL.Path)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a.appended = append(a.appended, vr.Values...)
		json.NewEncoder(w).Encode(map[string]any{
			"updates": map[string]any{"updatedRange": "Contributions!A2:J2"},
		})
	case r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(map[string]any{"values": a.header})
	case r.Method == http.MethodPut:
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a.header = vr.Values
		json.NewEncoder(w).Encode(map[string]any{})
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, api *sheetsAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return NewWithService(svc, "sheet-id", "Contributions")
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), " ", "Contributions", Credentials{JSON: "{}"})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("New() error = %v, want missing GOOGLE_SPREADSHEET_ID", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), "sheet-id", "Contributions", Credentials{})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("New() error = %v, want missing credentials", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), "sheet-id", "Contributions", Credentials{File: t.TempDir() + "/missing.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("New() error = %v, want read error", err)
	}
}

func TestClient_Append(t *testing.T) {
	api := &sheetsAPI{}
	c := newTestClient(t, api)

	name := "Bob"
	amount, _ := core.ParseAmount("12.5")
	contribution := core.Contribution{
		ID:         42,
		UserID:     7,
		Username:   "alice",
		Year:       2025,
		Month:      "March",
		Category:   core.CategoryFamily,
		MemberName: &name,
		Amount:     amount,
		ProofPath:  "screenshots/March/p.jpg",
		RecordedAt: time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC),
	}

	ref, err := c.Append(context.Background(), contribution)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if ref != "Contributions!A2:J2" {
		t.Errorf("Append() ref = %q", ref)
	}
	if len(api.appended) != 1 {
		t.Fatalf("appended %d rows, want 1", len(api.appended))
	}
	row := api.appended[0]
	if len(row) != len(core.RecordColumns) {
		t.Fatalf("row has %d cells, want %d", len(row), len(core.RecordColumns))
	}
	if row[0] != float64(42) || row[2] != "alice" || row[6] != "Bob" || row[7] != 12.5 {
		t.Errorf("row = %v", row)
	}
	if row[9] != "2025-03-04 05:06:07" {
		t.Errorf("recorded_at cell = %v", row[9])
	}
	if !strings.Contains(api.requests[0], "Contributions!A:J:append") {
		t.Errorf("request = %q, want append to Contributions!A:J", api.requests[0])
	}
}

func TestClient_AppendRequiresID(t *testing.T) {
	c := newTestClient(t, &sheetsAPI{})
	if _, err := c.Append(context.Background(), core.Contribution{}); err == nil {
		t.Fatal("Append() error = nil, want missing id")
	}
}

func TestClient_AppendWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	_, err := c.Append(context.Background(), core.Contribution{ID: 1})
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("Append() error = %v, want not initialized", err)
	}
}

func TestClient_EnsureHeader(t *testing.T) {
	api := &sheetsAPI{}
	c := newTestClient(t, api)

	if err := c.EnsureHeader(context.Background()); err != nil {
		t.Fatalf("EnsureHeader() error = %v", err)
	}
	if len(api.header) != 1 || len(api.header[0]) != len(core.RecordColumns) || api.header[0][0] != "id" {
		t.Fatalf("header = %v", api.header)
	}

	before := len(api.requests)
	if err := c.EnsureHeader(context.Background()); err != nil {
		t.Fatalf("second EnsureHeader() error = %v", err)
	}
	if got := len(api.requests) - before; got != 1 {
		t.Errorf("second EnsureHeader() made %d requests, want 1 (read only)", got)
	}
}
