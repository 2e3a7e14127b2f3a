package notionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"agentq/internal/config"
	"agentq/internal/domain"
)

func testClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New(config.Notion{
		APIKey:     "secret",
		DatabaseID: "db-1",
		BaseURL:    srv.URL,
	})
	return c, srv
}

const pageJSON = `{
	"id": "page-1",
	"created_time": "2025-03-10T08:00:00Z",
	"properties": {
		"Name":        {"title": [{"plain_text": "email_check acme"}]},
		"Status":      {"select": {"name": "queued"}},
		"Type":        {"select": {"name": "email_check"}},
		"Project":     {"select": {"name": "acme"}},
		"RequestedBy": {"select": {"name": "system"}},
		"Payload":     {"rich_text": [{"plain_text": "outputs/a.json"}]},
		"RunCount":    {"number": 2},
		"StartedAt":   {"date": {"start": "2025-03-10T09:00:00Z"}},
		"ParentTask":  {"relation": [{"id": "page-0"}]}
	}
}`

func TestListParsesTasks(t *testing.T) {
	var gotBody map[string]any
	c, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/databases/db-1/query" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("authorization = %q", auth)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprintf(w, `{"results": [%s]}`, pageJSON)
	}))
	defer srv.Close()

	start := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	tasks, err := c.List(context.Background(), domain.Filter{
		Type:             "email_check",
		Project:          "acme",
		RequestedBy:      "system",
		CreatedOnOrAfter: start,
		CreatedBefore:    start.AddDate(0, 0, 1),
		Limit:            1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks", len(tasks))
	}

	task := tasks[0]
	if task.ID != "page-1" || task.Type != "email_check" || task.Project != "acme" {
		t.Errorf("task = %+v", task)
	}
	if task.RunCount != 2 {
		t.Errorf("run_count = %d", task.RunCount)
	}
	if task.StartedAt == nil || !task.StartedAt.Equal(time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("started_at = %v", task.StartedAt)
	}
	if task.ParentTask != "page-0" {
		t.Errorf("parent_task = %q", task.ParentTask)
	}
	if task.Payload != "outputs/a.json" {
		t.Errorf("payload = %q", task.Payload)
	}

	if gotBody["page_size"] != float64(1) {
		t.Errorf("page_size = %v", gotBody["page_size"])
	}
	filter, _ := gotBody["filter"].(map[string]any)
	conds, _ := filter["and"].([]any)
	if len(conds) != 5 {
		t.Errorf("got %d filter conditions, want 5: %v", len(conds), filter)
	}
}

func TestCreateSendsStableFieldNames(t *testing.T) {
	var gotBody struct {
		Parent     map[string]string          `json:"parent"`
		Icon       map[string]any             `json:"icon"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	c, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/pages" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, pageJSON)
	}))
	defer srv.Close()

	_, err := c.Create(context.Background(), domain.NewTask{
		Name:        "email_check acme",
		Type:        "email_check",
		Project:     "acme",
		Payload:     "outputs/a.json",
		RequestedBy: domain.RequestedBySystem,
		ParentTask:  "page-0",
		Icon:        "📬",
	})
	if err != nil {
		t.Fatal(err)
	}

	if gotBody.Parent["database_id"] != "db-1" {
		t.Errorf("parent = %v", gotBody.Parent)
	}
	for _, name := range []string{"Name", "Status", "Type", "Project", "RequestedBy", "Payload", "ParentTask"} {
		if _, ok := gotBody.Properties[name]; !ok {
			t.Errorf("property %q missing from create body", name)
		}
	}
	if gotBody.Icon["emoji"] != "📬" {
		t.Errorf("icon = %v", gotBody.Icon)
	}
}

func TestUpdatePatchesOnlyGivenFields(t *testing.T) {
	var props map[string]json.RawMessage
	c, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/pages/page-1" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Properties map[string]json.RawMessage `json:"properties"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		props = body.Properties
		fmt.Fprint(w, pageJSON)
	}))
	defer srv.Close()

	_, err := c.Update(context.Background(), "page-1", domain.Patch{
		Status:    domain.StatusPtr(domain.StatusRunning),
		RunCount:  domain.IntPtr(3),
		LastError: domain.StrPtr(""),
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"Status", "RunCount", "LastError"} {
		if _, ok := props[name]; !ok {
			t.Errorf("property %q missing from patch", name)
		}
	}
	for _, name := range []string{"Result", "FinishedAt", "Name"} {
		if _, ok := props[name]; ok {
			t.Errorf("property %q should not be in patch", name)
		}
	}
}

func TestClipKeepsRunesIntact(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"short ascii", "plain error text"},
		{"long ascii", strings.Repeat("x", maxText+100)},
		{"multi-byte at the cut", "a" + strings.Repeat("é", maxText)},
		{"wide runes", strings.Repeat("→漢", maxText)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := clip(tc.text)
			if len(got) > maxText {
				t.Errorf("clip left %d bytes, max is %d", len(got), maxText)
			}
			if !utf8.ValidString(got) {
				t.Errorf("clip split a rune: %q...", got[len(got)-6:])
			}
			if !strings.HasPrefix(tc.text, got) {
				t.Error("clip is not a prefix of the input")
			}
		})
	}
}

func TestRateLimitRetried(t *testing.T) {
	attempts := 0
	c, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"results": []}`)
	}))
	defer srv.Close()

	_, err := c.List(context.Background(), domain.Filter{Status: domain.StatusQueued})
	if err != nil {
		t.Fatal(err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestClientErrorNotRetried(t *testing.T) {
	attempts := 0
	c, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, `{"message": "validation_error"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := c.Create(context.Background(), domain.NewTask{Name: "x", Type: "y", Project: "z", RequestedBy: "manual"})
	var storeErr *domain.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("err = %v, want StoreError", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}
