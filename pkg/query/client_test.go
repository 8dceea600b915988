package query

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"optimus-dashboard/pkg/model"
	"optimus-dashboard/pkg/testutil"

	"github.com/gorilla/mux"
)

type fakeBackend struct {
	mu          sync.Mutex
	rules       []model.AlertRule
	lastSeconds string
}

func (b *fakeBackend) seconds() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSeconds
}

func newTestServer(t *testing.T, backend *fakeBackend) *httptest.Server {
	t.Helper()
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","timestamp":1700000000.5}`))
	}).Methods("GET")

	api.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# HELP telemetry_messages_total x\ntelemetry_messages_total 42\n"))
	}).Methods("GET")

	api.HandleFunc("/config/alert-rules", func(w http.ResponseWriter, r *http.Request) {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"rules": backend.rules})
	}).Methods("GET")

	api.HandleFunc("/config/alert-rules", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			http.Error(w, "expected json", http.StatusUnsupportedMediaType)
			return
		}
		var in []model.AlertRule
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, `{"detail":"bad rules"}`, http.StatusBadRequest)
			return
		}
		backend.mu.Lock()
		backend.rules = in
		backend.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"status": "success", "rules_count": len(in)})
	}).Methods("POST")

	api.HandleFunc("/telemetry/history", func(w http.ResponseWriter, r *http.Request) {
		samples := []model.TelemetrySample{testutil.Sample("r1", 1), testutil.Sample("r1", 2)}
		backend.mu.Lock()
		backend.lastSeconds = r.URL.Query().Get("seconds")
		backend.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"data": samples, "count": len(samples)})
	}).Methods("GET")

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Health(t *testing.T) {
	backend := &fakeBackend{rules: model.DefaultAlertRules()}
	srv := newTestServer(t, backend)
	c := New(srv.URL+"/api/", time.Second)

	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if h.Status != "ok" || h.Timestamp != 1700000000.5 {
		t.Errorf("unexpected health %+v", h)
	}
}

func TestClient_Metrics(t *testing.T) {
	backend := &fakeBackend{rules: model.DefaultAlertRules()}
	srv := newTestServer(t, backend)
	c := New(srv.URL+"/api", time.Second)

	text, err := c.Metrics(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if text != "# HELP telemetry_messages_total x\ntelemetry_messages_total 42\n" {
		t.Errorf("expected metrics text verbatim, got %q", text)
	}
}

func TestClient_AlertRulesRoundTrip(t *testing.T) {
	backend := &fakeBackend{rules: model.DefaultAlertRules()}
	srv := newTestServer(t, backend)
	c := New(srv.URL+"/api", time.Second)
	ctx := context.Background()

	got, err := c.AlertRules(ctx)
	if err != nil {
		t.Fatalf("get rules: %v", err)
	}
	if len(got) != 3 || got[0].Name != "low_battery" {
		t.Fatalf("unexpected rules %+v", got)
	}

	update := []model.AlertRule{{Name: "overheat", Condition: "temp_c", Threshold: 70, Enabled: true}}
	resp, err := c.UpdateAlertRules(ctx, update)
	if err != nil {
		t.Fatalf("update rules: %v", err)
	}
	if resp.Status != "success" || resp.RulesCount != 1 {
		t.Errorf("unexpected update response %+v", resp)
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if len(backend.rules) != 1 || backend.rules[0].Threshold != 70 {
		t.Errorf("server did not receive the new rules: %+v", backend.rules)
	}
}

func TestClient_History(t *testing.T) {
	backend := &fakeBackend{rules: model.DefaultAlertRules()}
	srv := newTestServer(t, backend)
	c := New(srv.URL+"/api", time.Second)

	testCases := []struct {
		seconds int
		want    string
	}{
		{0, "300"},
		{-5, "300"},
		{60, "60"},
	}
	for _, tc := range testCases {
		resp, err := c.History(context.Background(), tc.seconds)
		if err != nil {
			t.Fatalf("history(%d): %v", tc.seconds, err)
		}
		if resp.Count != 2 || len(resp.Data) != 2 || resp.Data[1].TS != 2 {
			t.Errorf("history(%d): unexpected response %+v", tc.seconds, resp)
		}
		if got := backend.seconds(); got != tc.want {
			t.Errorf("history(%d): expected seconds=%s on the wire, got %q", tc.seconds, tc.want, got)
		}
	}
}

func TestClient_HTTPError(t *testing.T) {
	backend := &fakeBackend{rules: model.DefaultAlertRules()}
	srv := newTestServer(t, backend)
	c := New(srv.URL+"/api", time.Second)

	_, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("sanity: %v", err)
	}

	c = New(srv.URL+"/missing", time.Second)
	_, err = c.Health(context.Background())
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %T %v", err, err)
	}
	if httpErr.StatusCode != http.StatusNotFound || httpErr.Method != "GET" {
		t.Errorf("unexpected error %+v", httpErr)
	}
}

func TestClient_NetworkError(t *testing.T) {
	c := New("http://127.0.0.1:1/api", 500*time.Millisecond)

	_, err := c.Health(context.Background())
	if err == nil {
		t.Fatal("expected a network error")
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		t.Errorf("network failures must not look like HTTP errors: %v", err)
	}
}

func TestClient_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>proxy error</html>"))
	}))
	defer srv.Close()

	if _, err := New(srv.URL, time.Second).AlertRules(context.Background()); err == nil {
		t.Fatal("expected decode error for a non-JSON body")
	}
}
