package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func doJSON(t *testing.T, srv *httptest.Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	_, srv := startTestServer(t)
	code, body := doJSON(t, srv, http.MethodGet, "/health", "")
	if code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health = %d %v", code, body)
	}
}

func TestAdminConfigReadAndUpdate(t *testing.T) {
	_, srv := startTestServer(t)

	code, body := doJSON(t, srv, http.MethodGet, "/admin/config", "")
	if code != http.StatusOK || body["spinIntervalMs"] != float64(30000) || body["bettingCutoffMs"] != float64(2000) {
		t.Fatalf("get = %d %v", code, body)
	}

	code, body = doJSON(t, srv, http.MethodPost, "/admin/config", `{"spinIntervalMs":10000}`)
	if code != http.StatusOK {
		t.Fatalf("update = %d %v", code, body)
	}
	cfg := body["config"].(map[string]any)
	if cfg["spinIntervalMs"] != float64(10000) {
		t.Fatalf("config after update = %v", cfg)
	}

	code, _ = doJSON(t, srv, http.MethodPost, "/admin/config", `{"bettingCutoffMs":20000}`)
	if code != http.StatusBadRequest {
		t.Fatalf("cutoff past interval accepted: %d", code)
	}
	code, _ = doJSON(t, srv, http.MethodPost, "/admin/config", `{"spinIntervalMs":10}`)
	if code != http.StatusBadRequest {
		t.Fatalf("tiny interval accepted: %d", code)
	}
	code, _ = doJSON(t, srv, http.MethodPost, "/admin/config", `{"bettingCutoffMs":0}`)
	if code != http.StatusBadRequest {
		t.Fatalf("zero cutoff accepted: %d", code)
	}
	code, _ = doJSON(t, srv, http.MethodPost, "/admin/config", `nope`)
	if code != http.StatusBadRequest {
		t.Fatalf("bad json accepted: %d", code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, srv := startTestServer(t)
	dialWS(t, srv)
	code, body := doJSON(t, srv, http.MethodGet, "/metrics", "")
	if code != http.StatusOK {
		t.Fatalf("metrics = %d", code)
	}
	if _, ok := body["metrics"].(map[string]any); !ok {
		t.Fatalf("metrics body = %v", body)
	}
	if _, ok := body["sessions"]; !ok {
		t.Fatalf("sessions missing: %v", body)
	}
}
