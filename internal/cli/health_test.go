package cli

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealthCmd(t *testing.T) {
	isolateEnv(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path=%q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ok", "version": "1.4.2"}`))
	}))
	defer server.Close()

	out, err := runCmd(t, "health", "--base-url", server.URL)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if !strings.Contains(out, `"status": "ok"`) {
		t.Fatalf("output=%q", out)
	}
	if !strings.Contains(out, `"version": "1.4.2"`) {
		t.Fatalf("output=%q", out)
	}
}

func TestHealthCmdVerbose(t *testing.T) {
	isolateEnv(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	}))
	defer server.Close()

	if _, err := runCmd(t, "health", "--base-url", server.URL, "-v"); err != nil {
		t.Fatalf("health -v: %v", err)
	}
}

func TestHealthCmdServiceDown(t *testing.T) {
	isolateEnv(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	// Keep the retry loop short so the failure surfaces quickly.
	cfgPath := writeConfigFile(t, t.TempDir(), "cfg.yaml", "max_retries: 0\n")

	_, err := runCmd(t, "health", "--base-url", server.URL, "--config", cfgPath)
	if err == nil {
		t.Fatal("expected error for 503")
	}
	if !strings.Contains(err.Error(), "Server error (503)") {
		t.Fatalf("err=%q", err.Error())
	}
}
