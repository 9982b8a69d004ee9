package jenkins

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cqNikolaus/JenkinsLLM/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func testRef(t *testing.T, baseURL string) config.BuildRef {
	t.Helper()
	ref, err := config.NewBuildRef(baseURL, "deploy-prod", "42")
	if err != nil {
		t.Fatalf("NewBuildRef: %v", err)
	}
	return ref
}

func TestConsoleLog(t *testing.T) {
	const logBody = "Started by user admin\nBUILD FAILED\nFinished: FAILURE\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/job/deploy-prod/42/consoleText" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "jenkins-bot" || pass != "secret-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(logBody))
	}))
	defer srv.Close()

	c := NewClient("jenkins-bot", "secret-token", testLogger())
	got, err := c.ConsoleLog(context.Background(), testRef(t, srv.URL))
	if err != nil {
		t.Fatalf("ConsoleLog() error: %v", err)
	}
	if got != logBody {
		t.Errorf("ConsoleLog() = %q, want %q", got, logBody)
	}
}

func TestConsoleLogAnonymous(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); ok {
			t.Error("request carried basic auth despite empty credentials")
		}
		w.Write([]byte("log"))
	}))
	defer srv.Close()

	c := NewClient("", "", testLogger())
	if _, err := c.ConsoleLog(context.Background(), testRef(t, srv.URL)); err != nil {
		t.Fatalf("ConsoleLog() error: %v", err)
	}
}

func TestConsoleLogNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such build", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("u", "t", testLogger())
	_, err := c.ConsoleLog(context.Background(), testRef(t, srv.URL))
	if err == nil {
		t.Fatal("ConsoleLog() expected error for 404")
	}
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want StatusError", err)
	}
	if se.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", se.StatusCode)
	}
}

func TestConsoleLogTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient("u", "t", testLogger())
	if _, err := c.ConsoleLog(context.Background(), testRef(t, srv.URL)); err == nil {
		t.Fatal("ConsoleLog() expected transport error")
	}
}

func TestConsoleLogEscapesJobName(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ref, err := config.NewBuildRef(srv.URL, "app/nightly build", "7")
	if err != nil {
		t.Fatalf("NewBuildRef: %v", err)
	}

	c := NewClient("u", "t", testLogger())
	if _, err := c.ConsoleLog(context.Background(), ref); err != nil {
		t.Fatalf("ConsoleLog() error: %v", err)
	}
	if gotPath != "/job/app%2Fnightly%20build/7/consoleText" {
		t.Errorf("request path = %q", gotPath)
	}
}

func TestInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/job/deploy-prod/42/api/json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"fullDisplayName":"deploy-prod #42","result":"FAILURE","building":false,"duration":93500,"url":"http://jenkins/job/deploy-prod/42/"}`))
	}))
	defer srv.Close()

	c := NewClient("u", "t", testLogger())
	info, err := c.Info(context.Background(), testRef(t, srv.URL))
	if err != nil {
		t.Fatalf("Info() error: %v", err)
	}
	if info.Result != "FAILURE" {
		t.Errorf("Result = %q, want FAILURE", info.Result)
	}
	if info.FullDisplayName != "deploy-prod #42" {
		t.Errorf("FullDisplayName = %q", info.FullDisplayName)
	}
	if info.DurationTime().Seconds() != 93.5 {
		t.Errorf("DurationTime() = %v, want 93.5s", info.DurationTime())
	}
}

func TestInfoMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := NewClient("u", "t", testLogger())
	if _, err := c.Info(context.Background(), testRef(t, srv.URL)); err == nil {
		t.Fatal("Info() expected decode error")
	}
}
