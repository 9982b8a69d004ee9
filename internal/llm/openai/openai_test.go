package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cqNikolaus/JenkinsLLM/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(Config{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: baseURL}, testLogger())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func chat(t *testing.T, c *Client) (*Response, error) {
	t.Helper()
	return c.Chat(context.Background(), []Message{
		{Role: "system", Content: "You are a build failure analyst."},
		{Role: "user", Content: "Analyze this."},
	}, nil)
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{}, testLogger())
	if err == nil {
		t.Fatal("New() expected error for missing api key")
	}
	if !config.IsConfigError(err) {
		t.Errorf("error = %v, want ConfigError", err)
	}
}

func TestChatSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("request model = %q", req.Model)
		}
		if req.Temperature != 0 {
			t.Errorf("request temperature = %v, want 0", req.Temperature)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("request messages = %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"model":"gpt-4o-mini","choices":[{"message":{"content":"root cause: X"}}],"usage":{"prompt_tokens":100,"total_tokens":150}}`)
	}))
	defer srv.Close()

	resp, err := chat(t, newTestClient(t, srv.URL))
	if err != nil {
		t.Fatalf("Chat() error: %v", err)
	}
	if resp.Content != "root cause: X" {
		t.Errorf("Content = %q, want %q", resp.Content, "root cause: X")
	}
	if resp.TokensTotal != 150 {
		t.Errorf("TokensTotal = %d, want 150", resp.TokensTotal)
	}
}

func TestChatRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Rate limit reached"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := chat(t, newTestClient(t, srv.URL))
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("error = %v, want ErrRateLimited", err)
	}
}

func TestChatRateLimitedByBodyPhrase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Too Many Requests, slow down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := chat(t, newTestClient(t, srv.URL))
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("error = %v, want ErrRateLimited", err)
	}
}

func TestChatServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := chat(t, newTestClient(t, srv.URL))
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
	if errors.Is(err, ErrRateLimited) {
		t.Error("500 must not be classified as rate limiting")
	}
}

func TestChatMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>gateway error</html>")
	}))
	defer srv.Close()

	_, err := chat(t, newTestClient(t, srv.URL))
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("error = %v, want ErrInvalidResponse", err)
	}
}

func TestChatMissingChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"model":"gpt-4o-mini","choices":[]}`)
	}))
	defer srv.Close()

	_, err := chat(t, newTestClient(t, srv.URL))
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("error = %v, want ErrInvalidResponse", err)
	}
}

// Empty content is rejected like a missing path: a blank analysis is
// never printed.
func TestChatEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"model":"gpt-4o-mini","choices":[{"message":{"content":""}}]}`)
	}))
	defer srv.Close()

	_, err := chat(t, newTestClient(t, srv.URL))
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("error = %v, want ErrInvalidResponse", err)
	}
}

func TestChatTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := chat(t, newTestClient(t, srv.URL))
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestChatEmptyMessages(t *testing.T) {
	c := newTestClient(t, "http://localhost:0")
	if _, err := c.Chat(context.Background(), nil, nil); err == nil {
		t.Fatal("Chat() expected error for empty messages")
	}
}
