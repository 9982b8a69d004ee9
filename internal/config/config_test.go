package config

import (
	"fmt"
	"testing"
	"time"
)

func TestNewBuildRef(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		job     string
		build   string
		wantErr bool
	}{
		{
			name:  "complete reference",
			base:  "https://jenkins.example.com",
			job:   "deploy-prod",
			build: "42",
		},
		{
			name:    "missing base URL",
			base:    "",
			job:     "deploy-prod",
			build:   "42",
			wantErr: true,
		},
		{
			name:    "missing job name",
			base:    "https://jenkins.example.com",
			job:     "",
			build:   "42",
			wantErr: true,
		},
		{
			name:    "missing build number",
			base:    "https://jenkins.example.com",
			job:     "deploy-prod",
			build:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := NewBuildRef(tt.base, tt.job, tt.build)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewBuildRef() expected error, got nil")
				}
				if !IsConfigError(err) {
					t.Errorf("NewBuildRef() error = %v, want ConfigError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBuildRef() unexpected error: %v", err)
			}
			if ref.JobName != tt.job || ref.BuildNumber != tt.build {
				t.Errorf("NewBuildRef() = %+v", ref)
			}
		})
	}
}

func TestNewBuildRefTrimsTrailingSlash(t *testing.T) {
	ref, err := NewBuildRef("https://jenkins.example.com/", "job", "1")
	if err != nil {
		t.Fatalf("NewBuildRef() error: %v", err)
	}
	if ref.BaseURL != "https://jenkins.example.com" {
		t.Errorf("BaseURL = %q, want trailing slash removed", ref.BaseURL)
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.LLM.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", cfg.LLM.Provider)
	}
	if cfg.LLM.Retry.Attempts != 1 {
		t.Errorf("Retry.Attempts = %d, want 1", cfg.LLM.Retry.Attempts)
	}
	if cfg.LLM.Retry.Delay != 20*time.Second {
		t.Errorf("Retry.Delay = %v, want 20s", cfg.LLM.Retry.Delay)
	}
	if cfg.Reduce.TailBudget != 50 {
		t.Errorf("TailBudget = %d, want 50", cfg.Reduce.TailBudget)
	}
	if cfg.Reduce.RedactMarker != "[REDACTED]" {
		t.Errorf("RedactMarker = %q", cfg.Reduce.RedactMarker)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{}
	cfg.LLM.OpenAI.Model = "gpt-4o"
	cfg.Reduce.TailBudget = 100
	cfg.ApplyDefaults()

	if cfg.LLM.OpenAI.Model != "gpt-4o" {
		t.Errorf("Model = %q, want explicit value preserved", cfg.LLM.OpenAI.Model)
	}
	if cfg.Reduce.TailBudget != 100 {
		t.Errorf("TailBudget = %d, want 100", cfg.Reduce.TailBudget)
	}
}

func TestConfigErrorMessage(t *testing.T) {
	err := &ConfigError{Reason: "OPENAI_API_KEY is not set"}
	want := "configuration error: OPENAI_API_KEY is not set"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := fmt.Errorf("loading config: %w", err)
	if !IsConfigError(wrapped) {
		t.Error("IsConfigError() should see through wrapping")
	}
}
