package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cqNikolaus/JenkinsLLM/internal/pipeline"
)

func newReduceTestCmd(out *bytes.Buffer, in string) *cobra.Command {
	cmd := &cobra.Command{Use: "reduce"}
	cmd.SetOut(out)
	cmd.SetIn(strings.NewReader(in))
	cmd.Flags().Int("tail-budget", 0, "")
	cmd.Flags().String("marker", "", "")
	return cmd
}

func TestReduceFromFile(t *testing.T) {
	viper.Reset()

	dir := t.TempDir()
	file := filepath.Join(dir, "console.log")
	log := "step one ok\nerror: npm install failed\ntoken=abc123 used\nFinished: FAILURE\n"
	if err := os.WriteFile(file, []byte(log), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := newReduceTestCmd(&out, "")

	if err := runReduce(cmd, []string{file}); err != nil {
		t.Fatalf("runReduce() error = %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "error: npm install failed") {
		t.Errorf("expected keyword line in output, got:\n%s", got)
	}
	if strings.Contains(got, "token=abc123") {
		t.Errorf("secret survived reduction:\n%s", got)
	}
	if !strings.Contains(got, "[REDACTED]") {
		t.Errorf("expected redaction marker, got:\n%s", got)
	}
}

func TestReduceFromStdin(t *testing.T) {
	viper.Reset()

	var out bytes.Buffer
	cmd := newReduceTestCmd(&out, "all good\nerror: boom\n")

	if err := runReduce(cmd, nil); err != nil {
		t.Fatalf("runReduce() error = %v", err)
	}
	if !strings.Contains(out.String(), "error: boom") {
		t.Errorf("expected keyword line, got:\n%s", out.String())
	}
}

func TestReduceEmptyResult(t *testing.T) {
	viper.Reset()

	var out bytes.Buffer
	cmd := newReduceTestCmd(&out, "all fine here\n")
	if err := cmd.Flags().Parse([]string{"--tail-budget", "-1"}); err != nil {
		t.Fatal(err)
	}

	if err := runReduce(cmd, nil); err != nil {
		t.Fatalf("runReduce() error = %v", err)
	}
	if !strings.Contains(out.String(), pipeline.MsgNoFindings) {
		t.Errorf("expected %q, got:\n%s", pipeline.MsgNoFindings, out.String())
	}
}
