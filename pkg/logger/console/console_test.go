package console

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleLogger_PrefixAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(ConsoleLoggerParams{
		Prefix: "worker",
		Output: &buf,
	})

	logger.Debug("hidden at info level")
	logger.Info("queue ready", "queue", "ingest_queue")

	out := buf.String()
	if strings.Contains(out, "hidden at info level") {
		t.Fatal("debug message logged without Debug enabled")
	}
	if !strings.Contains(out, "queue ready") {
		t.Fatalf("info message missing from output: %q", out)
	}
	if !strings.Contains(out, "worker") {
		t.Fatalf("prefix missing from output: %q", out)
	}
}

func TestConsoleLogger_DebugEnabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(ConsoleLoggerParams{
		Debug:  true,
		Output: &buf,
	})

	logger.Debug("chunk saved", "seq", 3)

	if !strings.Contains(buf.String(), "chunk saved") {
		t.Fatalf("debug message missing from output: %q", buf.String())
	}
}
