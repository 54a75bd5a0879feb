package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"basintab/internal/logging"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Info("scene appended", logging.String(logging.FieldScene, "A2023105"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "scene appended") {
		t.Fatalf("expected message in log output, got %q", string(data))
	}
	if !strings.Contains(string(data), "scene=A2023105") {
		t.Fatalf("expected scene attr in log output, got %q", string(data))
	}
}

func TestWithContextAddsFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctx.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := logging.WithProduct(context.Background(), "mod13q1")
	ctx = logging.WithScene(ctx, "A2023105")
	logging.WithContext(ctx, logger).Info("extracting")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	for _, want := range []string{"product=mod13q1", "scene=A2023105"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("expected %q in output, got %q", want, string(data))
		}
	}
}
