package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupLogger_ConsoleLevels(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantInfo  bool
		wantDebug bool
	}{
		{"quiet", false, false, false},
		{"verbose", true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			logger, cleanup, err := setupLogger(&stderr, "", tt.verbose)
			if err != nil {
				t.Fatal(err)
			}
			defer cleanup()

			logger.Debug("debug line")
			logger.Info("info line")
			logger.Warn("warn line")

			out := stderr.String()
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "info line"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v", got, tt.wantInfo)
			}
			if !strings.Contains(out, "warn line") {
				t.Error("warnings must always reach the console")
			}
		})
	}
}

func TestSetupLogger_FileGetsEverything(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shramba.log")
	var stderr bytes.Buffer

	logger, cleanup, err := setupLogger(&stderr, path, false)
	if err != nil {
		t.Fatal(err)
	}
	logger.With("component", "test").Debug("debug line")
	logger.Info("info line", "id", "item-1")
	cleanup()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"debug line", "component=test", "info line", "id=item-1"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log file missing %q:\n%s", want, data)
		}
	}
	if stderr.Len() != 0 {
		t.Errorf("console should be quiet, got %q", stderr.String())
	}
}
