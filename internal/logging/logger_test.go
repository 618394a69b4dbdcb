package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    logrus.Level
		wantErr bool
	}{
		{"default", Options{}, logrus.InfoLevel, false},
		{"warn", Options{Level: "WARN"}, logrus.WarnLevel, false},
		{"verbose wins", Options{Level: "error", Verbose: true}, logrus.DebugLevel, false},
		{"unknown", Options{Level: "chatty"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Stdout = &bytes.Buffer{}
			logger, closeFn, err := New(tt.opts)
			defer closeFn()

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New error: %v", err)
			}
			if logger.GetLevel() != tt.want {
				t.Errorf("level = %s, want %s", logger.GetLevel(), tt.want)
			}
		})
	}
}

func TestNewJSONToFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "run.log")

	logger, closeFn, err := New(Options{JSON: true, File: path, Stdout: &console})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	logger.WithField("file", "input.csv").Info("processed")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !bytes.Equal(data, console.Bytes()) {
		t.Error("file and console output differ")
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "processed" || entry["file"] != "input.csv" {
		t.Errorf("entry = %v", entry)
	}
}

func TestDiscard(t *testing.T) {
	if logger := Discard(); logger.Out != io.Discard {
		t.Errorf("output = %T, want io.Discard", logger.Out)
	}
}
