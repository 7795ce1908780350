package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
)

func TestNew_WritesToAllSinks(t *testing.T) {
	var a, b bytes.Buffer
	logger := New(&a, &b)
	logger.Info().Str("run_id", "abc").Msg("hello")

	for i, buf := range []*bytes.Buffer{&a, &b} {
		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("Sink %d did not receive JSON: %v (%q)", i, err, buf.String())
		}
		if entry["message"] != "hello" || entry["run_id"] != "abc" || entry["time"] == nil {
			t.Errorf("Sink %d got unexpected entry: %v", i, entry)
		}
	}
}

func TestDirAndFileWriter(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOGS_FOLDER", dir)
	if Dir() != dir {
		t.Errorf("Expected LOGS_FOLDER to win, got %s", Dir())
	}

	if _, err := prepareDir(filepath.Join(dir, "nested")); err != nil {
		t.Errorf("prepareDir returned error: %v", err)
	}

	w := FileWriter(dir)
	if w.Filename != filepath.Join(dir, FileName) {
		t.Errorf("Unexpected log file %s", w.Filename)
	}
}
