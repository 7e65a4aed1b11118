package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestRotatingFileRotates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.log")
	writer, err := openRotatingFile(path, 1, 1)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	defer writer.Close()

	chunk := make([]byte, 512*1024)
	for i := 0; i < 3; i++ {
		if _, err := writer.Write(chunk); err != nil {
			t.Fatalf("write chunk %d: %v", i, err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat log: %v", err)
	}
	if info.Size() > 1024*1024 {
		t.Fatalf("expected log <= 1MB, got %d", info.Size())
	}
	backup, err := os.Stat(path + ".1")
	if err != nil {
		t.Fatalf("stat rotated log: %v", err)
	}
	if backup.Size() != 1024*1024 {
		t.Fatalf("rotated log size = %d, want 1MB", backup.Size())
	}
}

func TestRotatingFileKeepsBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.log")
	writer, err := openRotatingFile(path, 1, 2)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	defer writer.Close()

	for i := 0; i < 5; i++ {
		chunk := bytes.Repeat([]byte{byte('a' + i)}, 600*1024)
		if _, err := writer.Write(chunk); err != nil {
			t.Fatalf("write chunk %d: %v", i, err)
		}
	}

	// Every write after the first rotates; only the newest three survive.
	for n, want := range map[string]byte{path: 'e', path + ".1": 'd', path + ".2": 'c'} {
		data, err := os.ReadFile(n)
		if err != nil {
			t.Fatalf("read %s: %v", n, err)
		}
		if len(data) != 600*1024 || data[0] != want {
			t.Fatalf("%s: %d bytes, want 600KB of %q", n, len(data), want)
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Fatalf("expected no third backup, stat err = %v", err)
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	cfg := testLogConfig()
	cfg.Level = "loud"
	if err := Init(cfg); err == nil {
		t.Fatal("Init() expected error for unknown level")
	}
}

func TestInitWritesToFile(t *testing.T) {
	cfg := testLogConfig()
	cfg.File = filepath.Join(t.TempDir(), "out.log")
	if err := Init(cfg); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if _, err := Writer().Write([]byte("{}\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(cfg.File)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected log file to have content")
	}
}
