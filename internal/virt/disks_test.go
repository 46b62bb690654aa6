package virt

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDiskManagerWorkDir(t *testing.T) {
	base := t.TempDir()
	m := NewDiskManager(base)

	if got := m.WorkDir("demo"); got != filepath.Join(base, "demo") {
		t.Errorf("WorkDir() = %q", got)
	}

	dir, err := m.CreateWorkDir("demo")
	if err != nil {
		t.Fatalf("CreateWorkDir failed: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("work directory not created: %v", err)
	}

	// creating again is a no-op
	if _, err := m.CreateWorkDir("demo"); err != nil {
		t.Errorf("CreateWorkDir must be idempotent: %v", err)
	}
}

func TestDiskManagerWriteSeedISO(t *testing.T) {
	m := NewDiskManager(t.TempDir())
	if _, err := m.CreateWorkDir("demo"); err != nil {
		t.Fatal(err)
	}

	t.Run("writes the ISO", func(t *testing.T) {
		path, err := m.WriteSeedISO("demo", []byte("iso-bytes"))
		if err != nil {
			t.Fatalf("WriteSeedISO failed: %v", err)
		}
		if filepath.Base(path) != "demo_seed.iso" {
			t.Errorf("unexpected ISO name: %q", path)
		}
		data, err := os.ReadFile(path)
		if err != nil || string(data) != "iso-bytes" {
			t.Errorf("ISO content mismatch: %q, %v", data, err)
		}
	})

	t.Run("rejects empty data", func(t *testing.T) {
		if _, err := m.WriteSeedISO("demo", nil); err == nil {
			t.Fatal("expected error for empty ISO data")
		}
	})
}

func TestDiskManagerCreateBootDiskMissingBase(t *testing.T) {
	m := NewDiskManager(t.TempDir())
	if _, err := m.CreateWorkDir("demo"); err != nil {
		t.Fatal(err)
	}

	_, err := m.CreateBootDisk(context.Background(), "demo", "/nonexistent/base.qcow2", 10)
	if err == nil {
		t.Fatal("expected error for missing base image")
	}
}

func TestDiskManagerDeleteWorkDir(t *testing.T) {
	m := NewDiskManager(t.TempDir())

	dir, err := m.CreateWorkDir("demo")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "junk"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := m.DeleteWorkDir("demo"); err != nil {
		t.Fatalf("DeleteWorkDir failed: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("work directory should be gone")
	}

	// deleting a missing directory is not an error
	if err := m.DeleteWorkDir("demo"); err != nil {
		t.Errorf("DeleteWorkDir must tolerate a missing directory: %v", err)
	}
}
