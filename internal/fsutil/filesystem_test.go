package fsutil

import (
	"bytes"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_Exists(t *testing.T) {
	fsys := OSFileSystem{}

	if !fsys.Exists("filesystem.go") {
		t.Error("expected filesystem.go to exist")
	}
	if fsys.Exists("nonexistent_file_xyz.go") {
		t.Error("expected nonexistent file to not exist")
	}
}

func TestWriteTo_OS(t *testing.T) {
	fsys := OSFileSystem{}
	name := filepath.Join(t.TempDir(), "nested", "out", "map.txt")

	if err := WriteTo(fsys, name, bytes.NewBufferString("beacons")); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	data, err := fsys.ReadFile(name)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "beacons" {
		t.Errorf("expected %q, got %q", "beacons", data)
	}
}

func TestWriteTo_Memory(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := WriteTo(mfs, "out/run/map.html", bytes.NewBufferString("<html>")); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	for _, dir := range []string{"out", "out/run"} {
		if !mfs.Exists(dir) {
			t.Errorf("expected directory %s to exist", dir)
		}
	}
	data, err := mfs.ReadFile("out/run/map.html")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "<html>" {
		t.Errorf("unexpected content %q", data)
	}
	if got := mfs.Files(); len(got) != 1 || got[0] != "out/run/map.html" {
		t.Errorf("Files() = %v", got)
	}
}

func TestMemoryFileSystem_VisibleOnClose(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.Create("/created.txt")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("partial")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if data, _ := mfs.ReadFile("/created.txt"); len(data) != 0 {
		t.Errorf("expected empty file before Close, got %q", data)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if data, _ := mfs.ReadFile("/created.txt"); string(data) != "partial" {
		t.Errorf("expected %q after Close, got %q", "partial", data)
	}

	if _, err := w.Write([]byte("more")); !errors.Is(err, fs.ErrClosed) {
		t.Errorf("Write after Close: expected ErrClosed, got %v", err)
	}
	if err := w.Close(); !errors.Is(err, fs.ErrClosed) {
		t.Errorf("second Close: expected ErrClosed, got %v", err)
	}
}

func TestMemoryFileSystem_Conflicts(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := mfs.MkdirAll("out", 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if _, err := mfs.Create("out"); !errors.Is(err, fs.ErrExist) {
		t.Errorf("Create over a directory: expected ErrExist, got %v", err)
	}

	if err := WriteTo(mfs, "file.txt", bytes.NewBufferString("x")); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if err := mfs.MkdirAll("file.txt/sub", 0o755); !errors.Is(err, fs.ErrExist) {
		t.Errorf("MkdirAll through a file: expected ErrExist, got %v", err)
	}
	if err := WriteTo(mfs, "file.txt/sub/x", bytes.NewBufferString("x")); err == nil {
		t.Error("expected WriteTo through a file to fail")
	}
}

func TestMemoryFileSystem_ReadMissing(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if _, err := mfs.ReadFile("missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
	if mfs.Exists("missing") {
		t.Error("expected missing file to not exist")
	}
}
