package files

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/contre95/dispatch/src/music"
)

func TestAssemblePath(t *testing.T) {
	tests := []struct {
		root, fragment, ext string
		want                string
	}{
		{"/music", "Air/Moon Safari/03 - Ce matin-là", "mp3", "/music/Air/Moon Safari/03 - Ce matin-là.mp3"},
		{"/music/", "Air/x", "flac", "/music/Air/x.flac"},
		{"/music", "", "ogg", "/music/.ogg"},
	}
	for _, tt := range tests {
		if got := AssemblePath(tt.root, tt.fragment, tt.ext); got != tt.want {
			t.Errorf("AssemblePath(%q, %q, %q) = %q, want %q", tt.root, tt.fragment, tt.ext, got, tt.want)
		}
	}
}

func TestFileOrganizerGetLibraryPath(t *testing.T) {
	org := NewFileOrganizer("/music", MustParseTemplate(DefaultFormat), NewTransferer(nil))
	got := org.GetLibraryPath(music.Metadata{Artist: "Air", Album: "Moon Safari", Title: "Ce matin-là", Track: 3}, "mp3")
	if got != "/music/Air/Moon Safari/03 - Ce matin-là.mp3" {
		t.Errorf("GetLibraryPath() = %q", got)
	}
}

func TestFileOrganizerEnsureLibrary(t *testing.T) {
	root := filepath.Join(t.TempDir(), "library")
	org := NewFileOrganizer(root, MustParseTemplate(DefaultFormat), NewTransferer(nil))
	if err := org.EnsureLibrary(); err != nil {
		t.Fatalf("EnsureLibrary() error: %v", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		t.Fatalf("library root was not created: %v", err)
	}

	empty := NewFileOrganizer("", MustParseTemplate(DefaultFormat), NewTransferer(nil))
	if err := empty.EnsureLibrary(); err == nil {
		t.Fatal("expected an error for an empty destination root")
	}
}

func TestFileOrganizerTransferReturnsSize(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.mp3")
	if err := os.WriteFile(src, []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}
	org := NewFileOrganizer(filepath.Join(dir, "out"), MustParseTemplate(DefaultFormat), NewTransferer(nil))
	dst := filepath.Join(dir, "out", "a", "b.mp3")
	if err := org.PrepareDirectory(dst); err != nil {
		t.Fatal(err)
	}

	n, err := org.Transfer(context.Background(), src, dst, music.Copy)
	if err != nil {
		t.Fatalf("Transfer() error: %v", err)
	}
	if n != 10 {
		t.Errorf("Transfer() = %d bytes, want 10", n)
	}

	_, err = org.Transfer(context.Background(), filepath.Join(dir, "missing.mp3"), dst, music.Copy)
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError for a missing source, got %v", err)
	}
}

func TestFileOrganizerPruneEmptyDirectories(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(deep, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "a", "keep.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	org := NewFileOrganizer(filepath.Join(t.TempDir(), "lib"), MustParseTemplate(DefaultFormat), NewTransferer(nil))
	if err := org.PruneEmptyDirectories(deep, root); err != nil {
		t.Fatalf("PruneEmptyDirectories() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "a", "b")); !os.IsNotExist(err) {
		t.Errorf("expected a/b to be removed, stat error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "a")); err != nil {
		t.Errorf("a is not empty and must be kept: %v", err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Errorf("root must never be removed: %v", err)
	}
}
