package walker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/contre95/dispatch/src/music"
)

type visit struct {
	path string
	kind music.FileKind
}

func collect(t *testing.T, ctx context.Context, root string) ([]visit, error) {
	t.Helper()
	var visits []visit
	err := NewFSWalker(nil).Walk(ctx, root, func(path string, kind music.FileKind) error {
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			t.Fatalf("path %s outside root", path)
		}
		visits = append(visits, visit{rel, kind})
		return nil
	})
	return visits, err
}

func TestWalkReportsKindsInLexicalOrder(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "b.mp3"))
	mustWrite(t, filepath.Join(root, "a", "z.flac"))
	mustWrite(t, filepath.Join(root, "README"))
	if err := os.Symlink(filepath.Join(root, "b.mp3"), filepath.Join(root, "link.mp3")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "dangling.mp3")); err != nil {
		t.Fatal(err)
	}

	visits, err := collect(t, context.Background(), root)
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	want := []visit{
		{"README", music.RegularFile},
		{"a", music.Directory},
		{filepath.Join("a", "z.flac"), music.RegularFile},
		{"b.mp3", music.RegularFile},
		{"dangling.mp3", music.DanglingSymlink},
		{"link.mp3", music.Symlink},
	}
	if len(visits) != len(want) {
		t.Fatalf("got %d visits %v, want %d", len(visits), visits, len(want))
	}
	for i := range want {
		if visits[i] != want[i] {
			t.Errorf("visit %d = %v, want %v", i, visits[i], want[i])
		}
	}
}

func TestWalkUnreadableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	mustWrite(t, filepath.Join(locked, "hidden.mp3"))
	mustWrite(t, filepath.Join(root, "open.mp3"))
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(locked, 0o700)

	visits, err := collect(t, context.Background(), root)
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	want := []visit{{"locked", music.UnreadableDirectory}, {"open.mp3", music.RegularFile}}
	if len(visits) != len(want) {
		t.Fatalf("got visits %v, want %v", visits, want)
	}
	for i := range want {
		if visits[i] != want[i] {
			t.Errorf("visit %d = %v, want %v", i, visits[i], want[i])
		}
	}
}

func TestWalkRootErrors(t *testing.T) {
	root := t.TempDir()
	if _, err := collect(t, context.Background(), filepath.Join(root, "missing")); err == nil {
		t.Error("expected an error for a missing root")
	}
	file := filepath.Join(root, "file.mp3")
	mustWrite(t, file)
	if _, err := collect(t, context.Background(), file); err == nil {
		t.Error("expected an error for a root that is not a directory")
	}
}

func TestCheckRoot(t *testing.T) {
	root := t.TempDir()
	w := NewFSWalker(nil)
	if err := w.Check(root); err != nil {
		t.Errorf("Check() on a readable directory: %v", err)
	}
	if err := w.Check(filepath.Join(root, "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist for a missing root, got %v", err)
	}
	file := filepath.Join(root, "file.mp3")
	mustWrite(t, file)
	if err := w.Check(file); err == nil {
		t.Error("expected an error for a root that is not a directory")
	}
}

func TestWalkStopsWhenCancelled(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a.mp3"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	visits, err := collect(t, ctx, root)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(visits) != 0 {
		t.Errorf("expected no visits after cancel, got %v", visits)
	}
}

func TestClassify(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.mp3")
	mustWrite(t, file)
	w := NewFSWalker(nil)

	if got := w.Classify(file); got != music.RegularFile {
		t.Errorf("Classify(file) = %s", got)
	}
	if got := w.Classify(root); got != music.Directory {
		t.Errorf("Classify(dir) = %s", got)
	}
	if got := w.Classify(filepath.Join(root, "gone.mp3")); got != music.OtherFile {
		t.Errorf("Classify(missing) = %s", got)
	}
}

func mustWrite(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
}
