package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bogem/id3v2/v2"
)

func writeTaggedMP3(t *testing.T, path, artist, album, title, track string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{0xff, 0xfb, 0x90, 0x00}, 512), 0o644); err != nil {
		t.Fatal(err)
	}
	tg, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tg.Close()
	tg.SetArtist(artist)
	tg.SetAlbum(album)
	tg.SetTitle(title)
	tg.AddTextFrame(tg.CommonID("Track number/Position in set"), tg.DefaultEncoding(), track)
	if err := tg.Save(); err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDispatchCommandCopiesTaggedFiles(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "library")
	writeTaggedMP3(t, filepath.Join(src, "in", "track3.mp3"), "Air", "Moon Safari", "Ce matin-là", "3")
	writeTaggedMP3(t, filepath.Join(src, "acdc.mp3"), "AC/DC", "Back in Black", "Hells Bells", "1")
	if err := os.WriteFile(filepath.Join(src, "README"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, src, dst)
	if err != nil {
		t.Fatalf("dispatch failed: %v\n%s", err, out)
	}

	for _, p := range []string{
		filepath.Join(dst, "Air", "Moon Safari", "03 - Ce matin-là.mp3"),
		filepath.Join(dst, "AC_DC", "Back in Black", "01 - Hells Bells.mp3"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s: %v", p, err)
		}
	}
	if _, err := os.Stat(filepath.Join(src, "in", "track3.mp3")); err != nil {
		t.Error("copy mode must keep the source")
	}
	if !strings.Contains(out, "Transferred") {
		t.Errorf("summary not printed:\n%s", out)
	}
}

func TestDispatchCommandMoveWithFormat(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "library")
	source := filepath.Join(src, "x.mp3")
	writeTaggedMP3(t, source, "Air", "Moon Safari", "La femme d'argent", "1")

	if out, err := execute(t, "-m", "-f", "%a - %T", src, dst); err != nil {
		t.Fatalf("dispatch failed: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(dst, "Air - La femme d'argent.mp3")); err != nil {
		t.Errorf("moved file missing: %v", err)
	}
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Error("move mode must remove the source")
	}
}

func TestDispatchCommandDryRun(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "library")
	writeTaggedMP3(t, filepath.Join(src, "x.mp3"), "Air", "Moon Safari", "Talisman", "5")

	if out, err := execute(t, "--dry-run", src, dst); err != nil {
		t.Fatalf("dispatch failed: %v\n%s", err, out)
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("dry run must not create the destination tree")
	}
}

func TestDispatchCommandStructuralErrors(t *testing.T) {
	dst := t.TempDir()
	if _, err := execute(t, filepath.Join(t.TempDir(), "missing"), dst); err == nil {
		t.Error("expected an error for a missing source root")
	}
	if _, err := execute(t, "--strict", "-f", "%a/%q", t.TempDir(), dst); err == nil {
		t.Error("expected an error for an unknown code in strict mode")
	}
	if _, err := execute(t, "only-one-arg"); err == nil {
		t.Error("expected a usage error")
	}
}

func TestDispatchCommandMissingSourceCreatesNothing(t *testing.T) {
	tmp := t.TempDir()
	dst := filepath.Join(tmp, "out", "deep")

	if _, err := execute(t, filepath.Join(tmp, "missing-src"), dst); err == nil {
		t.Fatal("expected an error for a missing source root")
	}
	if _, err := os.Stat(filepath.Join(tmp, "out")); !os.IsNotExist(err) {
		t.Errorf("destination must not be created, stat returned %v", err)
	}
}

func TestDispatchCommandUntaggedFile(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "library")
	frame := make([]byte, 417)
	copy(frame, []byte{0xff, 0xfb, 0x90, 0x64})
	if err := os.WriteFile(filepath.Join(src, "untagged.mp3"), bytes.Repeat(frame, 50), 0o644); err != nil {
		t.Fatal(err)
	}

	if out, err := execute(t, src, dst); err != nil {
		t.Fatalf("dispatch failed: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(dst, "00 - .mp3")); err != nil {
		t.Errorf("expected the untagged file under empty segments: %v", err)
	}
}

func TestDispatchCommandRecordsHistory(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "library")
	history := filepath.Join(t.TempDir(), "history.db")
	writeTaggedMP3(t, filepath.Join(src, "x.mp3"), "Air", "Moon Safari", "Talisman", "5")

	if out, err := execute(t, "--history", history, src, dst); err != nil {
		t.Fatalf("dispatch failed: %v\n%s", err, out)
	}
	out, err := execute(t, "history", "--history", history)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, src) {
		t.Errorf("history does not list the run:\n%s", out)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatch.yaml")
	if _, err := execute(t, "config", "init", path); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	out, err := execute(t, "config", "show", "-c", path)
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, "format: '%a/%A/%t - %T'") && !strings.Contains(out, `format: "%a/%A/%t - %T"`) {
		t.Errorf("unexpected config output:\n%s", out)
	}
}
