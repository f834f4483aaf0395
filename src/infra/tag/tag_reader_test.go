package tag

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bogem/id3v2/v2"
)

func writeID3File(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strings.Repeat("\x00audio-frames", 64)), 0o644); err != nil {
		t.Fatal(err)
	}
	tg, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("failed to open file for tagging: %v", err)
	}
	defer tg.Close()

	tg.SetArtist("Air")
	tg.SetAlbum("Moon Safari")
	tg.SetTitle("Ce matin-là")
	tg.SetYear("1998")
	tg.AddTextFrame(tg.CommonID("Track number/Position in set"), tg.DefaultEncoding(), "3/10")
	if err := tg.Save(); err != nil {
		t.Fatalf("failed to save tag: %v", err)
	}
}

func TestReadMetadataID3v2(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ce-matin.mp3")
	writeID3File(t, path)

	meta, err := NewTagReader(nil).ReadMetadata(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadMetadata() error: %v", err)
	}
	if meta.Artist != "Air" || meta.Album != "Moon Safari" || meta.Title != "Ce matin-là" {
		t.Errorf("unexpected text fields: %s", meta)
	}
	if meta.Track != 3 {
		t.Errorf("Track = %d, want 3", meta.Track)
	}
}

func TestReadID3v2Fallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ce-matin.mp3")
	writeID3File(t, path)

	meta, err := readID3v2(path)
	if err != nil {
		t.Fatalf("readID3v2() error: %v", err)
	}
	if meta.Artist != "Air" || meta.Track != 3 || meta.Year != 1998 {
		t.Errorf("unexpected metadata: %s", meta)
	}
}

func TestReadMetadataUnrecognizedContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.mp3")
	if err := os.WriteFile(path, []byte(strings.Repeat("this is not audio\n", 40)), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewTagReader(nil).ReadMetadata(context.Background(), path)
	var tagErr *TagError
	if !errors.As(err, &tagErr) {
		t.Fatalf("expected TagError, got %v", err)
	}
	if tagErr.Kind != UnrecognizedContainer {
		t.Errorf("Kind = %s, want %s", tagErr.Kind, UnrecognizedContainer)
	}
	if tagErr.Path != path {
		t.Errorf("Path = %q, want %q", tagErr.Path, path)
	}
}

// writeUntaggedMPEG writes an MPEG-1 Layer III stream of silent 128 kbit/s
// frames with no ID3 tag of any version.
func writeUntaggedMPEG(t *testing.T, path string) {
	t.Helper()
	const frameSize = 417
	frame := make([]byte, frameSize)
	copy(frame, []byte{0xFF, 0xFB, 0x90, 0x64})
	if err := os.WriteFile(path, bytes.Repeat(frame, 50), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadMetadataUntaggedStream(t *testing.T) {
	path := filepath.Join(t.TempDir(), "untagged.mp3")
	writeUntaggedMPEG(t, path)

	meta, err := NewTagReader(nil).ReadMetadata(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadMetadata() error: %v", err)
	}
	if !meta.IsEmpty() {
		t.Errorf("expected empty metadata, got %s", meta)
	}
}

func TestSniffContainer(t *testing.T) {
	tests := map[string]string{
		"ID3\x04\x00":              "id3",
		"fLaC\x00\x00\x00\x22":     "flac",
		"OggS\x00\x02":             "ogg",
		"\x00\x00\x00\x20ftypM4A ": "mp4",
		"\xFF\xFB\x90\x64":         "mpeg",
		"\xFF\x10":                 "",
		"this is not audio":        "",
		"":                         "",
	}
	for in, want := range tests {
		if got := sniffContainer([]byte(in)); got != want {
			t.Errorf("sniffContainer(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReadMetadataMissingFile(t *testing.T) {
	_, err := NewTagReader(nil).ReadMetadata(context.Background(), filepath.Join(t.TempDir(), "gone.flac"))
	var tagErr *TagError
	if !errors.As(err, &tagErr) || tagErr.Kind != ReadFailure {
		t.Fatalf("expected a ReadFailure TagError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected the cause to be preserved, got %v", err)
	}
}

func TestParseNumber(t *testing.T) {
	tests := map[string]int{
		"3":          3,
		"03/12":      3,
		" 7 ":        7,
		"1998-05-01": 1998,
		"":           0,
		"abc":        0,
		"A1":         0,
	}
	for in, want := range tests {
		if got := parseNumber(in); got != want {
			t.Errorf("parseNumber(%q) = %d, want %d", in, got, want)
		}
	}
}
