package tag

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/contre95/dispatch/src/music"
	"github.com/dhowden/tag"
)

// ErrorKind classifies why tags could not be read.
type ErrorKind int

const (
	UnrecognizedContainer ErrorKind = iota
	Corrupt
	ReadFailure
)

func (k ErrorKind) String() string {
	switch k {
	case Corrupt:
		return "corrupt"
	case ReadFailure:
		return "io_error"
	default:
		return "unrecognized_container"
	}
}

// TagError is returned by ReadMetadata.
type TagError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *TagError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *TagError) Unwrap() error {
	return e.Err
}

// fallbackReader reads tags with a format specific library when dhowden/tag
// finds nothing.
type fallbackReader func(path string) (music.Metadata, error)

// TagReader is an implementation of dispatching.TagReader that uses the dhowden/tag library.
type TagReader struct {
	fallbacks map[string]fallbackReader
	logger    *slog.Logger
}

// NewTagReader creates a new TagReader
func NewTagReader(logger *slog.Logger) *TagReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &TagReader{
		fallbacks: map[string]fallbackReader{
			".mp3":  readID3v2,
			".flac": readVorbisComment,
		},
		logger: logger,
	}
}

// ReadMetadata reads the artist, album, title, track and year of a media file.
func (r *TagReader) ReadMetadata(ctx context.Context, filePath string) (meta music.Metadata, err error) {
	defer func() {
		// Malformed frames can make the parsers panic.
		if p := recover(); p != nil {
			meta = music.Metadata{}
			err = &TagError{Kind: Corrupt, Path: filePath, Err: fmt.Errorf("parser panic: %v", p)}
		}
	}()

	file, err := os.Open(filePath)
	if err != nil {
		return music.Metadata{}, &TagError{Kind: ReadFailure, Path: filePath, Err: err}
	}
	defer file.Close()

	head := make([]byte, 12)
	n, err := file.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return music.Metadata{}, &TagError{Kind: ReadFailure, Path: filePath, Err: err}
	}
	container := sniffContainer(head[:n])

	tags, err := tag.ReadFrom(file)
	if err == nil {
		return fromTags(tags).Normalize(), nil
	}
	if !errors.Is(err, tag.ErrNoTagsFound) {
		return music.Metadata{}, &TagError{Kind: Corrupt, Path: filePath, Err: err}
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	if fallback, ok := r.fallbacks[ext]; ok {
		meta, fbErr := fallback(filePath)
		if fbErr == nil {
			r.logger.Debug("TagReader.ReadMetadata: tags read by fallback reader", "path", filePath, "ext", ext)
			return meta.Normalize(), nil
		}
		r.logger.Debug("TagReader.ReadMetadata: fallback reader failed", "path", filePath, "error", fbErr)
	}

	// A valid stream without any tag renders with empty fields.
	if container != "" {
		r.logger.Debug("TagReader.ReadMetadata: no tags found", "path", filePath, "container", container)
		return music.Metadata{}, nil
	}
	return music.Metadata{}, &TagError{Kind: UnrecognizedContainer, Path: filePath, Err: err}
}

// sniffContainer names the media container announced by the first bytes of a
// file, or returns "" when none matches.
func sniffContainer(head []byte) string {
	switch {
	case len(head) >= 3 && string(head[:3]) == "ID3":
		return "id3"
	case len(head) >= 4 && string(head[:4]) == "fLaC":
		return "flac"
	case len(head) >= 4 && string(head[:4]) == "OggS":
		return "ogg"
	case len(head) >= 8 && string(head[4:8]) == "ftyp":
		return "mp4"
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		return "mpeg"
	}
	return ""
}

func fromTags(tags tag.Metadata) music.Metadata {
	track, _ := tags.Track()
	artist := tags.Artist()
	if strings.TrimSpace(artist) == "" {
		artist = tags.AlbumArtist()
	}
	return music.Metadata{
		Artist: artist,
		Album:  tags.Album(),
		Title:  tags.Title(),
		Track:  track,
		Year:   tags.Year(),
	}
}

// parseNumber reads the leading integer of values like "3", "03/12" or "1998-05-01".
func parseNumber(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
