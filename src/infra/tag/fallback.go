package tag

import (
	"errors"
	"fmt"

	"github.com/bogem/id3v2/v2"
	"github.com/contre95/dispatch/src/music"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
)

var errNoFrames = errors.New("no tag frames found")

// readID3v2 parses an ID3v2 tag with bogem/id3v2.
func readID3v2(path string) (music.Metadata, error) {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return music.Metadata{}, fmt.Errorf("failed to parse ID3v2 tag: %w", err)
	}
	defer t.Close()

	if !t.HasFrames() {
		return music.Metadata{}, errNoFrames
	}

	meta := music.Metadata{
		Artist: t.Artist(),
		Album:  t.Album(),
		Title:  t.Title(),
		Year:   parseNumber(t.Year()),
	}
	if tf := t.GetTextFrame(t.CommonID("Track number/Position in set")); tf.Text != "" {
		meta.Track = parseNumber(tf.Text)
	}
	if meta.Artist == "" {
		meta.Artist = t.GetTextFrame(t.CommonID("Band/Orchestra/Accompaniment")).Text
	}
	return meta, nil
}

// readVorbisComment parses the Vorbis comment block of a FLAC file.
func readVorbisComment(path string) (music.Metadata, error) {
	f, err := goflac.ParseFile(path)
	if err != nil {
		return music.Metadata{}, fmt.Errorf("failed to parse FLAC file: %w", err)
	}

	for _, meta := range f.Meta {
		if meta.Type != goflac.VorbisComment {
			continue
		}
		cmt, err := flacvorbis.ParseFromMetaDataBlock(*meta)
		if err != nil {
			return music.Metadata{}, fmt.Errorf("failed to parse Vorbis comment: %w", err)
		}
		first := func(field string) string {
			values, err := cmt.Get(field)
			if err != nil || len(values) == 0 {
				return ""
			}
			return values[0]
		}
		artist := first(flacvorbis.FIELD_ARTIST)
		if artist == "" {
			artist = first("ALBUMARTIST")
		}
		return music.Metadata{
			Artist: artist,
			Album:  first(flacvorbis.FIELD_ALBUM),
			Title:  first(flacvorbis.FIELD_TITLE),
			Track:  parseNumber(first(flacvorbis.FIELD_TRACKNUMBER)),
			Year:   parseNumber(first(flacvorbis.FIELD_DATE)),
		}, nil
	}
	return music.Metadata{}, errNoFrames
}
