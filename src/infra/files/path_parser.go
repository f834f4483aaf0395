package files

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/contre95/dispatch/src/music"
	"github.com/gosimple/unidecode"
	"golang.org/x/text/unicode/norm"
)

// DefaultFormat lays files out as Artist/Album/NN - Title.
const DefaultFormat = "%a/%A/%t - %T"

// ErrUnknownPlaceholder is returned by ParseTemplate in strict mode.
var ErrUnknownPlaceholder = errors.New("unknown placeholder")

type tokenKind int

const (
	literalToken tokenKind = iota
	artistToken
	albumToken
	trackToken
	titleToken
	yearToken
)

var placeholders = map[rune]tokenKind{
	'a': artistToken,
	'A': albumToken,
	't': trackToken,
	'T': titleToken,
	'y': yearToken,
}

type token struct {
	kind tokenKind
	text string
}

// TemplateOptions tune parsing and value escaping.
type TemplateOptions struct {
	// Strict rejects unknown %x codes instead of dropping them.
	Strict bool
	// Asciify transliterates substituted values to ASCII.
	Asciify bool
}

// Template is a parsed path format. It is immutable and safe for concurrent use.
type Template struct {
	format  string
	tokens  []token
	asciify bool
}

// ParseTemplate turns a format string into a token sequence. %a, %A, %t, %T
// and %y are placeholders; any other %x pair is dropped unless opts.Strict is
// set. A trailing lone % is kept as literal text.
func ParseTemplate(format string, opts TemplateOptions) (*Template, error) {
	t := &Template{format: format, asciify: opts.Asciify}

	var literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			t.tokens = append(t.tokens, token{kind: literalToken, text: literal.String()})
			literal.Reset()
		}
	}

	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '%' || i == len(runes)-1 {
			literal.WriteRune(r)
			continue
		}
		i++
		kind, ok := placeholders[runes[i]]
		if !ok {
			if opts.Strict {
				return nil, fmt.Errorf("%w %%%c at position %d in %q", ErrUnknownPlaceholder, runes[i], i-1, format)
			}
			continue
		}
		flush()
		t.tokens = append(t.tokens, token{kind: kind})
	}
	flush()

	return t, nil
}

// MustParseTemplate is ParseTemplate for formats known to be valid.
func MustParseTemplate(format string) *Template {
	t, err := ParseTemplate(format, TemplateOptions{})
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the format string the template was parsed from.
func (t *Template) String() string {
	return t.format
}

// Render expands the template against a metadata record. It never fails;
// missing fields render as "" or 0.
func (t *Template) Render(meta music.Metadata) string {
	var b strings.Builder
	b.Grow(len(t.format) + 64)
	for _, tok := range t.tokens {
		if tok.kind == literalToken {
			b.WriteString(tok.text)
			continue
		}
		b.WriteString(t.escape(value(tok.kind, meta)))
	}
	return b.String()
}

func value(kind tokenKind, meta music.Metadata) string {
	switch kind {
	case artistToken:
		return meta.Artist
	case albumToken:
		return meta.Album
	case titleToken:
		return meta.Title
	case trackToken:
		return fmt.Sprintf("%02d", meta.Track)
	case yearToken:
		return strconv.Itoa(meta.Year)
	}
	return ""
}

// escape makes a metadata value safe to embed in a single path segment.
func (t *Template) escape(val string) string {
	val = norm.NFC.String(val)
	if t.asciify {
		val = unidecode.Unidecode(val)
	}
	val = strings.Map(func(r rune) rune {
		if r == '/' || r == os.PathSeparator || r == 0 {
			return '_'
		}
		return r
	}, val)
	// A value made only of dots would climb out of its directory.
	if val == "." || val == ".." {
		val = strings.Repeat("_", len(val))
	}
	return val
}
