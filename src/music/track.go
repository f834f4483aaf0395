package music

import "fmt"

// Metadata is the tag record read from a single media file.
// Unknown fields are left at their zero value.
type Metadata struct {
	Artist string
	Album  string
	Title  string
	Track  int
	Year   int
}

// Normalize returns a copy with negative numbers clamped to zero. Text fields
// are kept verbatim.
func (m Metadata) Normalize() Metadata {
	if m.Track < 0 {
		m.Track = 0
	}
	if m.Year < 0 {
		m.Year = 0
	}
	return m
}

// IsEmpty reports whether no field carries a value.
func (m Metadata) IsEmpty() bool {
	return m.Artist == "" && m.Album == "" && m.Title == "" && m.Track == 0 && m.Year == 0
}

// String is used in log lines.
func (m Metadata) String() string {
	return fmt.Sprintf("artist=%q album=%q track=%02d title=%q year=%d", m.Artist, m.Album, m.Track, m.Title, m.Year)
}
