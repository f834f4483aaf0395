package music

import (
	"path/filepath"
	"strings"
)

// ExtensionStatus is the verdict of ClassifyExtension.
type ExtensionStatus int

const (
	NoExtension ExtensionStatus = iota
	AllowedExtension
	RejectedExtension
)

func (s ExtensionStatus) String() string {
	switch s {
	case AllowedExtension:
		return "allowed"
	case RejectedExtension:
		return "rejected"
	default:
		return "no_extension"
	}
}

// ExtensionResult carries the lower-cased extension (without the dot) along
// with the verdict. Ext is empty for NoExtension.
type ExtensionResult struct {
	Status ExtensionStatus
	Ext    string
}

// Allowed reports whether the file should be dispatched.
func (r ExtensionResult) Allowed() bool {
	return r.Status == AllowedExtension
}

var supportedExtensions = map[string]bool{
	"mp3":  true,
	"m4a":  true,
	"flac": true,
	"ogg":  true,
}

// SupportedExtensions returns the allow-set, sorted.
func SupportedExtensions() []string {
	return []string{"flac", "m4a", "mp3", "ogg"}
}

// ClassifyExtension inspects the base name of path and decides whether it is
// an eligible media file. It never touches the filesystem.
func ClassifyExtension(path string) ExtensionResult {
	base := filepath.Base(path)
	dot := strings.LastIndexByte(base, '.')
	// A dot in first position is a hidden file, not an extension.
	if dot <= 0 {
		return ExtensionResult{Status: NoExtension}
	}
	ext := strings.ToLower(base[dot+1:])
	if supportedExtensions[ext] {
		return ExtensionResult{Status: AllowedExtension, Ext: ext}
	}
	return ExtensionResult{Status: RejectedExtension, Ext: ext}
}
