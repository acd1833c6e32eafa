// Package filetype maps an input filename's extension to one of the
// system's supported file-type tags. There is no runtime polymorphism
// here; document "processors" are an external collaborator described
// only by interface (a byte reader returning raw bytes plus this tag).
// This package is just a closed enum and a lookup table.
package filetype

import (
	"path/filepath"
	"strings"
)

// Tag is one of the supported file-type tags.
type Tag string

const (
	PDF   Tag = "pdf"
	Word  Tag = "word"
	Excel Tag = "excel"
	Text  Tag = "text"
)

var extensionTags = map[string]Tag{
	".pdf":  PDF,
	".doc":  Word,
	".docx": Word,
	".xls":  Excel,
	".xlsx": Excel,
	".txt":  Text,
	".md":   Text,
	".csv":  Text,
}

// FromFilename returns the tag for filename's extension and whether the
// extension is supported.
func FromFilename(filename string) (Tag, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	tag, ok := extensionTags[ext]
	return tag, ok
}

// Valid reports whether tag is one of the enumerated supported tags.
func Valid(tag Tag) bool {
	switch tag {
	case PDF, Word, Excel, Text:
		return true
	default:
		return false
	}
}
