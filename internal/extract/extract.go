// Package extract turns uploaded document bytes into one flattened
// plain-text string. The rest of the system is agnostic to the source
// format: it only ever sees the text.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFileType is surfaced before any processing happens.
	ErrUnsupportedFileType = errors.New("unsupported file type (upload PDF, DOCX, HTML or TXT)")

	// ErrNoText means the document parsed but contained nothing usable.
	ErrNoText = errors.New("no text could be extracted from the document")
)

// FromUpload extracts plain text from an uploaded file, dispatching on
// the filename extension.
func FromUpload(filename string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err = fromPDF(data)
	case ".docx":
		text, err = fromDOCX(data)
	case ".html", ".htm":
		text, err = fromHTML(data)
	case ".txt":
		text = string(data)
	default:
		return "", ErrUnsupportedFileType
	}

	if err != nil {
		return "", fmt.Errorf("extract text from %s: %w", filename, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
