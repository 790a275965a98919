// Package extract acquires plain text from uploaded report files. PDF text
// layers are read with github.com/ledongthuc/pdf; scanned images go through a
// pluggable OCR collaborator so the rest of the pipeline never depends on an
// OCR engine being installed.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrOCRUnavailable is returned for image uploads when no OCR
	// collaborator is configured.
	ErrOCRUnavailable = errors.New("ocr not available")
	// ErrUnsupportedFormat is returned for file types the pipeline cannot
	// acquire text from.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// OCR converts an image to text. Implementations are external collaborators
// (a tesseract sidecar, a vision API); tests substitute fakes.
type OCR interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// FromBytes acquires UTF-8 text and a page count from an uploaded file,
// dispatching on the file extension. The ocr collaborator may be nil; it is
// only required for image uploads.
func FromBytes(ctx context.Context, data []byte, fileName string, ocr OCR) (string, int, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return fromPDF(data)
	case ".png", ".jpg", ".jpeg":
		if ocr == nil {
			return "", 0, ErrOCRUnavailable
		}
		text, err := ocr.ExtractText(ctx, data)
		if err != nil {
			return "", 0, fmt.Errorf("ocr %s: %w", fileName, err)
		}
		return text, 1, nil
	case ".txt":
		return string(data), 1, nil
	default:
		return "", 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(fileName))
	}
}

func fromPDF(data []byte) (string, int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", 0, fmt.Errorf("pdf text layer: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", 0, fmt.Errorf("read pdf text: %w", err)
	}

	numPages := reader.NumPage()
	if numPages < 1 {
		numPages = 1
	}
	return buf.String(), numPages, nil
}
