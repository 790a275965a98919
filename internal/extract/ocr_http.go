package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPOCR calls an external OCR sidecar (a tesseract service or a vision API
// proxy). The sidecar takes raw image bytes in the request body and answers
// with plain UTF-8 text.
type HTTPOCR struct {
	Endpoint string
	Client   *http.Client
}

// NewHTTPOCR builds an HTTPOCR with a sane request timeout.
func NewHTTPOCR(endpoint string) *HTTPOCR {
	return &HTTPOCR{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

const maxOCRResponse = 10 << 20

func (o *HTTPOCR) ExtractText(ctx context.Context, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.Endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocr service status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxOCRResponse))
	if err != nil {
		return "", fmt.Errorf("read ocr response: %w", err)
	}
	return string(body), nil
}

var _ OCR = (*HTTPOCR)(nil)
