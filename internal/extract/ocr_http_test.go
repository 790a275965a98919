package extract

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPOCRPostsImageBytes(t *testing.T) {
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte("Hemoglobin 10.2 g/dL 12.0 - 15.5"))
	}))
	defer srv.Close()

	ocr := NewHTTPOCR(srv.URL)
	text, err := ocr.ExtractText(context.Background(), []byte{0x89, 0x50})
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "Hemoglobin 10.2 g/dL 12.0 - 15.5" {
		t.Fatalf("unexpected text: %q", text)
	}
	if len(received) != 2 {
		t.Fatalf("server received %d bytes, want 2", len(received))
	}
}

func TestHTTPOCRRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ocr := NewHTTPOCR(srv.URL)
	if _, err := ocr.ExtractText(context.Background(), []byte("x")); err == nil {
		t.Fatal("expected error for 503 response")
	}
}
