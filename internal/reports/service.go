package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/labreport"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/shared/metrics"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/shared/storage/object"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/shared/telemetry"
)

// Service contains business logic for reports: persist the upload, acquire
// text, run the deterministic extraction, and store the structured result.
type Service struct {
	Store     object.ObjectStore
	Repo      Repo
	Extractor *labreport.Extractor
}

// Upload stores the file, extracts its structured content, and records the
// report. Extraction runs synchronously; the response carries the full result.
func (s *Service) Upload(ctx context.Context, userID, fileName string, r io.Reader) (Report, error) {
	if fileName == "" {
		return Report{}, fmt.Errorf("%w: file name required", ErrInvalidInput)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Report{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return Report{}, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userID, fileName, bytes.NewReader(data))
	if err != nil {
		return Report{}, fmt.Errorf("store upload: %w", err)
	}

	result, err := s.runExtraction(ctx, userID, fileName, data)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		ID:         uuid.NewString(),
		UserID:     userID,
		FileName:   fileName,
		MimeType:   mimeType,
		SizeBytes:  size,
		StorageKey: storageKey,
		NumPages:   result.ReportMetadata.NumPages,
		Result:     result.AsMap(),
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, report); err != nil {
		return Report{}, err
	}

	return report, nil
}

// FromText structures pre-extracted plain text, persisting both the text and
// the result. This is the entry point for callers that did their own OCR.
func (s *Service) FromText(ctx context.Context, userID, fileName, text string) (Report, error) {
	if strings.TrimSpace(text) == "" {
		return Report{}, fmt.Errorf("%w: text required", ErrInvalidInput)
	}
	if fileName == "" {
		fileName = "pasted.txt"
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userID, fileName, strings.NewReader(text))
	if err != nil {
		return Report{}, fmt.Errorf("store text: %w", err)
	}

	metrics.IncExtractionStarted()
	start := time.Now()
	result := s.Extractor.ExtractFromText(text, fileName, 1)
	finishExtraction(userID, fileName, start, len(result.Tests))

	report := Report{
		ID:         uuid.NewString(),
		UserID:     userID,
		FileName:   fileName,
		MimeType:   mimeType,
		SizeBytes:  size,
		StorageKey: storageKey,
		NumPages:   result.ReportMetadata.NumPages,
		Result:     result.AsMap(),
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, report); err != nil {
		return Report{}, err
	}

	return report, nil
}

// OpenFile streams the originally uploaded file for a report.
func (s *Service) OpenFile(ctx context.Context, userID, reportID string) (io.ReadCloser, Report, error) {
	report, err := s.Get(ctx, userID, reportID)
	if err != nil {
		return nil, Report{}, err
	}
	if report.StorageKey == "" {
		return nil, Report{}, ErrNotFound
	}
	rc, err := s.Store.Open(ctx, report.StorageKey)
	if err != nil {
		return nil, Report{}, fmt.Errorf("open stored file: %w", err)
	}
	return rc, report, nil
}

// Get returns a report by ID for a user.
func (s *Service) Get(ctx context.Context, userID, reportID string) (Report, error) {
	if userID == "" || reportID == "" {
		return Report{}, fmt.Errorf("%w: user id and report id required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID, reportID)
}

// Current returns the most recent report for a user.
func (s *Service) Current(ctx context.Context, userID string) (Report, error) {
	if userID == "" {
		return Report{}, errors.New("user id required")
	}
	return s.Repo.GetCurrentByUser(ctx, userID)
}

// List returns reports for a user, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Report, error) {
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// ClaimGuest moves a guest's reports to an authenticated user.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if guestUserID == "" || authedUserID == "" {
		return 0, fmt.Errorf("%w: guest and user ids required", ErrInvalidInput)
	}
	return s.Repo.ClaimGuest(ctx, guestUserID, authedUserID)
}

func (s *Service) runExtraction(ctx context.Context, userID, fileName string, data []byte) (labreport.ExtractionResult, error) {
	metrics.IncExtractionStarted()
	start := time.Now()

	result, err := s.Extractor.Extract(ctx, data, fileName)
	if err != nil {
		metrics.IncExtractionFailed()
		telemetry.Error("report.extraction_failed", map[string]any{
			"user_id":   userID,
			"file_name": fileName,
			"error":     err.Error(),
		})
		return labreport.ExtractionResult{}, err
	}

	finishExtraction(userID, fileName, start, len(result.Tests))
	return result, nil
}

func finishExtraction(userID, fileName string, start time.Time, testsDetected int) {
	metrics.IncExtractionCompleted()
	metrics.ObserveExtractionDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
	metrics.ObserveTestsDetected(float64(testsDetected))
	telemetry.Info("report.extracted", map[string]any{
		"user_id":        userID,
		"file_name":      fileName,
		"tests_detected": testsDetected,
	})
	// Zero detected tests is a valid outcome; surface it so support can spot
	// bad scans without failing the request.
	if testsDetected == 0 {
		telemetry.Warn("report.no_tests_detected", map[string]any{
			"user_id":   userID,
			"file_name": fileName,
		})
	}
}
