package reports

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/labreport"
	localstore "github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/shared/storage/object/local"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return &Service{
		Store:     localstore.New(t.TempDir()),
		Repo:      NewMemoryRepo(),
		Extractor: &labreport.Extractor{},
	}
}

func TestUploadRejectsEmptyInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "guest:g1", "", strings.NewReader("x")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing file name: got %v, want ErrInvalidInput", err)
	}
	if _, err := svc.Upload(ctx, "guest:g1", "report.txt", strings.NewReader("")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty body: got %v, want ErrInvalidInput", err)
	}
}

func TestFromTextDefaultsFileName(t *testing.T) {
	svc := newTestService(t)

	report, err := svc.FromText(context.Background(), "guest:g1", "", "Hemoglobin 10.2 g/dL 12.0 - 15.5")
	if err != nil {
		t.Fatalf("FromText: %v", err)
	}
	if report.FileName != "pasted.txt" {
		t.Fatalf("file name = %q, want pasted.txt", report.FileName)
	}
	if report.NumPages != 1 {
		t.Fatalf("num pages = %d, want 1", report.NumPages)
	}

	tests, ok := report.Result["tests"].([]any)
	if !ok || len(tests) != 1 {
		t.Fatalf("unexpected tests payload: %#v", report.Result["tests"])
	}
}

func TestFromTextRejectsBlankText(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.FromText(context.Background(), "guest:g1", "a.txt", "   \n"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}

func TestClaimGuestValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.ClaimGuest(ctx, "", "google:1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty guest id: got %v", err)
	}

	if _, err := svc.FromText(ctx, "guest:g1", "a.txt", "Hemoglobin 10.2 g/dL 12.0 - 15.5"); err != nil {
		t.Fatalf("seed report: %v", err)
	}
	claimed, err := svc.ClaimGuest(ctx, "guest:g1", "google:1")
	if err != nil {
		t.Fatalf("ClaimGuest: %v", err)
	}
	if claimed != 1 {
		t.Fatalf("claimed = %d, want 1", claimed)
	}

	// reports now belong to the authed user
	if _, err := svc.Current(ctx, "guest:g1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("guest still owns reports: %v", err)
	}
	report, err := svc.Current(ctx, "google:1")
	if err != nil {
		t.Fatalf("Current for claimed user: %v", err)
	}
	if report.UserID != "google:1" {
		t.Fatalf("user id = %q, want google:1", report.UserID)
	}
}
