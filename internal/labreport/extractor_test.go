package labreport

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/extract"
)

const sampleReport = `Patient Name: Jane Doe  Age: 45  Gender: Female
Hemoglobin 11.2 g/dL 12 - 16
Platelet Count 420 x10^3/uL 150-400`

func TestExtractFromTextEndToEnd(t *testing.T) {
	e := &Extractor{}
	result := e.ExtractFromText(sampleReport, "sample.txt", 1)

	if result.PatientDetails.Name != "Jane Doe" {
		t.Fatalf("name = %q, want %q", result.PatientDetails.Name, "Jane Doe")
	}
	if result.PatientDetails.Age != "45" {
		t.Fatalf("age = %q, want %q", result.PatientDetails.Age, "45")
	}
	if result.PatientDetails.Gender != "Female" {
		t.Fatalf("gender = %q, want %q", result.PatientDetails.Gender, "Female")
	}

	if len(result.Tests) != 2 {
		t.Fatalf("expected 2 tests, got %d: %+v", len(result.Tests), result.Tests)
	}

	hb := result.Tests[0]
	if hb.Name != "Hemoglobin" || hb.Value != "11.2" || hb.Unit != "g/dL" || hb.ReferenceRange != "12 - 16" || hb.Flag != "low" {
		t.Fatalf("unexpected hemoglobin record: %+v", hb)
	}

	plt := result.Tests[1]
	if plt.Name != "Platelet Count" || plt.Value != "420" || plt.Unit != "x10^3/uL" || plt.ReferenceRange != "150-400" || plt.Flag != "high" {
		t.Fatalf("unexpected platelet record: %+v", plt)
	}

	if result.ReportMetadata.SourceFilename != "sample.txt" {
		t.Fatalf("source filename = %q", result.ReportMetadata.SourceFilename)
	}
	if result.ReportMetadata.NumPages != 1 {
		t.Fatalf("num pages = %d, want 1", result.ReportMetadata.NumPages)
	}
	if result.ReportMetadata.ExtractionTimestamp == "" {
		t.Fatal("expected extraction timestamp")
	}
}

func TestExtractFromTextIdempotent(t *testing.T) {
	e := &Extractor{}
	first := e.ExtractFromText(sampleReport, "sample.txt", 2)
	second := e.ExtractFromText(sampleReport, "sample.txt", 2)

	if !reflect.DeepEqual(first.PatientDetails, second.PatientDetails) {
		t.Fatalf("patient details differ: %+v vs %+v", first.PatientDetails, second.PatientDetails)
	}
	if !reflect.DeepEqual(first.Tests, second.Tests) {
		t.Fatalf("tests differ: %+v vs %+v", first.Tests, second.Tests)
	}
}

func TestMetadataLinesNeverBecomeTests(t *testing.T) {
	lines := []string{
		"Patient Age: 45",
		"Referring Doctor: Dr. House, Room 221",
		"Report Date: 2024-01-15",
		"Laboratory: Central Lab 3",
	}
	for _, line := range lines {
		if tests := parseTests(line); len(tests) != 0 {
			t.Fatalf("line %q produced test records: %+v", line, tests)
		}
	}
}

func TestParseTestsHeuristics(t *testing.T) {
	cases := []struct {
		name  string
		line  string
		want  *TestRecord
	}{
		{
			name: "no digits rejected",
			line: "Complete Blood Count",
		},
		{
			name: "short name rejected",
			line: "A 5 mg",
		},
		{
			name: "range without unit",
			line: "Glucose 95 70-110",
			want: &TestRecord{Name: "Glucose", Value: "95", Unit: "", ReferenceRange: "70-110", RawTextSnippet: "Glucose 95 70-110"},
		},
		{
			name: "unit without range",
			line: "WBC Count 7.5 x10^3/uL",
			want: &TestRecord{Name: "WBC Count", Value: "7.5", Unit: "x10^3/uL", ReferenceRange: "", RawTextSnippet: "WBC Count 7.5 x10^3/uL"},
		},
		{
			name: "whitespace collapsed",
			line: "Hemoglobin    11.2   g/dL   12 - 16",
			want: &TestRecord{Name: "Hemoglobin", Value: "11.2", Unit: "g/dL", ReferenceRange: "12 - 16", RawTextSnippet: "Hemoglobin 11.2 g/dL 12 - 16"},
		},
		{
			name: "to separator in range",
			line: "Calcium 9.1 mg/dL 8.5 to 10.5",
			want: &TestRecord{Name: "Calcium", Value: "9.1", Unit: "mg/dL", ReferenceRange: "8.5 to 10.5", RawTextSnippet: "Calcium 9.1 mg/dL 8.5 to 10.5"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseTests(tc.line)
			if tc.want == nil {
				if len(got) != 0 {
					t.Fatalf("expected rejection, got %+v", got)
				}
				return
			}
			if len(got) != 1 {
				t.Fatalf("expected 1 record, got %d", len(got))
			}
			if got[0] != *tc.want {
				t.Fatalf("got %+v, want %+v", got[0], *tc.want)
			}
		})
	}
}

func TestSanitizeTestsKeepsSuppliedFlag(t *testing.T) {
	in := []TestRecord{{
		Name:           " Hemoglobin ",
		Value:          " 11.2 ",
		Unit:           " g/dL ",
		ReferenceRange: " 12-16 ",
		Flag:           "normal",
		RawTextSnippet: " Hemoglobin 11.2 ",
	}}
	out := sanitizeTests(in)
	if out[0].Flag != "normal" {
		t.Fatalf("supplied flag overwritten: %+v", out[0])
	}
	if out[0].Name != "Hemoglobin" || out[0].Value != "11.2" {
		t.Fatalf("fields not trimmed: %+v", out[0])
	}
}

func TestSanitizeTestsComputesMissingFlag(t *testing.T) {
	out := sanitizeTests([]TestRecord{{
		Name:           "Hemoglobin",
		Value:          "11.2",
		ReferenceRange: "12-16",
	}})
	if out[0].Flag != "low" {
		t.Fatalf("flag = %q, want low", out[0].Flag)
	}

	out = sanitizeTests([]TestRecord{{
		Name:  "Widal",
		Value: "1",
	}})
	if out[0].Flag != "" {
		t.Fatalf("flag = %q, want empty for missing range", out[0].Flag)
	}
}

func TestExtractPatientDetailsDefaultsToEmpty(t *testing.T) {
	details := ExtractPatientDetails("no recognizable fields here")
	if details != (PatientDetails{}) {
		t.Fatalf("expected all-empty details, got %+v", details)
	}
}

func TestExtractPatientDetailsPatternPriority(t *testing.T) {
	text := strings.Join([]string{
		"Patient Name: Jane Doe",
		"Name: Should Not Win",
		"Patient ID: PID-7781",
		"Sex: F",
		"Date: 15/01/2024",
		"Ref Doctor: Dr. Smith",
		"Laboratory: Central Diagnostics",
	}, "\n")

	details := ExtractPatientDetails(text)
	if details.Name != "Jane Doe" {
		t.Fatalf("name = %q, want first pattern to win", details.Name)
	}
	if details.PatientID != "PID-7781" {
		t.Fatalf("patient_id = %q", details.PatientID)
	}
	if details.Gender != "F" {
		t.Fatalf("gender = %q", details.Gender)
	}
	if details.DateOfReport != "15/01/2024" {
		t.Fatalf("date_of_report = %q", details.DateOfReport)
	}
	if details.ReferringDoctor != "Dr. Smith" {
		t.Fatalf("referring_doctor = %q", details.ReferringDoctor)
	}
	if details.LaboratoryName != "Central Diagnostics" {
		t.Fatalf("laboratory_name = %q", details.LaboratoryName)
	}
}

func TestExtractFromTextEmptyInput(t *testing.T) {
	e := &Extractor{}
	result := e.ExtractFromText("", "empty.txt", 0)

	if result.ReportMetadata.NumPages != 1 {
		t.Fatalf("num pages = %d, want clamp to 1", result.ReportMetadata.NumPages)
	}
	if result.Tests == nil || len(result.Tests) != 0 {
		t.Fatalf("expected empty non-nil tests, got %#v", result.Tests)
	}
	if result.PatientDetails != (PatientDetails{}) {
		t.Fatalf("expected empty details, got %+v", result.PatientDetails)
	}
}

func TestAsMapContractKeys(t *testing.T) {
	e := &Extractor{}
	result := e.ExtractFromText(sampleReport, "sample.txt", 1).AsMap()

	for _, key := range []string{"patient_details", "report_metadata", "tests"} {
		if _, ok := result[key]; !ok {
			t.Fatalf("missing top-level key %q", key)
		}
	}

	payload, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("result not JSON-serializable: %v", err)
	}

	var round struct {
		PatientDetails map[string]string   `json:"patient_details"`
		Tests          []map[string]string `json:"tests"`
	}
	if err := json.Unmarshal(payload, &round); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(round.PatientDetails) != 7 {
		t.Fatalf("expected 7 patient detail keys, got %d", len(round.PatientDetails))
	}
	if len(round.Tests) != 2 {
		t.Fatalf("expected 2 tests, got %d", len(round.Tests))
	}
	for _, key := range []string{"name", "value", "unit", "reference_range", "flag", "raw_text_snippet"} {
		if _, ok := round.Tests[0][key]; !ok {
			t.Fatalf("test record missing key %q", key)
		}
	}
}

type stubOCR struct {
	text string
}

func (s *stubOCR) ExtractText(ctx context.Context, data []byte) (string, error) {
	return s.text, nil
}

func TestExtractDelegatesToOCRForImages(t *testing.T) {
	e := &Extractor{OCR: &stubOCR{text: sampleReport}}
	result, err := e.Extract(context.Background(), []byte{0x89, 0x50}, "scan.png")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Tests) != 2 {
		t.Fatalf("expected 2 tests from OCR text, got %d", len(result.Tests))
	}
	if result.ReportMetadata.NumPages != 1 {
		t.Fatalf("num pages = %d, want 1", result.ReportMetadata.NumPages)
	}
}

func TestExtractImageWithoutOCRFails(t *testing.T) {
	e := &Extractor{}
	if _, err := e.Extract(context.Background(), []byte{0x89}, "scan.png"); !errors.Is(err, extract.ErrOCRUnavailable) {
		t.Fatalf("expected ErrOCRUnavailable, got %v", err)
	}
}
