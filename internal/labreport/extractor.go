// Package labreport turns raw lab-report text into a structured extraction
// result: patient identity fields plus flagged test records. Parsing is a
// best-effort line-local heuristic over messy PDF/OCR text, so every path
// degrades to empty values instead of failing.
package labreport

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/extract"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/refrange"
)

var (
	valuePattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	rangePattern = regexp.MustCompile(`-?\d+(?:\.\d+)?\s*(?:-|–|—|to|TO)\s*-?\d+(?:\.\d+)?`)

	// Labeled fields on a single line are usually separated by a tab or a run
	// of spaces; the capture for one label stops at the next separator.
	fieldBreakPattern = regexp.MustCompile(`\t|\s{2,}`)
)

// Ordered per field; the first pattern that matches anywhere in the text wins.
var (
	namePatterns = compilePatterns(
		`Patient Name\s*[:\-]\s*(.+)`,
		`Name\s*[:\-]\s*(.+)`,
	)
	agePatterns    = compilePatterns(`Age\s*[:\-]\s*(.+)`)
	genderPatterns = compilePatterns(
		`Gender\s*[:\-]\s*(.+)`,
		`Sex\s*[:\-]\s*(.+)`,
	)
	patientIDPatterns = compilePatterns(
		`Patient ID\s*[:\-]\s*(.+)`,
		`ID\s*[:\-]\s*(.+)`,
	)
	datePatterns = compilePatterns(
		`Date\s*[:\-]\s*(.+)`,
		`Date of Report\s*[:\-]\s*(.+)`,
	)
	referringDoctorPatterns = compilePatterns(`Ref(?:erring)? Doctor\s*[:\-]\s*(.+)`)
	laboratoryPatterns      = compilePatterns(
		`Laboratory\s*[:\-]\s*(.+)`,
		`Lab Name\s*[:\-]\s*(.+)`,
	)
)

// Lines carrying any of these words describe the patient or the report, not a
// measurement, and are never emitted as test records.
var metadataKeywords = []string{"patient", "referring", "doctor", "lab", "report", "age", "gender"}

func compilePatterns(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+p))
	}
	return compiled
}

// Extractor orchestrates deterministic report extraction. It holds no mutable
// state; concurrent calls are safe.
type Extractor struct {
	// OCR handles image uploads. May be nil; PDF and plain-text extraction
	// never require it.
	OCR extract.OCR
}

// Extract acquires text from the uploaded bytes by format, then structures it.
func (e *Extractor) Extract(ctx context.Context, data []byte, fileName string) (ExtractionResult, error) {
	text, numPages, err := extract.FromBytes(ctx, data, fileName, e.OCR)
	if err != nil {
		return ExtractionResult{}, err
	}
	return e.ExtractFromText(text, fileName, numPages), nil
}

// ExtractFromText structures pre-acquired plain text. It always returns a
// complete result; zero detected tests is a valid outcome.
func (e *Extractor) ExtractFromText(text, sourceFilename string, numPages int) ExtractionResult {
	if numPages < 1 {
		numPages = 1
	}
	return ExtractionResult{
		PatientDetails: ExtractPatientDetails(text),
		ReportMetadata: ReportMetadata{
			SourceFilename:      sourceFilename,
			NumPages:            numPages,
			ExtractionTimestamp: time.Now().UTC().Format(time.RFC3339),
		},
		Tests: sanitizeTests(parseTests(text)),
	}
}

// ExtractPatientDetails matches each identity field's patterns against the
// full text. Missing fields come back as empty strings, never absent.
func ExtractPatientDetails(text string) PatientDetails {
	return PatientDetails{
		Name:            firstFieldMatch(text, namePatterns),
		Age:             firstFieldMatch(text, agePatterns),
		Gender:          firstFieldMatch(text, genderPatterns),
		PatientID:       firstFieldMatch(text, patientIDPatterns),
		DateOfReport:    firstFieldMatch(text, datePatterns),
		ReferringDoctor: firstFieldMatch(text, referringDoctorPatterns),
		LaboratoryName:  firstFieldMatch(text, laboratoryPatterns),
	}
}

func firstFieldMatch(text string, patterns []*regexp.Regexp) string {
	for _, pattern := range patterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			captured := m[1]
			if loc := fieldBreakPattern.FindStringIndex(captured); loc != nil {
				captured = captured[:loc[0]]
			}
			return cleanField(captured)
		}
	}
	return ""
}

func cleanField(value string) string {
	return strings.Trim(strings.TrimSpace(value), "-:")
}

func parseTests(text string) []TestRecord {
	var tests []TestRecord
	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.Join(strings.Fields(rawLine), " ")
		if line == "" {
			continue
		}
		if record, ok := parseTestLine(line); ok {
			tests = append(tests, record)
		}
	}
	return tests
}

func parseTestLine(line string) (TestRecord, bool) {
	lowered := strings.ToLower(line)
	for _, keyword := range metadataKeywords {
		if strings.Contains(lowered, keyword) {
			return TestRecord{}, false
		}
	}

	if !strings.ContainsAny(line, "0123456789") {
		return TestRecord{}, false
	}

	loc := valuePattern.FindStringIndex(line)
	if loc == nil {
		return TestRecord{}, false
	}

	name := strings.Trim(line[:loc[0]], "-: ")
	if utf8.RuneCountInString(name) < 2 {
		return TestRecord{}, false
	}

	remainder := strings.TrimSpace(line[loc[1]:])

	var referenceRange, unit string
	if refLoc := rangePattern.FindStringIndex(remainder); refLoc != nil {
		referenceRange = strings.TrimSpace(remainder[refLoc[0]:refLoc[1]])
		unit = strings.Trim(remainder[:refLoc[0]], "-: ")
	} else {
		unit = strings.TrimSpace(remainder)
	}

	return TestRecord{
		Name:           name,
		Value:          line[loc[0]:loc[1]],
		Unit:           unit,
		ReferenceRange: referenceRange,
		RawTextSnippet: line,
	}, true
}

// sanitizeTests trims every field and fills in missing flags from the
// reference range. A non-empty flag supplied by an upstream producer is kept.
func sanitizeTests(tests []TestRecord) []TestRecord {
	sanitized := make([]TestRecord, 0, len(tests))
	for _, test := range tests {
		record := TestRecord{
			Name:           strings.TrimSpace(test.Name),
			Value:          strings.TrimSpace(test.Value),
			Unit:           strings.TrimSpace(test.Unit),
			ReferenceRange: strings.TrimSpace(test.ReferenceRange),
			Flag:           strings.TrimSpace(test.Flag),
			RawTextSnippet: strings.TrimSpace(test.RawTextSnippet),
		}
		if record.Flag == "" {
			record.Flag = refrange.ComputeFlag(record.Value, record.ReferenceRange)
		}
		sanitized = append(sanitized, record)
	}
	return sanitized
}
