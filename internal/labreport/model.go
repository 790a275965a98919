package labreport

import "encoding/json"

// PatientDetails holds the seven identity fields recognized on a report.
// Missing fields stay empty strings so callers can always index every key.
type PatientDetails struct {
	Name            string `json:"name"`
	Age             string `json:"age"`
	Gender          string `json:"gender"`
	PatientID       string `json:"patient_id"`
	DateOfReport    string `json:"date_of_report"`
	ReferringDoctor string `json:"referring_doctor"`
	LaboratoryName  string `json:"laboratory_name"`
}

// TestRecord is one detected lab measurement. Flag is one of the refrange
// flag constants or empty when it could not be computed.
type TestRecord struct {
	Name           string `json:"name"`
	Value          string `json:"value"`
	Unit           string `json:"unit"`
	ReferenceRange string `json:"reference_range"`
	Flag           string `json:"flag"`
	RawTextSnippet string `json:"raw_text_snippet"`
}

// ReportMetadata describes the source document of an extraction.
type ReportMetadata struct {
	SourceFilename      string `json:"source_filename"`
	NumPages            int    `json:"num_pages"`
	ExtractionTimestamp string `json:"extraction_timestamp"`
}

// ExtractionResult is the root aggregate returned by the extractor. It is the
// sole contract the API and narrative layers consume; they treat it as opaque
// JSON-serializable data.
type ExtractionResult struct {
	PatientDetails PatientDetails `json:"patient_details"`
	ReportMetadata ReportMetadata `json:"report_metadata"`
	Tests          []TestRecord   `json:"tests"`
}

// AsMap renders the result as a plain nested map for storage and transport.
func (r ExtractionResult) AsMap() map[string]any {
	payload, err := json.Marshal(r)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(payload, &out); err != nil {
		return map[string]any{}
	}
	return out
}
