package reports

import "time"

// ReportResponse is the outward-facing representation of a processed report.
type ReportResponse struct {
	ReportID   string         `json:"reportId"`
	FileName   string         `json:"fileName"`
	MimeType   string         `json:"mimeType"`
	SizeBytes  int64          `json:"sizeBytes"`
	NumPages   int            `json:"numPages"`
	UploadedAt time.Time      `json:"uploadedAt"`
	Result     map[string]any `json:"result"`
}

// ReportSummary omits the extraction result for list views.
type ReportSummary struct {
	ReportID   string    `json:"reportId"`
	FileName   string    `json:"fileName"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	NumPages   int       `json:"numPages"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func toResponse(report Report) ReportResponse {
	return ReportResponse{
		ReportID:   report.ID,
		FileName:   report.FileName,
		MimeType:   report.MimeType,
		SizeBytes:  report.SizeBytes,
		NumPages:   report.NumPages,
		UploadedAt: report.CreatedAt,
		Result:     report.Result,
	}
}

func toSummary(report Report) ReportSummary {
	return ReportSummary{
		ReportID:   report.ID,
		FileName:   report.FileName,
		MimeType:   report.MimeType,
		SizeBytes:  report.SizeBytes,
		NumPages:   report.NumPages,
		UploadedAt: report.CreatedAt,
	}
}
