package reports

import "time"

// Report represents an uploaded lab report and its structured extraction
// result, owned by a user.
type Report struct {
	ID         string
	UserID     string
	FileName   string
	MimeType   string
	SizeBytes  int64
	StorageKey string
	NumPages   int
	Result     map[string]any
	CreatedAt  time.Time
}
