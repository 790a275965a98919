package reports

import "context"

// Repo defines persistence operations for reports.
type Repo interface {
	Create(ctx context.Context, report Report) error
	GetByID(ctx context.Context, userID, reportID string) (Report, error)
	GetCurrentByUser(ctx context.Context, userID string) (Report, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Report, error)
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}
