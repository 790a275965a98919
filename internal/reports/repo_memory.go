package reports

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo used when no database is
// configured.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Report // userID -> reports
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]Report),
	}
}

// Create appends a report for the owning user.
func (r *MemoryRepo) Create(ctx context.Context, report Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[report.UserID] = append(r.data[report.UserID], report)
	return nil
}

// GetByID returns a report by ID for a user.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, reportID string) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, report := range r.data[userID] {
		if report.ID == reportID {
			return report, nil
		}
	}
	return Report{}, ErrNotFound
}

// GetCurrentByUser returns the most recent report for a user.
func (r *MemoryRepo) GetCurrentByUser(ctx context.Context, userID string) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	userReports := r.data[userID]
	if len(userReports) == 0 {
		return Report{}, ErrNotFound
	}
	return userReports[len(userReports)-1], nil
}

// ListByUser returns reports for a user, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	userReports := r.data[userID]
	r.mu.RUnlock()

	if len(userReports) == 0 || offset >= len(userReports) {
		return []Report{}, nil
	}

	sorted := make([]Report, len(userReports))
	copy(sorted, userReports)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	end := len(sorted)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return sorted[offset:end], nil
}

// DeleteByUser removes every report owned by the user.
func (r *MemoryRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := len(r.data[userID])
	delete(r.data, userID)
	return deleted, nil
}

// ClaimGuest reassigns a guest user's reports to an authenticated user.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	claimed := r.data[guestUserID]
	if len(claimed) == 0 {
		return 0, nil
	}
	delete(r.data, guestUserID)
	for i := range claimed {
		claimed[i].UserID = authedUserID
	}
	r.data[authedUserID] = append(r.data[authedUserID], claimed...)
	return len(claimed), nil
}

var _ Repo = (*MemoryRepo)(nil)
