package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/reports"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/users"
)

// Service removes everything stored for an identity: report rows and, for
// signed-in users, the user row itself.
type Service struct {
	ReportsRepo reports.Repo
	UsersRepo   users.Repo
}

type DeleteResult struct {
	DeletedReports int  `json:"deletedReports"`
	DeletedUser    bool `json:"deletedUser"`
}

func NewService(reportsRepo reports.Repo, usersRepo users.Repo) *Service {
	return &Service{ReportsRepo: reportsRepo, UsersRepo: usersRepo}
}

// Delete wipes the identity's data. Guests only own reports; authenticated
// users also have a users row. When both repos sit on the same database the
// deletes run in one transaction.
func (s *Service) Delete(ctx context.Context, userID string) (DeleteResult, error) {
	if strings.TrimSpace(userID) == "" {
		return DeleteResult{}, errors.New("userID is required")
	}
	isGuest := strings.HasPrefix(userID, "guest:")

	if reportsPG, ok := s.ReportsRepo.(*reports.PGRepo); ok && reportsPG != nil && reportsPG.DB != nil {
		return deleteWithTx(ctx, reportsPG.DB, userID, isGuest)
	}

	deletedReports, err := deleteReports(ctx, s.ReportsRepo, userID)
	if err != nil {
		return DeleteResult{}, err
	}

	deletedUser := false
	if !isGuest {
		switch err := deleteUser(ctx, s.UsersRepo, userID); {
		case err == nil:
			deletedUser = true
		case errors.Is(err, users.ErrNotFound):
			// nothing to remove; the identity may never have signed in
		default:
			return DeleteResult{}, err
		}
	}

	return DeleteResult{DeletedReports: deletedReports, DeletedUser: deletedUser}, nil
}

func deleteWithTx(ctx context.Context, db *sql.DB, userID string, isGuest bool) (DeleteResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return DeleteResult{}, err
	}
	defer tx.Rollback()

	reportRes, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE user_id = $1`, userID)
	if err != nil {
		return DeleteResult{}, err
	}
	deletedReports, _ := reportRes.RowsAffected()

	deletedUser := false
	if !isGuest {
		userRes, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
		if err != nil {
			return DeleteResult{}, err
		}
		if affected, _ := userRes.RowsAffected(); affected > 0 {
			deletedUser = true
		}
	}

	if err := tx.Commit(); err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{DeletedReports: int(deletedReports), DeletedUser: deletedUser}, nil
}

type reportsDeleter interface {
	DeleteByUser(ctx context.Context, userID string) (int, error)
}

type userDeleter interface {
	Delete(ctx context.Context, userID string) error
}

func deleteReports(ctx context.Context, repo reports.Repo, userID string) (int, error) {
	if deleter, ok := repo.(reportsDeleter); ok {
		return deleter.DeleteByUser(ctx, userID)
	}
	return 0, errors.New("reports repo does not support delete")
}

func deleteUser(ctx context.Context, repo users.Repo, userID string) error {
	if deleter, ok := repo.(userDeleter); ok {
		return deleter.Delete(ctx, userID)
	}
	return errors.New("users repo does not support delete")
}
