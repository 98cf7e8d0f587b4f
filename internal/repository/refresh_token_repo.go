package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"memberhub/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateToken reports a unique-index collision on the token column.
// Practically unreachable with properly random tokens, but it must surface as
// a recoverable error rather than a crash.
var ErrDuplicateToken = errors.New("refresh token already exists")

// RefreshTokenRepository is the single source of truth for which refresh
// tokens are currently redeemable.
type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Save(ctx context.Context, t *domain.RefreshToken) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateToken
		}
		return err
	}
	return nil
}

func (r *RefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *RefreshTokenRepository) FindByMemberID(ctx context.Context, memberID int64) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("id DESC").
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Blacklist marks a row as permanently unusable. Idempotent: blacklisting an
// already-blacklisted row is a no-op.
func (r *RefreshTokenRepository) Blacklist(ctx context.Context, t *domain.RefreshToken) error {
	err := r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("id = ?", t.ID).
		Update("blacklisted", true).Error
	if err != nil {
		return err
	}
	t.Blacklisted = true
	return nil
}

// ReplaceForMember retires every active row the member still holds and
// inserts the replacement, all inside one transaction so the one-active-row
// invariant survives concurrent logins and refreshes. Retire means blacklist;
// dead rows stay until the scheduled cleanup deletes them.
func (r *RefreshTokenRepository) ReplaceForMember(ctx context.Context, t *domain.RefreshToken) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.RefreshToken{}).
			Where("member_id = ? AND blacklisted = ?", t.MemberID, false).
			Update("blacklisted", true).Error; err != nil {
			return err
		}
		return tx.Create(t).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateToken
		}
		return err
	}
	return nil
}

// DeleteExpiredBefore bulk-deletes rows whose expiry has passed. Only the
// scheduled cleanup calls this; request-path code never deletes.
func (r *RefreshTokenRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&domain.RefreshToken{})
	return res.RowsAffected, res.Error
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// modernc sqlite surfaces constraint failures as plain text
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
