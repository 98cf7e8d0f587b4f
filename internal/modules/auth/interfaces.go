package auth

import (
	"context"
	"time"

	"memberhub/internal/domain"
)

// MemberRepositoryInterface — only the member reads/writes the auth service uses.
type MemberRepositoryInterface interface {
	Create(ctx context.Context, m *domain.Member) error
	GetByEmail(ctx context.Context, email string) (*domain.Member, error)
	GetByID(ctx context.Context, id int64) (*domain.Member, error)
}

// RefreshTokenRepositoryInterface — the ledger of redeemable refresh tokens.
type RefreshTokenRepositoryInterface interface {
	Save(ctx context.Context, t *domain.RefreshToken) error
	FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	FindByMemberID(ctx context.Context, memberID int64) (*domain.RefreshToken, error)
	Blacklist(ctx context.Context, t *domain.RefreshToken) error
	ReplaceForMember(ctx context.Context, t *domain.RefreshToken) error
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TokenCodec — the signed-token issue/verify surface of internal/pkg/jwt.
type TokenCodec interface {
	GenerateAccessToken(memberID int64, email string) (string, error)
	GenerateRefreshToken(memberID int64) (string, error)
	Verify(token string) (int64, error)
	IsExpired(token string) bool
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

// PasswordComparer — opaque compare(plain, hash) capability.
type PasswordComparer interface {
	Compare(plain, hash string) bool
}
