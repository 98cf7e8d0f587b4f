package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"memberhub/internal/domain"
	jwtsvc "memberhub/internal/pkg/jwt"
	"memberhub/internal/repository"

	"gorm.io/gorm"
)

// Service orchestrates the token lifecycle: credential login, refresh-token
// rotation, logout, and the exchange-code hand-off after external logins.
type Service struct {
	members       MemberRepositoryInterface
	refreshTokens RefreshTokenRepositoryInterface
	tokens        TokenCodec
	passwords     PasswordComparer
	exchange      *CodeExchange
}

func NewService(
	members MemberRepositoryInterface,
	refreshTokens RefreshTokenRepositoryInterface,
	tokens TokenCodec,
	passwords PasswordComparer,
	exchange *CodeExchange,
) *Service {
	return &Service{
		members:       members,
		refreshTokens: refreshTokens,
		tokens:        tokens,
		passwords:     passwords,
		exchange:      exchange,
	}
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	member, err := s.members.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.passwords.Compare(req.Password, member.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issuePair(ctx, member)
}

// Refresh rotates a refresh token. Validation order: codec-level expiry,
// codec-level signature, ledger presence, blacklist flag — a wrongly-signed
// token never reaches the ledger.
func (s *Service) Refresh(ctx context.Context, raw string) (*TokenResponse, error) {
	if s.tokens.IsExpired(raw) {
		// The lenient check counts undecodable strings as expired; a full
		// verify keeps those in the invalid bucket.
		if _, err := s.tokens.Verify(raw); !errors.Is(err, jwtsvc.ErrTokenExpired) {
			return nil, ErrTokenInvalid
		}
		return nil, ErrTokenExpired
	}

	memberID, err := s.tokens.Verify(raw)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	cred, err := s.refreshTokens.FindByToken(ctx, raw)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, err
	}

	if cred.Blacklisted {
		return nil, ErrTokenBlacklisted
	}
	if cred.IsExpired(time.Now()) {
		return nil, ErrTokenExpired
	}

	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	// issuePair blacklists the consumed row along with any stale active row
	// for the member, inside the ledger's transaction.
	return s.issuePair(ctx, member)
}

// Logout blacklists the credential but keeps the row; a replay after logout
// reports "blacklisted", not "not found". Already-blacklisted tokens are a
// no-op.
func (s *Service) Logout(ctx context.Context, raw string) error {
	cred, err := s.refreshTokens.FindByToken(ctx, raw)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRefreshTokenNotFound
		}
		return err
	}
	return s.refreshTokens.Blacklist(ctx, cred)
}

// ExchangeExternalLoginCode redeems a hand-off code minted by
// CompleteExternalLogin. Unknown, consumed and expired codes are deliberately
// indistinguishable.
func (s *Service) ExchangeExternalLoginCode(code string) (*TokenResponse, error) {
	pair, ok := s.exchange.ConsumeCode(code)
	if !ok {
		return nil, ErrTokenInvalid
	}
	return &TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// CompleteExternalLogin turns a verified provider profile into a persisted
// token pair and parks the pair behind a short-lived exchange code, so the
// redirect back to the client carries only the code.
func (s *Service) CompleteExternalLogin(ctx context.Context, profile *ExternalProfile) (string, error) {
	member, err := s.members.GetByEmail(ctx, profile.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
		member = &domain.Member{
			Name:     profile.Name,
			Email:    strings.ToLower(strings.TrimSpace(profile.Email)),
			Provider: profile.Provider,
		}
		if err := s.members.Create(ctx, member); err != nil {
			return "", err
		}
	}

	tokens, err := s.issuePair(ctx, member)
	if err != nil {
		return "", err
	}

	return s.exchange.GenerateCode(TokenPair{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}), nil
}

// AccessTTLSeconds is the expiresIn value advertised alongside issued pairs.
func (s *Service) AccessTTLSeconds() int64 {
	return int64(s.tokens.AccessTTL().Seconds())
}

func (s *Service) GetCurrentMember(ctx context.Context, memberID int64) (*domain.Member, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}

// issuePair mints a fresh access/refresh pair and swaps it into the ledger,
// retiring whatever active credential the member held.
func (s *Service) issuePair(ctx context.Context, member *domain.Member) (*TokenResponse, error) {
	accessToken, err := s.tokens.GenerateAccessToken(member.ID, member.Email)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(member.ID)
	if err != nil {
		return nil, err
	}

	cred := &domain.RefreshToken{
		MemberID:  member.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(s.tokens.RefreshTTL()),
	}
	if err := s.refreshTokens.ReplaceForMember(ctx, cred); err != nil {
		if errors.Is(err, repository.ErrDuplicateToken) {
			return nil, ErrTokenConflict
		}
		return nil, err
	}

	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}
