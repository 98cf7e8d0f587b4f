package jwt

import (
	"errors"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired means the token decoded and verified but its expiry has
	// passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers everything else: bad signature, malformed input,
	// missing claims.
	ErrTokenInvalid = errors.New("token invalid")
)

// Service issues and verifies HMAC-SHA256 signed tokens. It carries no state
// beyond the shared secret and the two configured TTLs; the same secret and
// clock always produce the same verdict.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

type Claims struct {
	Email string `json:"email,omitempty"`
	jwtlib.RegisteredClaims
}

func New(secret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *Service) AccessTTL() time.Duration  { return s.accessTTL }
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// GenerateAccessToken mints a short-lived token carrying the member id as
// subject plus the email claim.
func (s *Service) GenerateAccessToken(memberID int64, email string) (string, error) {
	return s.generate(memberID, email, s.accessTTL)
}

// GenerateRefreshToken mints a long-lived token carrying only the member id.
func (s *Service) GenerateRefreshToken(memberID int64) (string, error) {
	return s.generate(memberID, "", s.refreshTTL)
}

func (s *Service) generate(memberID int64, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   strconv.FormatInt(memberID, 10),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the subject member id.
// Expiry on a well-signed token reports ErrTokenExpired; any other failure
// reports ErrTokenInvalid.
func (s *Service) Verify(tokenStr string) (int64, error) {
	claims, err := s.parse(tokenStr)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}

	memberID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	return memberID, nil
}

// EmailFromToken returns the email claim of a verified token.
func (s *Service) EmailFromToken(tokenStr string) (string, error) {
	claims, err := s.parse(tokenStr)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	return claims.Email, nil
}

// IsExpired is a lenient decode-only expiry check used to triage before a
// full Verify. It does not check the signature and treats anything it cannot
// decode as expired.
func (s *Service) IsExpired(tokenStr string) bool {
	var claims Claims
	if _, _, err := jwtlib.NewParser().ParseUnverified(tokenStr, &claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.Before(time.Now())
}

func (s *Service) parse(tokenStr string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
