package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultCodeTTL bounds how long a token pair may sit behind an exchange
	// code before it is discarded.
	DefaultCodeTTL = 30 * time.Second
)

type codeEntry struct {
	tokens    TokenPair
	expiresAt time.Time
}

// CodeExchange parks a freshly minted token pair behind a single-use opaque
// code so an external-login redirect never carries the tokens themselves.
// Safe for concurrent use; unrelated codes never contend on a shared lock.
type CodeExchange struct {
	codes sync.Map // code string -> codeEntry
	ttl   time.Duration

	now func() time.Time
}

func NewCodeExchange(ttl time.Duration) *CodeExchange {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	return &CodeExchange{ttl: ttl, now: time.Now}
}

// GenerateCode stores the pair under a fresh unguessable code and returns it.
func (e *CodeExchange) GenerateCode(tokens TokenPair) string {
	code := uuid.NewString()
	e.codes.Store(code, codeEntry{
		tokens:    tokens,
		expiresAt: e.now().Add(e.ttl),
	})
	return code
}

// ConsumeCode atomically takes the entry for code. The second of two racing
// callers sees nothing, and an unknown code is indistinguishable from an
// already-used one. An entry past its expiry is discarded, not refunded.
func (e *CodeExchange) ConsumeCode(code string) (TokenPair, bool) {
	v, ok := e.codes.LoadAndDelete(code)
	if !ok {
		return TokenPair{}, false
	}
	entry := v.(codeEntry)
	if entry.expiresAt.Before(e.now()) {
		return TokenPair{}, false
	}
	return entry.tokens, true
}

// CleanupExpiredCodes evicts entries whose expiry has passed, so codes that
// are never consumed are still reclaimed. Codes are never reused, so deleting
// by key cannot clobber a newer entry.
func (e *CodeExchange) CleanupExpiredCodes() int {
	now := e.now()
	removed := 0
	e.codes.Range(func(key, value any) bool {
		if value.(codeEntry).expiresAt.Before(now) {
			e.codes.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Len is a test/metrics helper; it walks the map and is not O(1).
func (e *CodeExchange) Len() int {
	n := 0
	e.codes.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}
