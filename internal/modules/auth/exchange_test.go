package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeExchange_ConsumeOnce(t *testing.T) {
	e := NewCodeExchange(DefaultCodeTTL)
	pair := TokenPair{AccessToken: "access", RefreshToken: "refresh"}

	code := e.GenerateCode(pair)
	require.NotEmpty(t, code)

	got, ok := e.ConsumeCode(code)
	require.True(t, ok)
	assert.Equal(t, pair, got)

	_, ok = e.ConsumeCode(code)
	assert.False(t, ok, "second consume must fail")
}

func TestCodeExchange_UnknownCode(t *testing.T) {
	e := NewCodeExchange(DefaultCodeTTL)

	_, ok := e.ConsumeCode("never-issued")
	assert.False(t, ok)
}

func TestCodeExchange_ExpiredCodeNotRefunded(t *testing.T) {
	e := NewCodeExchange(30 * time.Second)

	now := time.Now()
	e.now = func() time.Time { return now }
	code := e.GenerateCode(TokenPair{AccessToken: "a", RefreshToken: "r"})

	e.now = func() time.Time { return now.Add(31 * time.Second) }
	_, ok := e.ConsumeCode(code)
	assert.False(t, ok, "expired code must not redeem")

	// the entry was taken, not put back
	assert.Equal(t, 0, e.Len())
}

func TestCodeExchange_ConcurrentConsume_SingleWinner(t *testing.T) {
	e := NewCodeExchange(DefaultCodeTTL)
	code := e.GenerateCode(TokenPair{AccessToken: "a", RefreshToken: "r"})

	const consumers = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	start := make(chan struct{})
	for i := 0; i < consumers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok := e.ConsumeCode(code); ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, wins, "exactly one consumer may win")
}

func TestCodeExchange_CleanupExpiredCodes(t *testing.T) {
	e := NewCodeExchange(30 * time.Second)

	now := time.Now()
	e.now = func() time.Time { return now }
	e.GenerateCode(TokenPair{AccessToken: "a1", RefreshToken: "r1"})
	e.GenerateCode(TokenPair{AccessToken: "a2", RefreshToken: "r2"})

	e.now = func() time.Time { return now.Add(20 * time.Second) }
	live := e.GenerateCode(TokenPair{AccessToken: "a3", RefreshToken: "r3"})

	e.now = func() time.Time { return now.Add(40 * time.Second) }
	removed := e.CleanupExpiredCodes()

	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, e.Len())

	got, ok := e.ConsumeCode(live)
	require.True(t, ok)
	assert.Equal(t, "a3", got.AccessToken)
}
