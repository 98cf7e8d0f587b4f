package auth

import (
	"context"
	"log"
	"time"
)

const (
	// DefaultCodeSweepInterval reclaims exchange codes that were never
	// consumed, independent of consumption traffic.
	DefaultCodeSweepInterval = 60 * time.Second
	// DefaultLedgerSweepInterval is the coarse daily cleanup of expired
	// ledger rows. Blacklisted-but-unexpired rows are retained on purpose.
	DefaultLedgerSweepInterval = 24 * time.Hour
)

// Sweeper owns the background maintenance of the token subsystem. It goes
// through the same exchange and ledger interfaces as request-path code and
// stops when its context is cancelled.
type Sweeper struct {
	exchange       *CodeExchange
	refreshTokens  RefreshTokenRepositoryInterface
	codeInterval   time.Duration
	ledgerInterval time.Duration
}

func NewSweeper(exchange *CodeExchange, refreshTokens RefreshTokenRepositoryInterface) *Sweeper {
	return &Sweeper{
		exchange:       exchange,
		refreshTokens:  refreshTokens,
		codeInterval:   DefaultCodeSweepInterval,
		ledgerInterval: DefaultLedgerSweepInterval,
	}
}

// Start launches both sweep loops and returns immediately.
func (s *Sweeper) Start(ctx context.Context) {
	go s.loop(ctx, s.codeInterval, s.sweepCodes)
	go s.loop(ctx, s.ledgerInterval, s.sweepLedger)
}

func (s *Sweeper) loop(ctx context.Context, interval time.Duration, sweep func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep(ctx)
		}
	}
}

func (s *Sweeper) sweepCodes(context.Context) {
	if removed := s.exchange.CleanupExpiredCodes(); removed > 0 {
		log.Printf("exchange code sweep: evicted %d expired codes", removed)
	}
}

func (s *Sweeper) sweepLedger(ctx context.Context) {
	deleted, err := s.refreshTokens.DeleteExpiredBefore(ctx, time.Now())
	if err != nil {
		log.Printf("refresh token sweep failed: %v", err)
		return
	}
	log.Printf("refresh token sweep: deleted %d expired rows", deleted)
}
