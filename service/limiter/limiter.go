package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/minters-xyz/go-minters/service/persist"
)

const (
	// DefaultLimit is the number of generations allowed per rolling window
	DefaultLimit = 2
	// DefaultWindow is the trailing window generations are counted over
	DefaultWindow = 24 * time.Hour
)

// ErrLimitExceeded is returned when an identity has exhausted its quota
type ErrLimitExceeded struct {
	Limit int
}

func (e ErrLimitExceeded) Error() string {
	return fmt.Sprintf("limit reached: you can only generate %d images", e.Limit)
}

// Limiter counts time-windowed usage records for a wallet/email identity and
// enforces a fixed quota. The check and the subsequent usage write are not
// atomic; concurrent requests from one identity can both pass the check.
type Limiter struct {
	repo   persist.UsageRecordRepository
	limit  int
	window time.Duration
	now    func() time.Time
}

// New creates a limiter with the default quota
func New(repo persist.UsageRecordRepository) *Limiter {
	return &Limiter{
		repo:   repo,
		limit:  DefaultLimit,
		window: DefaultWindow,
		now:    time.Now,
	}
}

// Limit returns the fixed quota
func (l *Limiter) Limit() int {
	return l.limit
}

// Count returns how many generations the identity has used inside the
// trailing window. Records matching either the wallet or the email are
// unioned and de-duplicated by document ID.
func (l *Limiter) Count(ctx context.Context, wallet persist.Address, email persist.Email) (int, error) {
	cutoff := l.now().Add(-l.window)
	seen := map[persist.DBID]bool{}
	count := 0

	tally := func(records []persist.UsageRecord) {
		for _, record := range records {
			if seen[record.ID] || record.Timestamp.Before(cutoff) {
				continue
			}
			seen[record.ID] = true
			count++
		}
	}

	if wallet != "" {
		records, err := l.repo.GetByWalletAddress(ctx, wallet)
		if err != nil {
			return 0, err
		}
		tally(records)
	}

	if email != "" {
		records, err := l.repo.GetByEmail(ctx, email)
		if err != nil {
			return 0, err
		}
		tally(records)
	}

	return count, nil
}

// Remaining returns how many generations the identity has left given a count
func (l *Limiter) Remaining(count int) int {
	if remaining := l.limit - count; remaining > 0 {
		return remaining
	}
	return 0
}

// Check returns ErrLimitExceeded when the identity's quota is exhausted
func (l *Limiter) Check(ctx context.Context, wallet persist.Address, email persist.Email) error {
	count, err := l.Count(ctx, wallet, email)
	if err != nil {
		return err
	}
	if count >= l.limit {
		return ErrLimitExceeded{Limit: l.limit}
	}
	return nil
}
