package persist

import (
	"context"
	"time"
)

// UsageRecord is written once per successful image generation and read back
// when counting a caller's quota. Records are never deleted; stale ones are
// filtered by timestamp at read time.
type UsageRecord struct {
	ID            DBID      `json:"id" firestore:"-"`
	WalletAddress Address   `json:"walletAddress" firestore:"walletAddress"`
	Email         Email     `json:"email,omitempty" firestore:"email"`
	Prompt        string    `json:"prompt" firestore:"prompt"`
	Timestamp     time.Time `json:"timestamp" firestore:"timestamp"`
}

// UsageRecordRepository persists and queries generation usage records.
// Queries are exact-match only.
type UsageRecordRepository interface {
	Create(context.Context, UsageRecord) (DBID, error)
	GetByWalletAddress(context.Context, Address) ([]UsageRecord, error)
	GetByEmail(context.Context, Email) ([]UsageRecord, error)
}
