package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/minters-xyz/go-minters/service/persist"
	"google.golang.org/api/iterator"
)

// UsageRecordRepository is a document-store repository for image generation
// usage records
type UsageRecordRepository struct {
	client *firestore.Client
}

// NewUsageRecordRepository creates a new UsageRecordRepository
func NewUsageRecordRepository(client *firestore.Client) *UsageRecordRepository {
	return &UsageRecordRepository{client: client}
}

// Create inserts a new usage record. Identity fields are stored in their
// normalized form so the equality queries below can match them.
func (r *UsageRecordRepository) Create(ctx context.Context, record persist.UsageRecord) (persist.DBID, error) {
	id := persist.GenerateID()
	record = normalizeUsageRecord(record)

	_, err := r.client.Collection(generationsCollection).Doc(id.String()).Set(ctx, record)
	if err != nil {
		return "", err
	}

	return id, nil
}

// GetByWalletAddress returns every usage record created for the wallet
func (r *UsageRecordRepository) GetByWalletAddress(ctx context.Context, address persist.Address) ([]persist.UsageRecord, error) {
	return r.getByField(ctx, "walletAddress", address.String())
}

// GetByEmail returns every usage record created for the email
func (r *UsageRecordRepository) GetByEmail(ctx context.Context, email persist.Email) ([]persist.UsageRecord, error) {
	return r.getByField(ctx, "email", email.String())
}

func normalizeUsageRecord(record persist.UsageRecord) persist.UsageRecord {
	record.WalletAddress = persist.Address(record.WalletAddress.String())
	record.Email = persist.Email(record.Email.String())
	return record
}

func (r *UsageRecordRepository) getByField(ctx context.Context, field, value string) ([]persist.UsageRecord, error) {
	it := r.client.Collection(generationsCollection).Where(field, "==", value).Documents(ctx)
	defer it.Stop()

	records := []persist.UsageRecord{}
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var record persist.UsageRecord
		if err := snap.DataTo(&record); err != nil {
			return nil, err
		}
		record.ID = persist.DBID(snap.Ref.ID)
		records = append(records, record)
	}

	return records, nil
}
