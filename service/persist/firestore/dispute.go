package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/minters-xyz/go-minters/service/persist"
)

// DisputeRepository is a document-store repository for dispute records
type DisputeRepository struct {
	client *firestore.Client
}

// NewDisputeRepository creates a new DisputeRepository
func NewDisputeRepository(client *firestore.Client) *DisputeRepository {
	return &DisputeRepository{client: client}
}

// Create inserts a new dispute document
func (r *DisputeRepository) Create(ctx context.Context, dispute persist.Dispute) (persist.DBID, error) {
	id := persist.GenerateID()

	_, err := r.client.Collection(disputesCollection).Doc(id.String()).Set(ctx, dispute)
	if err != nil {
		return "", err
	}

	return id, nil
}
