package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/minters-xyz/go-minters/service/persist"
	"google.golang.org/api/iterator"
)

// SubscriptionRepository is a document-store repository for newsletter
// subscriptions
type SubscriptionRepository struct {
	client *firestore.Client
}

// NewSubscriptionRepository creates a new SubscriptionRepository
func NewSubscriptionRepository(client *firestore.Client) *SubscriptionRepository {
	return &SubscriptionRepository{client: client}
}

// Create inserts a subscription unless one already exists for the email. The
// email is stored normalized so the duplicate check can match it later.
func (r *SubscriptionRepository) Create(ctx context.Context, sub persist.Subscription) (persist.DBID, error) {
	sub = normalizeSubscription(sub)

	it := r.client.Collection(subscriptionsCollection).Where("email", "==", sub.Email.String()).Limit(1).Documents(ctx)
	defer it.Stop()

	if _, err := it.Next(); err != iterator.Done {
		if err != nil {
			return "", err
		}
		return "", persist.ErrEmailAlreadySubscribed{Email: sub.Email}
	}

	id := persist.GenerateID()
	_, err := r.client.Collection(subscriptionsCollection).Doc(id.String()).Set(ctx, sub)
	if err != nil {
		return "", err
	}

	return id, nil
}

func normalizeSubscription(sub persist.Subscription) persist.Subscription {
	sub.Email = persist.Email(sub.Email.String())
	return sub
}
