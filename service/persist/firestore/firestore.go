package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/minters-xyz/go-minters/env"
	"github.com/minters-xyz/go-minters/service/persist"
	"google.golang.org/api/option"
)

func init() {
	env.RegisterValidation("FIRESTORE_PROJECT_ID", "required")
}

const (
	usersCollection         = "users"
	disputesCollection      = "disputes"
	generationsCollection   = "image_generations"
	subscriptionsCollection = "subscriptions"
)

// Repositories bundles every document-store repository used by the handlers
type Repositories struct {
	UserRepository         persist.UserRepository
	DisputeRepository      persist.DisputeRepository
	UsageRecordRepository  persist.UsageRecordRepository
	SubscriptionRepository persist.SubscriptionRepository
}

// NewRepositories creates repositories backed by the given client
func NewRepositories(client *firestore.Client) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(client),
		DisputeRepository:      NewDisputeRepository(client),
		UsageRecordRepository:  NewUsageRecordRepository(client),
		SubscriptionRepository: NewSubscriptionRepository(client),
	}
}

// MustCreateClient connects to the project's document store, panicking on
// failure since nothing works without it
func MustCreateClient(ctx context.Context) *firestore.Client {
	projectID := env.GetString("FIRESTORE_PROJECT_ID")

	opts := []option.ClientOption{}
	if keyPath := env.GetString("GCLOUD_SERVICE_KEY_PATH"); keyPath != "" {
		opts = append(opts, option.WithCredentialsFile(keyPath))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		panic(err)
	}

	return client
}
