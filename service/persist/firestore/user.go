package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/minters-xyz/go-minters/service/persist"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UserRepository is a document-store repository for user profiles
type UserRepository struct {
	client *firestore.Client
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(client *firestore.Client) *UserRepository {
	return &UserRepository{client: client}
}

// GetByID returns the user document with the given ID
func (r *UserRepository) GetByID(ctx context.Context, id persist.DBID) (persist.User, error) {
	snap, err := r.client.Collection(usersCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return persist.User{}, persist.ErrUserNotFound{ID: id}
		}
		return persist.User{}, err
	}

	var user persist.User
	if err := snap.DataTo(&user); err != nil {
		return persist.User{}, err
	}
	user.ID = persist.DBID(snap.Ref.ID)

	return user, nil
}

// GetByWalletAddress returns the first user document whose linked wallet
// matches the given address
func (r *UserRepository) GetByWalletAddress(ctx context.Context, address persist.Address) (persist.User, error) {
	it := r.client.Collection(usersCollection).Where("walletAddress", "==", address.String()).Limit(1).Documents(ctx)
	defer it.Stop()

	snap, err := it.Next()
	if err == iterator.Done {
		return persist.User{}, persist.ErrUserNotFound{WalletAddress: address}
	}
	if err != nil {
		return persist.User{}, err
	}

	var user persist.User
	if err := snap.DataTo(&user); err != nil {
		return persist.User{}, err
	}
	user.ID = persist.DBID(snap.Ref.ID)

	return user, nil
}

// GetAll returns every user document
func (r *UserRepository) GetAll(ctx context.Context) ([]persist.User, error) {
	it := r.client.Collection(usersCollection).Documents(ctx)
	defer it.Stop()

	users := []persist.User{}
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var user persist.User
		if err := snap.DataTo(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user %s: %w", snap.Ref.ID, err)
		}
		user.ID = persist.DBID(snap.Ref.ID)
		users = append(users, user)
	}

	return users, nil
}

// AddRegisteredIP appends a registration record to the user's asset list.
// This is a plain array append, so a retried registration produces a
// duplicate entry.
func (r *UserRepository) AddRegisteredIP(ctx context.Context, id persist.DBID, ip persist.RegisteredIP) error {
	_, err := r.client.Collection(usersCollection).Doc(id.String()).Update(ctx, []firestore.Update{
		{Path: "registeredIps", Value: firestore.ArrayUnion(ip)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return persist.ErrUserNotFound{ID: id}
		}
		return err
	}
	return nil
}
