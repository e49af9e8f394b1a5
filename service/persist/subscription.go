package persist

import (
	"context"
	"fmt"
	"time"
)

// Subscription is a newsletter signup
type Subscription struct {
	Email        Email     `json:"email" firestore:"email"`
	SubscribedAt time.Time `json:"subscribedAt" firestore:"subscribedAt"`
}

// ErrEmailAlreadySubscribed is returned when the email already has a
// subscription document
type ErrEmailAlreadySubscribed struct {
	Email Email
}

func (e ErrEmailAlreadySubscribed) Error() string {
	return fmt.Sprintf("email already subscribed: %s", e.Email)
}

// SubscriptionRepository persists newsletter subscriptions
type SubscriptionRepository interface {
	// Create inserts a subscription, returning ErrEmailAlreadySubscribed if a
	// document for the email already exists
	Create(context.Context, Subscription) (DBID, error)
}
