package persist

import (
	"context"
	"fmt"
)

// User is a profile document created at sign-in and updated as the user links
// a wallet, sets a username, or registers assets
type User struct {
	ID            DBID           `json:"uid" firestore:"uid"`
	Email         Email          `json:"email" firestore:"email"`
	DisplayName   string         `json:"displayName" firestore:"displayName"`
	Username      string         `json:"username" firestore:"username"`
	WalletAddress Address        `json:"walletAddress" firestore:"walletAddress"`
	AvatarURL     string         `json:"avatarUrl" firestore:"avatarUrl"`
	RegisteredIPs []RegisteredIP `json:"registeredIps" firestore:"registeredIps"`
}

// ErrUserNotFound is returned when no user document matches the lookup
type ErrUserNotFound struct {
	ID            DBID
	WalletAddress Address
}

func (e ErrUserNotFound) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("user not found by ID: %s", e.ID)
	}
	return fmt.Sprintf("user not found by wallet address: %s", e.WalletAddress)
}

// UserRepository reads and writes user documents
type UserRepository interface {
	GetByID(context.Context, DBID) (User, error)
	GetByWalletAddress(context.Context, Address) (User, error)
	GetAll(context.Context) ([]User, error)
	AddRegisteredIP(context.Context, DBID, RegisteredIP) error
}
