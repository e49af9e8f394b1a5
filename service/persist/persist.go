package persist

import (
	"strings"

	"github.com/segmentio/ksuid"
)

// DBID is the ID type for documents created by this service
type DBID string

// GenerateID returns a new unique DBID
func GenerateID() DBID {
	return DBID(ksuid.New().String())
}

func (d DBID) String() string {
	return string(d)
}

// Address represents an EVM wallet address
type Address string

func (a Address) String() string {
	return strings.ToLower(string(a))
}

// Email represents an email address
type Email string

func (e Email) String() string {
	return strings.ToLower(strings.TrimSpace(string(e)))
}
