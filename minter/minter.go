package minter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/minters-xyz/go-minters/service/persist"
	"github.com/minters-xyz/go-minters/service/story"
)

// uploader pins payloads to content-addressed storage
type uploader interface {
	UploadBytes(ctx context.Context, data []byte, name string) (string, error)
	UploadJSON(ctx context.Context, v any, name string) (string, error)
}

// registrar is the on-chain registration capability
type registrar interface {
	RegisterIPAsset(ctx context.Context, refs story.MetadataRefs, terms story.LicenseTerms) (story.RegisterResult, error)
	RegisterDerivative(ctx context.Context, refs story.MetadataRefs, parentIPID, licenseTermsID string) (story.RegisterResult, error)
	RegisterPILTermsAndAttach(ctx context.Context, ipID string, terms story.LicenseTerms) ([]string, error)
	MintLicenseTokens(ctx context.Context, ipID, licenseTermsID, receiver string, amount int64) (story.MintResult, error)
	RaiseDispute(ctx context.Context, targetIPID, evidenceCID, targetTag string) (story.DisputeResult, error)
}

// registrarFactory constructs a registrar per request from the environment
// so that handlers can be exercised with fakes
type registrarFactory func(ctx context.Context) (registrar, error)

// generator synthesizes an image from a prompt
type generator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// emailSender delivers transactional email
type emailSender interface {
	Configured() bool
	Send(ctx context.Context, recipients []string, subject, htmlContent string) error
	SendDisputeNotification(ctx context.Context, recipient persist.Email, dispute persist.Dispute) error
}

// usageChecker enforces the generation quota
type usageChecker interface {
	Count(ctx context.Context, wallet persist.Address, email persist.Email) (int, error)
	Check(ctx context.Context, wallet persist.Address, email persist.Email) error
	Remaining(count int) int
	Limit() int
}

// contentHash returns the "0x"-prefixed hex sha-256 digest of the payload, the
// form the registration capability expects for media and metadata hashes
func contentHash(data []byte) string {
	digest := sha256.Sum256(data)
	return fmt.Sprintf("0x%s", hex.EncodeToString(digest[:]))
}
