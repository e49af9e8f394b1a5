package persist

import "context"

// DisputeStatus is the lifecycle state of a dispute as known to this service.
// Only the initial state is ever produced here; later transitions happen in
// the registration capability and are not synchronized back.
type DisputeStatus string

const DisputeStatusRaised DisputeStatus = "Raised"

// DisputeTag is the violation category attached to a dispute
type DisputeTag string

const (
	DisputeTagImproperRegistration DisputeTag = "IMPROPER_REGISTRATION"
	DisputeTagImproperUsage        DisputeTag = "IMPROPER_USAGE"
	DisputeTagImproperPayment      DisputeTag = "IMPROPER_PAYMENT"
	DisputeTagContentStandards     DisputeTag = "CONTENT_STANDARDS_VIOLATION"
)

// Dispute is the record persisted after a dispute is raised on-chain
type Dispute struct {
	DisputeID      string        `json:"disputeId" firestore:"disputeId"`
	TargetIPID     string        `json:"targetIpId" firestore:"targetIpId"`
	TargetTag      DisputeTag    `json:"targetTag" firestore:"targetTag"`
	Evidence       string        `json:"evidence" firestore:"evidence"`
	EvidenceCID    string        `json:"evidenceCid" firestore:"evidenceCid"`
	RaiserAddress  Address       `json:"raiserAddress" firestore:"raiserAddress"`
	CreatorAddress Address       `json:"creatorAddress" firestore:"creatorAddress"`
	TxHash         string        `json:"txHash" firestore:"txHash"`
	CreatedAt      string        `json:"createdAt" firestore:"createdAt"`
	Status         DisputeStatus `json:"status" firestore:"status"`
}

// DisputeRepository persists dispute records
type DisputeRepository interface {
	Create(context.Context, Dispute) (DBID, error)
}
