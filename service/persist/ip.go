package persist

// LicenseType identifies which license template was attached at registration
type LicenseType string

const (
	LicenseTypeCommercialRemix LicenseType = "commercial-remix"
	LicenseTypeCreativeCommons LicenseType = "creative-commons"
	// LicenseTypeEvolution marks derivative registrations in the UI
	LicenseTypeEvolution LicenseType = "Evolution"
)

// SocialMedia is a single social link attached to a creator
type SocialMedia struct {
	Platform string `json:"platform" firestore:"platform"`
	URL      string `json:"url" firestore:"url"`
}

// Creator is one contributor to a registered IP asset. Contribution
// percentages across an asset's creators must sum to exactly 100.
type Creator struct {
	Name                string        `json:"name" firestore:"name"`
	Address             Address       `json:"address" firestore:"address"`
	Description         string        `json:"description" firestore:"description"`
	ContributionPercent int           `json:"contributionPercent" firestore:"contributionPercent"`
	SocialMedia         []SocialMedia `json:"socialMedia,omitempty" firestore:"socialMedia,omitempty"`
}

// Attribute is a display trait on the NFT metadata document
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// IPMetadata is the asset metadata document pinned to storage and referenced
// on-chain. Field names are part of the wire contract with the registration
// capability and must not be renamed.
type IPMetadata struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   string    `json:"createdAt"`
	Image       string    `json:"image"`
	ImageHash   string    `json:"imageHash"`
	MediaURL    string    `json:"mediaUrl"`
	MediaHash   string    `json:"mediaHash"`
	MediaType   string    `json:"mediaType"`
	Creators    []Creator `json:"creators"`
	ParentIPID  string    `json:"parentIpId,omitempty"`
}

// NFTMetadata is the display metadata document pinned to storage
type NFTMetadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Attributes  []Attribute `json:"attributes"`
}

// RegisteredIP is the record appended to a user's document after a successful
// registration. Authoritative asset state lives on-chain; this record is never
// mutated.
type RegisteredIP struct {
	IPID            string      `json:"ipId" firestore:"ipId"`
	ExplorerURL     string      `json:"explorerUrl" firestore:"explorerUrl"`
	ImageURL        string      `json:"imageUrl" firestore:"imageUrl"`
	TxHash          string      `json:"txHash" firestore:"txHash"`
	ImageName       string      `json:"imageName" firestore:"imageName"`
	Prompt          string      `json:"prompt" firestore:"prompt"`
	LicenseType     LicenseType `json:"licenseType" firestore:"licenseType"`
	LicenseTermsIDs []string    `json:"licenseTermsIds,omitempty" firestore:"licenseTermsIds,omitempty"`
	RegisteredAt    string      `json:"registeredAt" firestore:"registeredAt"`
	ParentIPID      string      `json:"parentIpId,omitempty" firestore:"parentIpId,omitempty"`
}

// GalleryIP is a RegisteredIP decorated with its owner's public profile fields
// for the gallery listing
type GalleryIP struct {
	RegisteredIP
	CreatorName    string  `json:"creatorName"`
	CreatorAddress Address `json:"creatorAddress"`
	CreatorAvatar  string  `json:"creatorAvatar,omitempty"`
}
