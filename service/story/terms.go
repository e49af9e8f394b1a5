package story

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
)

// LicenseTerms mirrors the programmable license terms tuple expected by the
// licensing module. Field names follow the on-chain tuple components.
type LicenseTerms struct {
	Transferable              bool
	RoyaltyPolicy             common.Address
	DefaultMintingFee         *big.Int
	Expiration                *big.Int
	CommercialUse             bool
	CommercialAttribution     bool
	CommercializerChecker     common.Address
	CommercializerCheckerData []byte
	CommercialRevShare        uint32
	CommercialRevCeiling      *big.Int
	DerivativesAllowed        bool
	DerivativesAttribution    bool
	DerivativesApproval       bool
	DerivativesReciprocal     bool
	DerivativeRevCeiling      *big.Int
	Currency                  common.Address
	Uri                       string
}

const (
	commercialRemixTermsURI = "https://github.com/piplabs/pil-document/blob/ad67bb632a310d2557f8abcccd428e4c9c798db1/off-chain-terms/CommercialRemix.json"
	creativeCommonsTermsURI = "https://github.com/piplabs/pil-document/blob/998c13e6ee1d04eb817aefd1fe16dfe8be3cd7a2/off-chain-terms/CC-BY.json"

	commercialRevSharePercent = 50
)

// CommercialRemixTerms is the commercial license template: a 1 IP minting fee
// and a 50% revenue share on derivatives.
func CommercialRemixTerms() LicenseTerms {
	terms := baseTerms()
	terms.DefaultMintingFee = new(big.Int).SetUint64(params.Ether)
	terms.CommercialRevShare = commercialRevSharePercent
	terms.Uri = commercialRemixTermsURI
	return terms
}

// CreativeCommonsTerms is the permissive license template: zero fee, zero
// revenue share.
func CreativeCommonsTerms() LicenseTerms {
	terms := baseTerms()
	terms.DefaultMintingFee = big.NewInt(0)
	terms.CommercialRevShare = 0
	terms.Uri = creativeCommonsTermsURI
	return terms
}

// TermsForLicenseType maps the caller-facing license selector onto a template,
// defaulting to commercial remix
func TermsForLicenseType(licenseType string) LicenseTerms {
	if licenseType == "creative-commons" {
		return CreativeCommonsTerms()
	}
	return CommercialRemixTerms()
}

func baseTerms() LicenseTerms {
	return LicenseTerms{
		Transferable:              true,
		RoyaltyPolicy:             common.HexToAddress(royaltyPolicyLAPAddress),
		Expiration:                big.NewInt(0),
		CommercialUse:             true,
		CommercialAttribution:     true,
		CommercializerChecker:     common.Address{},
		CommercializerCheckerData: []byte{},
		CommercialRevCeiling:      big.NewInt(0),
		DerivativesAllowed:        true,
		DerivativesAttribution:    true,
		DerivativesApproval:       false,
		DerivativesReciprocal:     true,
		DerivativeRevCeiling:      big.NewInt(0),
		Currency:                  common.HexToAddress(wipTokenAddress),
	}
}
