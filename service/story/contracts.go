package story

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Aeneid testnet deployment of the protocol periphery and core modules
const (
	defaultRPCURL  = "https://rpc.ankr.com/story_aeneid_testnet"
	aeneidChainID  = 1315
	explorerBase   = "https://aeneid.explorer.story.foundation/ipa/"
	spgNFTContract = "0x999a2ED3461366630231adb28ffBDdEb73f3D2E1"

	registrationWorkflowsAddress     = "0xbe39E1C756e921BD25DF86e7AAa31106d1eb0424"
	derivativeWorkflowsAddress       = "0x9e2d496f72C547C2C535B167e06ED8729B374a4f"
	licenseAttachmentWorkflowsAddr   = "0xcC2E862bCee5B6036Db0de6E06Ae87e524a79fd8"
	licensingModuleAddress           = "0x04fbd8a2e56dd85CFD5500A4A4DfA955B9f1dE6f"
	disputeModuleAddress             = "0x9b7A9c70AFF961C799110954fc06F3093aeb94C5"
	royaltyPolicyLAPAddress          = "0xBe54FB168b3c982b7AaE60dB6CF75Bd8447b390E"
	wipTokenAddress                  = "0x1514000000000000000000000000000000000000"
	pilLicenseTemplateAddress        = "0x2E896b0b2Fdb7457499B56AAaA4AE55BCB4Cd316"
)

const pilTermsComponents = `[
	{"name":"transferable","type":"bool"},
	{"name":"royaltyPolicy","type":"address"},
	{"name":"defaultMintingFee","type":"uint256"},
	{"name":"expiration","type":"uint256"},
	{"name":"commercialUse","type":"bool"},
	{"name":"commercialAttribution","type":"bool"},
	{"name":"commercializerChecker","type":"address"},
	{"name":"commercializerCheckerData","type":"bytes"},
	{"name":"commercialRevShare","type":"uint32"},
	{"name":"commercialRevCeiling","type":"uint256"},
	{"name":"derivativesAllowed","type":"bool"},
	{"name":"derivativesAttribution","type":"bool"},
	{"name":"derivativesApproval","type":"bool"},
	{"name":"derivativesReciprocal","type":"bool"},
	{"name":"derivativeRevCeiling","type":"uint256"},
	{"name":"currency","type":"address"},
	{"name":"uri","type":"string"}]`

const ipMetadataComponents = `[
	{"name":"ipMetadataURI","type":"string"},
	{"name":"ipMetadataHash","type":"bytes32"},
	{"name":"nftMetadataURI","type":"string"},
	{"name":"nftMetadataHash","type":"bytes32"}]`

const registrationWorkflowsABI = `[{
	"name":"mintAndRegisterIpAndAttachPILTerms","type":"function","stateMutability":"nonpayable",
	"inputs":[
		{"name":"spgNftContract","type":"address"},
		{"name":"recipient","type":"address"},
		{"name":"ipMetadata","type":"tuple","components":` + ipMetadataComponents + `},
		{"name":"licenseTermsData","type":"tuple[]","components":[{"name":"terms","type":"tuple","components":` + pilTermsComponents + `}]},
		{"name":"allowDuplicates","type":"bool"}],
	"outputs":[
		{"name":"ipId","type":"address"},
		{"name":"tokenId","type":"uint256"},
		{"name":"licenseTermsIds","type":"uint256[]"}]}]`

const derivativeWorkflowsABI = `[{
	"name":"mintAndRegisterIpAndMakeDerivative","type":"function","stateMutability":"nonpayable",
	"inputs":[
		{"name":"spgNftContract","type":"address"},
		{"name":"derivData","type":"tuple","components":[
			{"name":"parentIpIds","type":"address[]"},
			{"name":"licenseTemplate","type":"address"},
			{"name":"licenseTermsIds","type":"uint256[]"},
			{"name":"royaltyContext","type":"bytes"}]},
		{"name":"ipMetadata","type":"tuple","components":` + ipMetadataComponents + `},
		{"name":"recipient","type":"address"},
		{"name":"allowDuplicates","type":"bool"}],
	"outputs":[
		{"name":"ipId","type":"address"},
		{"name":"tokenId","type":"uint256"}]}]`

const licenseAttachmentWorkflowsABI = `[{
	"name":"registerPILTermsAndAttach","type":"function","stateMutability":"nonpayable",
	"inputs":[
		{"name":"ipId","type":"address"},
		{"name":"licenseTermsData","type":"tuple[]","components":[{"name":"terms","type":"tuple","components":` + pilTermsComponents + `}]}],
	"outputs":[{"name":"licenseTermsIds","type":"uint256[]"}]}]`

const licensingModuleABI = `[{
	"name":"mintLicenseTokens","type":"function","stateMutability":"nonpayable",
	"inputs":[
		{"name":"licensorIpId","type":"address"},
		{"name":"licenseTemplate","type":"address"},
		{"name":"licenseTermsId","type":"uint256"},
		{"name":"amount","type":"uint256"},
		{"name":"receiver","type":"address"},
		{"name":"royaltyContext","type":"bytes"},
		{"name":"maxMintingFee","type":"uint256"},
		{"name":"maxRevenueShare","type":"uint32"}],
	"outputs":[{"name":"startLicenseTokenId","type":"uint256"}]}]`

const disputeModuleABI = `[{
	"name":"raiseDispute","type":"function","stateMutability":"payable",
	"inputs":[
		{"name":"targetIpId","type":"address"},
		{"name":"disputeEvidenceHash","type":"bytes32"},
		{"name":"targetTag","type":"bytes32"},
		{"name":"data","type":"bytes"}],
	"outputs":[{"name":"disputeId","type":"uint256"}]}]`

// Events emitted by the core modules, used to recover assigned identifiers
// from transaction receipts
const moduleEventsABI = `[
	{"name":"IPRegistered","type":"event","inputs":[
		{"name":"ipId","type":"address","indexed":false},
		{"name":"chainId","type":"uint256","indexed":true},
		{"name":"tokenContract","type":"address","indexed":true},
		{"name":"tokenId","type":"uint256","indexed":true},
		{"name":"name","type":"string","indexed":false},
		{"name":"uri","type":"string","indexed":false},
		{"name":"registrationDate","type":"uint256","indexed":false}]},
	{"name":"LicenseTermsAttached","type":"event","inputs":[
		{"name":"caller","type":"address","indexed":true},
		{"name":"ipId","type":"address","indexed":true},
		{"name":"licenseTemplate","type":"address","indexed":false},
		{"name":"licenseTermsId","type":"uint256","indexed":false}]},
	{"name":"LicenseTokensMinted","type":"event","inputs":[
		{"name":"caller","type":"address","indexed":true},
		{"name":"licensorIpId","type":"address","indexed":true},
		{"name":"licenseTermsId","type":"uint256","indexed":false},
		{"name":"amount","type":"uint256","indexed":false},
		{"name":"startLicenseTokenId","type":"uint256","indexed":false}]},
	{"name":"DisputeRaised","type":"event","inputs":[
		{"name":"disputeId","type":"uint256","indexed":false},
		{"name":"targetIpId","type":"address","indexed":true},
		{"name":"disputeInitiator","type":"address","indexed":true},
		{"name":"targetTag","type":"bytes32","indexed":false}]}]`

var (
	registrationABI      = mustParseABI(registrationWorkflowsABI)
	derivativeABI        = mustParseABI(derivativeWorkflowsABI)
	licenseAttachmentABI = mustParseABI(licenseAttachmentWorkflowsABI)
	licensingABI         = mustParseABI(licensingModuleABI)
	disputeABI           = mustParseABI(disputeModuleABI)
	eventsABI            = mustParseABI(moduleEventsABI)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
