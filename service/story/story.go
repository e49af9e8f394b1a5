package story

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/params"
	"github.com/minters-xyz/go-minters/env"
	"github.com/minters-xyz/go-minters/service/logger"
)

// Dispute policy constants. These are protocol policy, not per-call options.
var (
	disputeBond     = new(big.Int).Div(new(big.Int).SetUint64(params.Ether), big.NewInt(10)) // 0.1 IP
	disputeLiveness = big.NewInt(30 * 24 * 60 * 60)                                          // 30 days
)

// ErrMissingPrivateKey is returned when the signer key is not configured
var ErrMissingPrivateKey = errors.New("WALLET_PRIVATE_KEY is missing")

// ErrRegistrationFailed wraps a failure from the registration capability
type ErrRegistrationFailed struct {
	Op  string
	Err error
}

func (e ErrRegistrationFailed) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Err)
}

func (e ErrRegistrationFailed) Unwrap() error {
	return e.Err
}

// MetadataRefs carries the pinned metadata URIs and their content hashes, as
// committed on-chain at registration time
type MetadataRefs struct {
	IpMetadataURI   string
	IpMetadataHash  string
	NftMetadataURI  string
	NftMetadataHash string
}

// RegisterResult is the outcome of a successful asset registration
type RegisterResult struct {
	IPID            string
	TxHash          string
	LicenseTermsIDs []string
}

// DisputeResult is the outcome of a successfully raised dispute
type DisputeResult struct {
	DisputeID string
	TxHash    string
}

// MintResult is the outcome of a license token mint
type MintResult struct {
	TxHash          string
	LicenseTokenIDs []string
}

// Client talks to the IP registration capability. It signs every transaction
// with the server's key, so a new client is cheap to construct per request.
type Client struct {
	eth     *ethclient.Client
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
}

// NewClient constructs a client from the environment-held signer key
func NewClient(ctx context.Context) (*Client, error) {
	raw := env.GetString("WALLET_PRIVATE_KEY")
	if raw == "" {
		return nil, ErrMissingPrivateKey
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid WALLET_PRIVATE_KEY: %w", err)
	}

	rpcURL := env.GetString("STORY_RPC_URL")
	if rpcURL == "" {
		rpcURL = defaultRPCURL
	}

	ethClient, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial registration RPC: %w", err)
	}

	return &Client{
		eth:     ethClient,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: big.NewInt(aeneidChainID),
	}, nil
}

// ExplorerURL returns the public explorer page for an IP asset
func ExplorerURL(ipID string) string {
	return explorerBase + ipID
}

type ipMetadataArg struct {
	IpMetadataURI   string
	IpMetadataHash  [32]byte
	NftMetadataURI  string
	NftMetadataHash [32]byte
}

type licenseTermsDataArg struct {
	Terms LicenseTerms
}

type derivDataArg struct {
	ParentIpIds     []common.Address
	LicenseTemplate common.Address
	LicenseTermsIds []*big.Int
	RoyaltyContext  []byte
}

func (m MetadataRefs) arg() ipMetadataArg {
	return ipMetadataArg{
		IpMetadataURI:   m.IpMetadataURI,
		IpMetadataHash:  common.HexToHash(m.IpMetadataHash),
		NftMetadataURI:  m.NftMetadataURI,
		NftMetadataHash: common.HexToHash(m.NftMetadataHash),
	}
}

// RegisterIPAsset mints a fresh on-chain representation through the SPG
// collection and attaches the given license terms
func (c *Client) RegisterIPAsset(ctx context.Context, refs MetadataRefs, terms LicenseTerms) (RegisterResult, error) {
	calldata, err := registrationABI.Pack("mintAndRegisterIpAndAttachPILTerms",
		common.HexToAddress(spgNFTContract),
		c.from,
		refs.arg(),
		[]licenseTermsDataArg{{Terms: terms}},
		true,
	)
	if err != nil {
		return RegisterResult{}, ErrRegistrationFailed{Op: "register", Err: err}
	}

	receipt, err := c.transact(ctx, common.HexToAddress(registrationWorkflowsAddress), calldata, nil)
	if err != nil {
		return RegisterResult{}, ErrRegistrationFailed{Op: "register", Err: err}
	}

	ipID, err := ipIDFromReceipt(receipt)
	if err != nil {
		return RegisterResult{}, ErrRegistrationFailed{Op: "register", Err: err}
	}

	return RegisterResult{
		IPID:            ipID,
		TxHash:          receipt.TxHash.Hex(),
		LicenseTermsIDs: licenseTermsIDsFromReceipt(receipt),
	}, nil
}

// RegisterDerivative registers a new asset whose lineage points at exactly
// one parent asset and one of its license terms
func (c *Client) RegisterDerivative(ctx context.Context, refs MetadataRefs, parentIPID, licenseTermsID string) (RegisterResult, error) {
	termsID, ok := new(big.Int).SetString(licenseTermsID, 10)
	if !ok {
		return RegisterResult{}, ErrRegistrationFailed{Op: "register derivative", Err: fmt.Errorf("invalid license terms id: %s", licenseTermsID)}
	}

	derivData := derivDataArg{
		ParentIpIds:     []common.Address{common.HexToAddress(parentIPID)},
		LicenseTemplate: common.HexToAddress(pilLicenseTemplateAddress),
		LicenseTermsIds: []*big.Int{termsID},
		RoyaltyContext:  []byte{},
	}

	calldata, err := derivativeABI.Pack("mintAndRegisterIpAndMakeDerivative",
		common.HexToAddress(spgNFTContract),
		derivData,
		refs.arg(),
		c.from,
		true,
	)
	if err != nil {
		return RegisterResult{}, ErrRegistrationFailed{Op: "register derivative", Err: err}
	}

	receipt, err := c.transact(ctx, common.HexToAddress(derivativeWorkflowsAddress), calldata, nil)
	if err != nil {
		return RegisterResult{}, ErrRegistrationFailed{Op: "register derivative", Err: err}
	}

	ipID, err := ipIDFromReceipt(receipt)
	if err != nil {
		return RegisterResult{}, ErrRegistrationFailed{Op: "register derivative", Err: err}
	}

	return RegisterResult{IPID: ipID, TxHash: receipt.TxHash.Hex()}, nil
}

// RegisterPILTermsAndAttach attaches a license template to an already
// registered asset, returning the attached terms IDs
func (c *Client) RegisterPILTermsAndAttach(ctx context.Context, ipID string, terms LicenseTerms) ([]string, error) {
	calldata, err := licenseAttachmentABI.Pack("registerPILTermsAndAttach",
		common.HexToAddress(ipID),
		[]licenseTermsDataArg{{Terms: terms}},
	)
	if err != nil {
		return nil, ErrRegistrationFailed{Op: "attach license terms", Err: err}
	}

	receipt, err := c.transact(ctx, common.HexToAddress(licenseAttachmentWorkflowsAddr), calldata, nil)
	if err != nil {
		return nil, ErrRegistrationFailed{Op: "attach license terms", Err: err}
	}

	return licenseTermsIDsFromReceipt(receipt), nil
}

// MintLicenseTokens mints license tokens against a registered asset's terms
// to the given receiver
func (c *Client) MintLicenseTokens(ctx context.Context, ipID, licenseTermsID, receiver string, amount int64) (MintResult, error) {
	termsID, ok := new(big.Int).SetString(licenseTermsID, 10)
	if !ok {
		return MintResult{}, ErrRegistrationFailed{Op: "mint license tokens", Err: fmt.Errorf("invalid license terms id: %s", licenseTermsID)}
	}

	calldata, err := licensingABI.Pack("mintLicenseTokens",
		common.HexToAddress(ipID),
		common.HexToAddress(pilLicenseTemplateAddress),
		termsID,
		big.NewInt(amount),
		common.HexToAddress(receiver),
		[]byte{},
		big.NewInt(0),
		uint32(100),
	)
	if err != nil {
		return MintResult{}, ErrRegistrationFailed{Op: "mint license tokens", Err: err}
	}

	receipt, err := c.transact(ctx, common.HexToAddress(licensingModuleAddress), calldata, nil)
	if err != nil {
		return MintResult{}, ErrRegistrationFailed{Op: "mint license tokens", Err: err}
	}

	return MintResult{
		TxHash:          receipt.TxHash.Hex(),
		LicenseTokenIDs: licenseTokenIDsFromReceipt(receipt),
	}, nil
}

// RaiseDispute raises a dispute against a registered asset with a fixed bond
// and liveness window. The pinned evidence CID is committed as its keccak
// digest.
func (c *Client) RaiseDispute(ctx context.Context, targetIPID, evidenceCID, targetTag string) (DisputeResult, error) {
	var tag [32]byte
	copy(tag[:], targetTag)

	policyData, err := packDisputePolicy()
	if err != nil {
		return DisputeResult{}, ErrRegistrationFailed{Op: "raise dispute", Err: err}
	}

	calldata, err := disputeABI.Pack("raiseDispute",
		common.HexToAddress(targetIPID),
		crypto.Keccak256Hash([]byte(evidenceCID)),
		tag,
		policyData,
	)
	if err != nil {
		return DisputeResult{}, ErrRegistrationFailed{Op: "raise dispute", Err: err}
	}

	receipt, err := c.transact(ctx, common.HexToAddress(disputeModuleAddress), calldata, disputeBond)
	if err != nil {
		return DisputeResult{}, ErrRegistrationFailed{Op: "raise dispute", Err: err}
	}

	disputeID, err := disputeIDFromReceipt(receipt)
	if err != nil {
		return DisputeResult{}, ErrRegistrationFailed{Op: "raise dispute", Err: err}
	}

	return DisputeResult{DisputeID: disputeID, TxHash: receipt.TxHash.Hex()}, nil
}

func packDisputePolicy() ([]byte, error) {
	uint256Ty, err := abi.NewType("uint256", "", nil)
	if err != nil {
		return nil, err
	}

	args := abi.Arguments{{Type: uint256Ty}, {Type: uint256Ty}}
	return args.Pack(disputeLiveness, disputeBond)
}

// transact signs, submits, and waits for a single transaction. Every call is
// attempted exactly once; the caller decides what a failure means.
func (c *Client) transact(ctx context.Context, to common.Address, calldata []byte, value *big.Int) (*types.Receipt, error) {
	nonce, err := c.eth.PendingNonceAt(ctx, c.from)
	if err != nil {
		return nil, err
	}

	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	gasLimit, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{
		From:  c.from,
		To:    &to,
		Value: value,
		Data:  calldata,
	})
	if err != nil {
		return nil, err
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit + gasLimit/5,
		To:       &to,
		Value:    value,
		Data:     calldata,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return nil, err
	}

	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return nil, err
	}

	logger.For(ctx).Infof("submitted tx %s to %s", signed.Hash().Hex(), to.Hex())

	receipt, err := bind.WaitMined(ctx, c.eth, signed)
	if err != nil {
		return nil, err
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction %s reverted", receipt.TxHash.Hex())
	}

	return receipt, nil
}

func ipIDFromReceipt(receipt *types.Receipt) (string, error) {
	event := eventsABI.Events["IPRegistered"]
	for _, l := range receipt.Logs {
		if len(l.Topics) == 0 || l.Topics[0] != event.ID {
			continue
		}
		vals, err := event.Inputs.NonIndexed().Unpack(l.Data)
		if err != nil || len(vals) == 0 {
			continue
		}
		if ipID, ok := vals[0].(common.Address); ok {
			return ipID.Hex(), nil
		}
	}
	return "", errors.New("no IPRegistered event in receipt")
}

func licenseTermsIDsFromReceipt(receipt *types.Receipt) []string {
	event := eventsABI.Events["LicenseTermsAttached"]
	ids := []string{}
	for _, l := range receipt.Logs {
		if len(l.Topics) == 0 || l.Topics[0] != event.ID {
			continue
		}
		vals, err := event.Inputs.NonIndexed().Unpack(l.Data)
		if err != nil || len(vals) < 2 {
			continue
		}
		if termsID, ok := vals[1].(*big.Int); ok {
			ids = append(ids, termsID.String())
		}
	}
	return ids
}

func licenseTokenIDsFromReceipt(receipt *types.Receipt) []string {
	event := eventsABI.Events["LicenseTokensMinted"]
	ids := []string{}
	for _, l := range receipt.Logs {
		if len(l.Topics) == 0 || l.Topics[0] != event.ID {
			continue
		}
		vals, err := event.Inputs.NonIndexed().Unpack(l.Data)
		if err != nil || len(vals) < 3 {
			continue
		}
		amount, aok := vals[1].(*big.Int)
		start, sok := vals[2].(*big.Int)
		if !aok || !sok {
			continue
		}
		for i := int64(0); i < amount.Int64(); i++ {
			ids = append(ids, new(big.Int).Add(start, big.NewInt(i)).String())
		}
	}
	return ids
}

func disputeIDFromReceipt(receipt *types.Receipt) (string, error) {
	event := eventsABI.Events["DisputeRaised"]
	for _, l := range receipt.Logs {
		if len(l.Topics) == 0 || l.Topics[0] != event.ID {
			continue
		}
		vals, err := event.Inputs.NonIndexed().Unpack(l.Data)
		if err != nil || len(vals) == 0 {
			continue
		}
		if disputeID, ok := vals[0].(*big.Int); ok {
			return disputeID.String(), nil
		}
	}
	return "", errors.New("no DisputeRaised event in receipt")
}
