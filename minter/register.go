package minter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minters-xyz/go-minters/env"
	"github.com/minters-xyz/go-minters/service/ipfs"
	"github.com/minters-xyz/go-minters/service/logger"
	"github.com/minters-xyz/go-minters/service/persist"
	sentryutil "github.com/minters-xyz/go-minters/service/sentry"
	"github.com/minters-xyz/go-minters/service/story"
	"github.com/minters-xyz/go-minters/util"
	"github.com/minters-xyz/go-minters/validate"
)

type registerIPInput struct {
	ImageBuffer       string              `json:"imageBuffer"`
	ExistingImageURL  string              `json:"existingImageUrl"`
	ImageName         string              `json:"imageName"`
	Prompt            string              `json:"prompt"`
	WalletAddress     persist.Address     `json:"walletAddress"`
	UserID            persist.DBID        `json:"userId"`
	Description       string              `json:"description"`
	Attributes        []persist.Attribute `json:"attributes"`
	Creators          []persist.Creator   `json:"creators"`
	LicenseType       string              `json:"licenseType"`
	MintLicenseAmount int64               `json:"mintLicenseAmount"`
}

type registerIPOutput struct {
	Success         bool     `json:"success"`
	TxHash          string   `json:"txHash"`
	IPID            string   `json:"ipId"`
	ExplorerURL     string   `json:"explorerUrl"`
	ImageCID        string   `json:"imageCid"`
	IPMetadataCID   string   `json:"ipMetadataCid"`
	NFTMetadataCID  string   `json:"nftMetadataCid"`
	MintTxHash      string   `json:"mintTxHash,omitempty"`
	LicenseTokenIDs []string `json:"licenseTokenIds,omitempty"`
}

type evolveIPInput struct {
	ImageBuffer       string              `json:"imageBuffer"`
	ImageName         string              `json:"imageName"`
	Prompt            string              `json:"prompt"`
	WalletAddress     persist.Address     `json:"walletAddress"`
	UserID            persist.DBID        `json:"userId"`
	ParentIPID        string              `json:"parentIpId"`
	LicenseTermsID    string              `json:"licenseTermsId"`
	Description       string              `json:"description"`
	Attributes        []persist.Attribute `json:"attributes"`
	Creators          []persist.Creator   `json:"creators"`
	MintLicenseAmount int64               `json:"mintLicenseAmount"`
}

type evolveIPOutput struct {
	Success        bool   `json:"success"`
	TxHash         string `json:"txHash"`
	IPID           string `json:"ipId"`
	ExplorerURL    string `json:"explorerUrl"`
	ImageCID       string `json:"imageCid"`
	IPMetadataCID  string `json:"ipMetadataCid"`
	NFTMetadataCID string `json:"nftMetadataCid"`
}

// registerIP runs the full registration pipeline: pin the image, pin both
// metadata documents, register on-chain with the chosen license template,
// persist the result, and optionally mint license tokens.
func registerIP(userRepo persist.UserRepository, upld uploader, storyF registrarFactory, httpClient *http.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var input registerIPInput
		if err := c.ShouldBindJSON(&input); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		if err := validate.ValidateFields(v, validate.ValidationMap{
			"image":         validate.WithTag(util.FirstNonEmpty(input.ImageBuffer, input.ExistingImageURL), "required"),
			"imageName":     validate.WithTag(input.ImageName, "required"),
			"prompt":        validate.WithTag(input.Prompt, "required"),
			"walletAddress": validate.WithTag(input.WalletAddress, "required"),
			"userId":        validate.WithTag(input.UserID, "required"),
		}); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		// Re-validated server-side so a caller bypassing the UI cannot record
		// inconsistent creator shares
		if err := validate.ValidateCreators(input.Creators); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		gateway, err := gatewayDomain()
		if err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		// fail on an unknown user before anything is pinned or registered
		if _, err := userRepo.GetByID(ctx, input.UserID); err != nil {
			if errors.As(err, &persist.ErrUserNotFound{}) {
				util.ErrResponse(c, http.StatusBadRequest, err)
				return
			}
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		var imageURL, imageCID, imageHash string
		if input.ExistingImageURL == "" {
			buffer, err := base64.StdEncoding.DecodeString(input.ImageBuffer)
			if err != nil {
				util.ErrResponse(c, http.StatusBadRequest, fmt.Errorf("invalid image buffer: %w", err))
				return
			}

			imageCID, err = upld.UploadBytes(ctx, buffer, fmt.Sprintf("%s.png", input.ImageName))
			if err != nil {
				util.ErrResponse(c, http.StatusInternalServerError, err)
				return
			}
			imageURL = ipfs.GatewayURL(gateway, imageCID)
			imageHash = contentHash(buffer)
		} else {
			imageURL = input.ExistingImageURL
			buffer, err := fetchBytes(c, httpClient, imageURL)
			if err != nil {
				util.ErrResponse(c, http.StatusInternalServerError, err)
				return
			}
			imageHash = contentHash(buffer)
			imageCID = ipfs.ExtractCID(imageURL)
		}

		refs, ipMetaCID, nftMetaCID, err := pinMetadata(ctx, upld, gateway, metadataInput{
			Title:       input.ImageName,
			Description: input.Description,
			Prompt:      input.Prompt,
			ImageURL:    imageURL,
			ImageHash:   imageHash,
			Creators:    input.Creators,
			Attributes:  input.Attributes,
			CreatedAt:   time.Now(),
		})
		if err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		client, err := storyF(ctx)
		if err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		licenseType := util.FirstNonEmpty(input.LicenseType, string(persist.LicenseTypeCommercialRemix))

		result, err := client.RegisterIPAsset(ctx, refs, story.TermsForLicenseType(licenseType))
		if err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		explorerURL := story.ExplorerURL(result.IPID)

		registered := persist.RegisteredIP{
			IPID:            result.IPID,
			ExplorerURL:     explorerURL,
			ImageURL:        imageURL,
			TxHash:          result.TxHash,
			ImageName:       input.ImageName,
			Prompt:          input.Prompt,
			LicenseType:     persist.LicenseType(licenseType),
			LicenseTermsIDs: result.LicenseTermsIDs,
			RegisteredAt:    time.Now().UTC().Format(time.RFC3339),
		}

		if err := userRepo.AddRegisteredIP(ctx, input.UserID, registered); err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		output := registerIPOutput{
			Success:        true,
			TxHash:         result.TxHash,
			IPID:           result.IPID,
			ExplorerURL:    explorerURL,
			ImageCID:       imageCID,
			IPMetadataCID:  ipMetaCID,
			NFTMetadataCID: nftMetaCID,
		}

		// License minting is best-effort; the registration stands even if it
		// fails
		if input.MintLicenseAmount > 0 && len(result.LicenseTermsIDs) > 0 {
			mint, err := client.MintLicenseTokens(ctx, result.IPID, result.LicenseTermsIDs[0], input.WalletAddress.String(), input.MintLicenseAmount)
			if err != nil {
				logger.For(ctx).Errorf("failed to auto-mint license tokens for %s: %s", result.IPID, err)
				sentryutil.ReportError(ctx, err)
			} else {
				output.MintTxHash = mint.TxHash
				output.LicenseTokenIDs = mint.LicenseTokenIDs
			}
		}

		c.JSON(http.StatusOK, output)
	}
}

// evolveIP registers a derivative asset whose lineage points at one parent
// asset and one of its license terms
func evolveIP(userRepo persist.UserRepository, upld uploader, storyF registrarFactory) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var input evolveIPInput
		if err := c.ShouldBindJSON(&input); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		if err := validate.ValidateFields(v, validate.ValidationMap{
			"imageBuffer":    validate.WithTag(input.ImageBuffer, "required"),
			"imageName":      validate.WithTag(input.ImageName, "required"),
			"prompt":         validate.WithTag(input.Prompt, "required"),
			"walletAddress":  validate.WithTag(input.WalletAddress, "required"),
			"userId":         validate.WithTag(input.UserID, "required"),
			"parentIpId":     validate.WithTag(input.ParentIPID, "required"),
			"licenseTermsId": validate.WithTag(input.LicenseTermsID, "required"),
		}); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		gateway, err := gatewayDomain()
		if err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		if _, err := userRepo.GetByID(ctx, input.UserID); err != nil {
			if errors.As(err, &persist.ErrUserNotFound{}) {
				util.ErrResponse(c, http.StatusBadRequest, err)
				return
			}
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		buffer, err := base64.StdEncoding.DecodeString(input.ImageBuffer)
		if err != nil {
			util.ErrResponse(c, http.StatusBadRequest, fmt.Errorf("invalid image buffer: %w", err))
			return
		}

		imageCID, err := upld.UploadBytes(ctx, buffer, fmt.Sprintf("%s.png", input.ImageName))
		if err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}
		imageURL := ipfs.GatewayURL(gateway, imageCID)

		refs, ipMetaCID, nftMetaCID, err := pinMetadata(ctx, upld, gateway, metadataInput{
			Title:       input.ImageName,
			Description: input.Description,
			Prompt:      input.Prompt,
			ImageURL:    imageURL,
			ImageHash:   contentHash(buffer),
			Creators:    input.Creators,
			Attributes:  input.Attributes,
			ParentIPID:  input.ParentIPID,
			CreatedAt:   time.Now(),
		})
		if err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		client, err := storyF(ctx)
		if err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		result, err := client.RegisterDerivative(ctx, refs, input.ParentIPID, input.LicenseTermsID)
		if err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		// Best-effort: attach commercial terms to the derivative and mint
		// against them when the caller asked for license tokens
		if input.MintLicenseAmount > 0 {
			if err := mintDerivativeLicenses(c, client, result.IPID, input.WalletAddress, input.MintLicenseAmount); err != nil {
				logger.For(ctx).Errorf("failed to mint license tokens for derivative %s: %s", result.IPID, err)
				sentryutil.ReportError(ctx, err)
			}
		}

		explorerURL := story.ExplorerURL(result.IPID)

		registered := persist.RegisteredIP{
			IPID:         result.IPID,
			ExplorerURL:  explorerURL,
			ImageURL:     imageURL,
			TxHash:       result.TxHash,
			ImageName:    input.ImageName,
			Prompt:       input.Prompt,
			LicenseType:  persist.LicenseTypeEvolution,
			RegisteredAt: time.Now().UTC().Format(time.RFC3339),
			ParentIPID:   input.ParentIPID,
		}

		if err := userRepo.AddRegisteredIP(ctx, input.UserID, registered); err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		c.JSON(http.StatusOK, evolveIPOutput{
			Success:        true,
			TxHash:         result.TxHash,
			IPID:           result.IPID,
			ExplorerURL:    explorerURL,
			ImageCID:       imageCID,
			IPMetadataCID:  ipMetaCID,
			NFTMetadataCID: nftMetaCID,
		})
	}
}

func mintDerivativeLicenses(c *gin.Context, client registrar, ipID string, receiver persist.Address, amount int64) error {
	termsIDs, err := client.RegisterPILTermsAndAttach(c.Request.Context(), ipID, story.CommercialRemixTerms())
	if err != nil {
		return err
	}
	if len(termsIDs) == 0 {
		return fmt.Errorf("no license terms attached to %s", ipID)
	}

	_, err = client.MintLicenseTokens(c.Request.Context(), ipID, termsIDs[0], receiver.String(), amount)
	return err
}

// pinMetadata builds both metadata documents, pins them, and returns the
// on-chain references committing their URIs and content hashes
func pinMetadata(ctx context.Context, upld uploader, gateway string, in metadataInput) (story.MetadataRefs, string, string, error) {
	ipMeta := buildIPMetadata(in)
	nftMeta := buildNFTMetadata(in)

	ipJSON, err := json.Marshal(ipMeta)
	if err != nil {
		return story.MetadataRefs{}, "", "", err
	}
	nftJSON, err := json.Marshal(nftMeta)
	if err != nil {
		return story.MetadataRefs{}, "", "", err
	}

	ipMetaCID, err := upld.UploadBytes(ctx, ipJSON, fmt.Sprintf("%s_ip_metadata.json", in.Title))
	if err != nil {
		return story.MetadataRefs{}, "", "", err
	}
	nftMetaCID, err := upld.UploadBytes(ctx, nftJSON, fmt.Sprintf("%s_nft_metadata.json", in.Title))
	if err != nil {
		return story.MetadataRefs{}, "", "", err
	}

	refs := story.MetadataRefs{
		IpMetadataURI:   ipfs.GatewayURL(gateway, ipMetaCID),
		IpMetadataHash:  contentHash(ipJSON),
		NftMetadataURI:  ipfs.GatewayURL(gateway, nftMetaCID),
		NftMetadataHash: contentHash(nftJSON),
	}

	return refs, ipMetaCID, nftMetaCID, nil
}

func gatewayDomain() (string, error) {
	gateway := env.GetString("PINATA_GATEWAY")
	if gateway == "" {
		return "", ipfs.ErrMissingGateway
	}
	return gateway, nil
}

func fetchBytes(c *gin.Context, httpClient *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
