package minter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minters-xyz/go-minters/service/logger"
	"github.com/minters-xyz/go-minters/service/persist"
	sentryutil "github.com/minters-xyz/go-minters/service/sentry"
	"github.com/minters-xyz/go-minters/util"
	"github.com/minters-xyz/go-minters/validate"
)

type raiseDisputeInput struct {
	TargetIPID     string          `json:"targetIpId"`
	TargetTag      string          `json:"targetTag"`
	Evidence       string          `json:"evidence"`
	WalletAddress  persist.Address `json:"walletAddress"`
	CreatorAddress persist.Address `json:"creatorAddress"`
}

type raiseDisputeOutput struct {
	Success     bool   `json:"success"`
	TxHash      string `json:"txHash"`
	DisputeID   string `json:"disputeId"`
	EvidenceCID string `json:"evidenceCid"`
}

// disputeEvidence is the document pinned as the dispute's supporting evidence
type disputeEvidence struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	TargetIPID      string `json:"targetIpId"`
	TargetTag       string `json:"targetTag"`
	RaiserAddress   string `json:"raiserAddress"`
	CreatedAt       string `json:"createdAt"`
	Liveness        int64  `json:"liveness"`
	Bond            string `json:"bond"`
	CounterEvidence string `json:"counterEvidence"`
	Appealed        string `json:"appealed"`
}

// raiseDispute pins the evidence, raises the dispute on-chain, and then makes
// a best-effort attempt at persisting the record and notifying the asset's
// owner. Only the pin and the on-chain call can fail the request.
func raiseDispute(userRepo persist.UserRepository, disputeRepo persist.DisputeRepository, upld uploader, storyF registrarFactory, sender emailSender) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var input raiseDisputeInput
		if err := c.ShouldBindJSON(&input); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		if err := validate.ValidateFields(v, validate.ValidationMap{
			"targetIpId":     validate.WithTag(input.TargetIPID, "required"),
			"targetTag":      validate.WithTag(input.TargetTag, "required"),
			"evidence":       validate.WithTag(input.Evidence, "required"),
			"walletAddress":  validate.WithTag(input.WalletAddress, "required"),
			"creatorAddress": validate.WithTag(input.CreatorAddress, "eth_addr_optional"),
		}); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		evidence := disputeEvidence{
			Title:           "Dispute Evidence",
			Description:     input.Evidence,
			TargetIPID:      input.TargetIPID,
			TargetTag:       input.TargetTag,
			RaiserAddress:   input.WalletAddress.String(),
			CreatedAt:       time.Now().UTC().Format(time.RFC3339),
			Liveness:        2592000,
			Bond:            "0.1 IP",
			CounterEvidence: "Pending",
			Appealed:        "No",
		}

		evidenceCID, err := upld.UploadJSON(ctx, evidence, fmt.Sprintf("dispute_evidence_%s.json", input.TargetIPID))
		if err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		client, err := storyF(ctx)
		if err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		result, err := client.RaiseDispute(ctx, input.TargetIPID, evidenceCID, input.TargetTag)
		if err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		recordAndNotify(ctx, userRepo, disputeRepo, sender, persist.Dispute{
			DisputeID:      result.DisputeID,
			TargetIPID:     input.TargetIPID,
			TargetTag:      persist.DisputeTag(input.TargetTag),
			Evidence:       input.Evidence,
			EvidenceCID:    evidenceCID,
			RaiserAddress:  input.WalletAddress,
			CreatorAddress: input.CreatorAddress,
			TxHash:         result.TxHash,
			CreatedAt:      time.Now().UTC().Format(time.RFC3339),
			Status:         persist.DisputeStatusRaised,
		})

		c.JSON(http.StatusOK, raiseDisputeOutput{
			Success:     true,
			TxHash:      result.TxHash,
			DisputeID:   result.DisputeID,
			EvidenceCID: evidenceCID,
		})
	}
}

// recordAndNotify persists the dispute and emails the disputed asset's owner,
// resolved by wallet-address equality. Every failure here is logged and
// swallowed; the on-chain dispute already stands.
func recordAndNotify(ctx context.Context, userRepo persist.UserRepository, disputeRepo persist.DisputeRepository, sender emailSender, dispute persist.Dispute) {
	if _, err := disputeRepo.Create(ctx, dispute); err != nil {
		logger.For(ctx).Errorf("failed to persist dispute %s: %s", dispute.DisputeID, err)
		sentryutil.ReportError(ctx, err)
	}

	if dispute.CreatorAddress == "" {
		logger.For(ctx).Infof("no creator address for disputed IP %s, skipping notification", dispute.TargetIPID)
		return
	}

	owner, err := userRepo.GetByWalletAddress(ctx, dispute.CreatorAddress)
	if err != nil {
		if errors.As(err, &persist.ErrUserNotFound{}) {
			logger.For(ctx).Infof("no user owns wallet %s, skipping notification for %s", dispute.CreatorAddress, dispute.TargetIPID)
		} else {
			logger.For(ctx).Errorf("failed to look up owner of %s: %s", dispute.TargetIPID, err)
			sentryutil.ReportError(ctx, err)
		}
		return
	}

	if owner.Email == "" {
		logger.For(ctx).Infof("no owner email for disputed IP %s, skipping notification", dispute.TargetIPID)
		return
	}

	if !sender.Configured() {
		logger.For(ctx).Infof("email sender not configured, skipping dispute notification for %s", dispute.TargetIPID)
		return
	}

	if err := sender.SendDisputeNotification(ctx, owner.Email, dispute); err != nil {
		logger.For(ctx).Errorf("failed to send dispute notification for %s: %s", dispute.TargetIPID, err)
		sentryutil.ReportError(ctx, err)
	}
}
