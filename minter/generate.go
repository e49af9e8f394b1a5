package minter

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minters-xyz/go-minters/service/limiter"
	"github.com/minters-xyz/go-minters/service/logger"
	"github.com/minters-xyz/go-minters/service/persist"
	sentryutil "github.com/minters-xyz/go-minters/service/sentry"
	"github.com/minters-xyz/go-minters/util"
	"github.com/minters-xyz/go-minters/validate"
)

type generateImageInput struct {
	Prompt        string          `json:"prompt"`
	WalletAddress persist.Address `json:"walletAddress"`
	Email         persist.Email   `json:"email"`
}

type generateImageOutput struct {
	Success     bool   `json:"success"`
	ImageBuffer string `json:"imageBuffer"`
}

type userUsageOutput struct {
	Count     int `json:"count"`
	Remaining int `json:"remaining"`
	Limit     int `json:"limit"`
}

// generateImage synthesizes an image for the prompt, charging one unit of the
// caller's generation quota on success
func generateImage(usageRepo persist.UsageRecordRepository, checker usageChecker, gen generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var input generateImageInput
		if err := c.ShouldBindJSON(&input); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		if err := validate.ValidateFields(v, validate.ValidationMap{
			"prompt":        validate.WithTag(input.Prompt, "required"),
			"walletAddress": validate.WithTag(input.WalletAddress, "required"),
		}); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		if err := checker.Check(ctx, input.WalletAddress, input.Email); err != nil {
			if errors.As(err, &limiter.ErrLimitExceeded{}) {
				util.ErrResponse(c, http.StatusForbidden, err)
				return
			}
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		image, err := gen.Generate(ctx, input.Prompt)
		if err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		// Recording the usage is what makes the quota hold; a failure here is
		// surfaced but the generated image is not returned
		if _, err := usageRepo.Create(ctx, persist.UsageRecord{
			WalletAddress: input.WalletAddress,
			Email:         input.Email,
			Prompt:        input.Prompt,
			Timestamp:     time.Now().UTC(),
		}); err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		c.JSON(http.StatusOK, generateImageOutput{
			Success:     true,
			ImageBuffer: base64.StdEncoding.EncodeToString(image),
		})
	}
}

// userUsage reports how much of the generation quota an identity has used
func userUsage(checker usageChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		wallet := persist.Address(c.Query("walletAddress"))
		email := persist.Email(c.Query("email"))

		if wallet == "" && email == "" {
			util.ErrResponse(c, http.StatusBadRequest, errors.New("walletAddress or email is required"))
			return
		}

		count, err := checker.Count(ctx, wallet, email)
		if err != nil {
			logger.For(ctx).Errorf("failed to count usage: %s", err)
			sentryutil.ReportError(ctx, err)
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		c.JSON(http.StatusOK, userUsageOutput{
			Count:     count,
			Remaining: checker.Remaining(count),
			Limit:     checker.Limit(),
		})
	}
}
