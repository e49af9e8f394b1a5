package minter

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minters-xyz/go-minters/service/logger"
	"github.com/minters-xyz/go-minters/service/persist"
	"github.com/minters-xyz/go-minters/util"
	"github.com/minters-xyz/go-minters/validate"
)

type subscribeInput struct {
	Email persist.Email `json:"email"`
}

type subscribeOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type sendMailInput struct {
	Recipients []mailRecipient `json:"recipients"`
	Subject    string          `json:"subject"`
	HTML       string          `json:"htmlContent"`
}

type mailRecipient struct {
	Email persist.Email `json:"email"`
	Name  string        `json:"name"`
}

type sendMailOutput struct {
	Success bool `json:"success"`
	Mocked  bool `json:"mocked,omitempty"`
}

// subscribe adds an address to the newsletter list, rejecting duplicates
func subscribe(subRepo persist.SubscriptionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var input subscribeInput
		if err := c.ShouldBindJSON(&input); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		if err := validate.ValidateFields(v, validate.ValidationMap{
			"email": validate.WithTag(input.Email, "required,email"),
		}); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		_, err := subRepo.Create(ctx, persist.Subscription{
			Email:        input.Email,
			SubscribedAt: time.Now().UTC(),
		})
		if err != nil {
			if errors.As(err, &persist.ErrEmailAlreadySubscribed{}) {
				c.AbortWithStatusJSON(http.StatusConflict, subscribeOutput{
					Message: "This email is already subscribed.",
				})
				return
			}
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		c.JSON(http.StatusOK, subscribeOutput{
			Success: true,
			Message: "Thank you for subscribing!",
		})
	}
}

// sendMail delivers an arbitrary HTML email. When the email collaborator is
// unconfigured the send is mocked so development environments keep working.
func sendMail(sender emailSender) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var input sendMailInput
		if err := c.ShouldBindJSON(&input); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		if len(input.Recipients) == 0 {
			util.ErrResponse(c, http.StatusBadRequest, errors.New("at least one recipient is required"))
			return
		}

		if err := validate.ValidateFields(v, validate.ValidationMap{
			"subject":     validate.WithTag(input.Subject, "required"),
			"htmlContent": validate.WithTag(input.HTML, "required"),
		}); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		if !sender.Configured() {
			logger.For(ctx).Info("email sender not configured, mocking send")
			c.JSON(http.StatusOK, sendMailOutput{Success: true, Mocked: true})
			return
		}

		recipients := make([]string, 0, len(input.Recipients))
		for _, r := range input.Recipients {
			recipients = append(recipients, r.Email.String())
		}

		if err := sender.Send(ctx, recipients, input.Subject, input.HTML); err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		c.JSON(http.StatusOK, sendMailOutput{Success: true})
	}
}
