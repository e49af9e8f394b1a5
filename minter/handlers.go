package minter

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/minters-xyz/go-minters/service/emails"
	"github.com/minters-xyz/go-minters/service/imagegen"
	"github.com/minters-xyz/go-minters/service/ipfs"
	"github.com/minters-xyz/go-minters/service/limiter"
	"github.com/minters-xyz/go-minters/service/persist/firestore"
	"github.com/minters-xyz/go-minters/service/story"
	"github.com/minters-xyz/go-minters/util"
	"github.com/minters-xyz/go-minters/validate"
)

var v = validate.New()

// HandlersInit wires every route onto the router
func HandlersInit(router *gin.Engine, repos *firestore.Repositories, httpClient *http.Client) *gin.Engine {
	upld := ipfs.NewUploader(httpClient)
	gen := imagegen.NewGenerator(httpClient)
	sender := emails.NewSender()
	checker := limiter.New(repos.UsageRecordRepository)

	// a fresh chain client per request keeps nonce state out of the process
	storyF := func(ctx context.Context) (registrar, error) {
		return story.NewClient(ctx)
	}

	router.GET("/alive", util.HealthCheckHandler())

	api := router.Group("/api")
	api.POST("/register-ip", registerIP(repos.UserRepository, upld, storyF, httpClient))
	api.POST("/evolve", evolveIP(repos.UserRepository, upld, storyF))
	api.POST("/dispute", raiseDispute(repos.UserRepository, repos.DisputeRepository, upld, storyF, sender))
	api.POST("/generate-image", generateImage(repos.UsageRecordRepository, checker, gen))
	api.GET("/user-usage", userUsage(checker))
	api.GET("/gallery", gallery(repos.UserRepository))
	api.POST("/subscribe", subscribe(repos.SubscriptionRepository))
	api.POST("/send-mail", sendMail(sender))

	return router
}
