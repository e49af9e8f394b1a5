package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/minters-xyz/go-minters/env"
	"github.com/minters-xyz/go-minters/middleware"
	"github.com/minters-xyz/go-minters/minter"
	"github.com/minters-xyz/go-minters/service/logger"
	"github.com/minters-xyz/go-minters/service/persist/firestore"
	sentryutil "github.com/minters-xyz/go-minters/service/sentry"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Init initializes the server
func Init() {
	setDefaults()

	initLogger()
	initSentry()

	router := CoreInit(context.Background())

	http.Handle("/", router)
}

// CoreInit initializes core server functionality. This is abstracted so the
// test server can also utilize it.
func CoreInit(ctx context.Context) *gin.Engine {
	logger.For(nil).Info("initializing server...")

	if env.GetString("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(middleware.HandleCORS(), middleware.ErrLogger())

	fsClient := firestore.MustCreateClient(ctx)
	repos := firestore.NewRepositories(fsClient)

	return minter.HandlersInit(router, repos, &http.Client{Timeout: 0})
}

func setDefaults() {
	viper.SetDefault("ENV", "local")
	viper.SetDefault("PORT", 4000)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("FIRESTORE_PROJECT_ID", "minters-local")
	viper.SetDefault("GCLOUD_SERVICE_KEY_PATH", "")
	viper.SetDefault("PINATA_JWT", "")
	viper.SetDefault("PINATA_GATEWAY", "gateway.pinata.cloud")
	viper.SetDefault("IPFS_URL", "")
	viper.SetDefault("STORY_RPC_URL", "https://rpc.ankr.com/story_aeneid_testnet")
	viper.SetDefault("WALLET_PRIVATE_KEY", "")
	viper.SetDefault("IMAGE_PROVIDER", "huggingface")
	viper.SetDefault("HUGGINGFACE_API_KEY", "")
	viper.SetDefault("STABILITY_API_KEY", "")
	viper.SetDefault("SENDGRID_API_KEY", "")
	viper.SetDefault("SENDER_EMAIL", "")
	viper.SetDefault("APP_URL", "http://localhost:3000")
	viper.SetDefault("SENTRY_DSN", "")
	viper.SetDefault("VERSION", "")

	viper.AutomaticEnv()
}

func initLogger() {
	logger.SetLoggerOptions(func(l *logrus.Logger) {
		l.SetReportCaller(true)

		if env.GetString("ENV") != "production" {
			l.SetLevel(logrus.DebugLevel)
		}

		if env.GetString("ENV") == "local" {
			l.SetFormatter(&logrus.TextFormatter{DisableQuote: true})
		} else {
			// Use a JSON formatter so log fields get parsed in hosted environments
			l.SetFormatter(&logrus.JSONFormatter{})
		}
	})
}

func initSentry() {
	if env.GetString("ENV") == "local" {
		logger.For(nil).Info("skipping sentry init")
		return
	}

	sentryutil.Init()
}
