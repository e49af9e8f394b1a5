package main

import (
	"fmt"
	"net/http"

	"github.com/minters-xyz/go-minters/env"
	"github.com/minters-xyz/go-minters/server"
	"github.com/minters-xyz/go-minters/service/logger"
	sentryutil "github.com/minters-xyz/go-minters/service/sentry"
)

func main() {
	defer sentryutil.RecoverAndRaise(nil)

	server.Init()

	port := env.GetInt("PORT")
	logger.For(nil).Infof("listening on :%d", port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), nil); err != nil {
		logger.For(nil).Fatalf("server exited: %s", err)
	}
}
