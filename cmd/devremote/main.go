package main

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/config"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/remotetest"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/server"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("devremote")
	cfg, err := config.GetConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	remote := remotetest.NewServer(cfg.Remote, log)

	router := remote.Router()
	if cfg.Metrics.Enabled {
		router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	srv, err := server.NewServer(router, cfg.Remote, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
