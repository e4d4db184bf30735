package main

import (
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stashbox/backend/internal/config"
	v1 "github.com/stashbox/backend/pkg/controllers/v1"
	"github.com/stashbox/backend/pkg/events"
	"github.com/stashbox/backend/pkg/models"
	"github.com/stashbox/backend/pkg/reconcile"
	"github.com/stashbox/backend/pkg/router"
)

func main() {
	// A .env file is optional
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Msg(err.Error())
	}

	gin.SetMode(cfg.GinMode)

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	output := io.Writer(os.Stdout)
	if (cfg.LogFormat == "" && gin.IsDebugging()) || cfg.LogFormat == "human" {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	// Create data directory
	err := os.MkdirAll(filepath.Dir(cfg.DBPath), os.ModePerm)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	err = models.Connect(cfg.DBPath)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	gateway, err := cfg.Gateway()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	bus := events.NewBus()
	if cfg.AMQPURL != "" {
		sink, err := events.NewAMQPSink(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatal().Msg(err.Error())
		}
		defer sink.Close()

		bus.Subscribe("*", sink.Handle)
		log.Info().Str("exchange", cfg.AMQPExchange).Msg("publishing reconciliation events")
	}

	co := v1.Controller{
		DB: models.DB,
		Engine: &reconcile.Engine{
			DB:    models.DB,
			Rates: gateway,
			Bus:   bus,
		},
	}

	// The API URL has been validated already
	apiURL, _ := url.Parse(cfg.APIURL)

	r, teardown, err := router.Config(apiURL)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	defer teardown()

	router.AttachRoutes(co, r.Group(apiURL.Path))

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Error().Msg(err.Error())
	}
}
