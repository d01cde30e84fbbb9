package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fountain/fountain-api/internal/app"
	"github.com/fountain/fountain-api/internal/auth"
	"github.com/fountain/fountain-api/internal/config"
	"github.com/fountain/fountain-api/internal/helpers"
	"github.com/fountain/fountain-api/internal/logger"
	"github.com/fountain/fountain-api/internal/server"
	"go.uber.org/zap"
)

// localCompanyID owns every request when the API runs without JWT_SECRET
const localCompanyID = "local"

func main() {
	if err := config.LoadEnvFile(); err != nil {
		// the process environment still applies
		os.Stderr.WriteString(err.Error() + "\n")
	}
	stage := os.Getenv("STAGE")
	if stage == "" {
		stage = helpers.StageLocal
	}
	logger.InitLogger(stage)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	secrets, awsCfg := app.LoadSecrets(ctx, stage)
	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	a, err := app.Build(ctx, cfg, awsCfg)
	if err != nil {
		logger.Fatal("Failed to initialise engine", zap.Error(err))
	}
	defer a.Close()

	if a.Stream != nil {
		go func() {
			if err := a.Stream.Run(ctx, a.Router); err != nil && ctx.Err() == nil {
				logger.Error("Ledger stream stopped", zap.Error(err))
			}
		}()
	} else {
		go a.Router.PollLedger(ctx, cfg.LedgerSweepInterval)
	}

	// watched wallets must be re-subscribed before new requests arrive
	if err := a.Recon.Resume(ctx); err != nil {
		logger.Fatal("Failed to resume pending operations", zap.Error(err))
	}

	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set, every request runs as the local admin company")
	}
	router := server.NewRouter(server.Dependencies{
		Stage:          cfg.Stage,
		Stablecoins:    a.Stablecoins,
		Ledger:         a.Gateway,
		Authenticator:  auth.NewAuthenticator(cfg.JWTSecret, localCompanyID),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	if err := server.Run(ctx, ":"+cfg.Port, router); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
}
