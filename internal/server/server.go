package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fountain/fountain-api/internal/auth"
	"github.com/fountain/fountain-api/internal/handlers"
	"github.com/fountain/fountain-api/internal/helpers"
	"github.com/fountain/fountain-api/internal/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Dependencies are the collaborators behind the HTTP routes
type Dependencies struct {
	Stage          string
	Stablecoins    handlers.StablecoinAPI
	Ledger         handlers.LedgerProbe
	Authenticator  *auth.Authenticator
	AllowedOrigins []string
}

// NewRouter builds the gin engine with every API route registered
func NewRouter(deps Dependencies) *gin.Engine {
	if helpers.IsDeployedStage(deps.Stage) {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), handlers.RequestID(), configureCORS(deps.AllowedOrigins))
	if !helpers.IsDeployedStage(deps.Stage) {
		router.Use(handlers.LogRequest())
	}

	health := handlers.NewHealthHandler(deps.Ledger)
	router.GET("/health", health.Health)
	router.GET("/ready", health.Ready)

	stablecoinHandler := handlers.NewStablecoinHandler(deps.Stablecoins)

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("/")
		protected.Use(deps.Authenticator.EnsureValidToken())
		{
			stablecoins := protected.Group("/stablecoins")
			{
				stablecoins.POST("", stablecoinHandler.CreateStablecoin)
				stablecoins.GET("/:stablecoin_id", stablecoinHandler.GetStablecoin)
				stablecoins.POST("/:stablecoin_id/mint", stablecoinHandler.Mint)
				stablecoins.POST("/:stablecoin_id/burn", stablecoinHandler.Burn)
				stablecoins.POST("/:stablecoin_id/cancel", stablecoinHandler.Cancel)
				stablecoins.GET("/:stablecoin_id/operations", stablecoinHandler.ListOperations)
			}

			operations := protected.Group("/operations")
			{
				operations.GET("/:operation_id", stablecoinHandler.GetOperation)
				operations.GET("/:operation_id/wallet", stablecoinHandler.GetWalletStatus)
			}
		}
	}
	return router
}

func configureCORS(origins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	return cors.New(corsConfig)
}

// Run serves handler on addr until ctx is cancelled, then shuts down gracefully
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("Server exiting")
	return nil
}
