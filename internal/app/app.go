package app

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsClient "github.com/fountain/fountain-api/internal/client/aws"
	httpClient "github.com/fountain/fountain-api/internal/client/http"
	"github.com/fountain/fountain-api/internal/client/rates"
	"github.com/fountain/fountain-api/internal/client/xrpl"
	"github.com/fountain/fountain-api/internal/config"
	"github.com/fountain/fountain-api/internal/db"
	"github.com/fountain/fountain-api/internal/logger"
	"github.com/fountain/fountain-api/internal/services"
	"github.com/fountain/fountain-api/internal/vault"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const webhookTimeout = 10 * time.Second

// App holds the wired engine shared by the API server and the operator CLI
type App struct {
	Config *config.Config

	Pool    *pgxpool.Pool
	Store   db.Querier
	Vault   *vault.Vault
	Stream  *xrpl.Stream
	Gateway *xrpl.Gateway

	Router      *services.EventRouter
	Refunds     *services.RefundService
	Settlement  *services.SettlementService
	Recon       *services.ReconciliationService
	Lifecycle   *services.WalletLifecycleService
	Stablecoins *services.StablecoinService
}

// LoadSecrets returns the Secrets Manager client when the AWS config chain
// loads and the environment otherwise. The AWS config is nil in that case.
func LoadSecrets(ctx context.Context, stage string) (config.SecretSource, *aws.Config) {
	client, err := awsClient.NewSecretsManagerClient(ctx)
	if err != nil {
		logger.Warn("AWS configuration unavailable, reading secrets from environment",
			zap.String("stage", stage),
			zap.Error(err))
		return config.EnvSecrets{}, nil
	}
	cfg := client.Config()
	return client, &cfg
}

// OpenStore connects to Postgres and applies pending migrations, or returns
// the in-memory store when no database url is configured
func OpenStore(ctx context.Context, databaseURL string) (db.Querier, *pgxpool.Pool, error) {
	if databaseURL == "" {
		logger.Warn("DATABASE_URL not set, using the in-memory store; state is lost on restart")
		return db.NewMemoryStore(), nil, nil
	}

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to parse database connection string: %w", err)
	}
	poolConfig.MaxConns = 20
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("unable to reach database: %w", err)
	}

	applied, err := db.RunMigrations(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if len(applied) > 0 {
		logger.Info("Applied database migrations", zap.Strings("versions", applied))
	}
	return db.New(pool), pool, nil
}

// Build wires every collaborator from cfg. awsCfg enables the SQS notifier
// when a queue url is configured.
func Build(ctx context.Context, cfg *config.Config, awsCfg *aws.Config) (*App, error) {
	store, pool, err := OpenStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Pool: pool, Store: store}

	if a.Vault, err = vault.NewFromBase64(cfg.WalletEncryptionKey); err != nil {
		a.Close()
		return nil, err
	}

	if a.Gateway, a.Stream, err = BuildGateway(cfg); err != nil {
		a.Close()
		return nil, err
	}

	notifier := buildNotifier(cfg, awsCfg)
	rateProvider := rates.NewProvider(cfg.CoinMarketCapAPIKey, cfg.XRPBRLRate, cfg.USDBRLRate)

	a.Router = services.NewEventRouter(a.Gateway, services.RouterConfig{
		PollInterval:    cfg.PollInterval,
		PollingEnabled:  cfg.EnablePolling,
		ActivationStake: cfg.ActivationStake,
	})
	a.Refunds = services.NewRefundService(store, a.Gateway, a.Vault, cfg.RefundDustThreshold)
	a.Settlement = services.NewSettlementService(store, a.Gateway, a.Refunds, notifier)
	a.Recon = services.NewReconciliationService(store, a.Gateway, a.Router, a.Refunds, a.Settlement, services.ReconciliationConfig{
		Tolerance:       cfg.DepositTolerance,
		DustThreshold:   cfg.RefundDustThreshold,
		ActivationStake: cfg.ActivationStake,
	})
	a.Lifecycle = services.NewWalletLifecycleService(store, a.Gateway, a.Vault, services.LifecycleConfig{
		ActivationStake:     cfg.ActivationStake,
		RetirementLedgerAge: cfg.RetirementLedgerAge,
	})
	a.Stablecoins = services.NewStablecoinService(store, a.Gateway, a.Lifecycle, a.Recon, a.Settlement, rateProvider)

	a.Router.OnLedgerClosed(a.Recon.RedriveStalled)
	a.Router.OnLedgerClosed(a.Lifecycle.OnLedgerClosed)

	logger.Info("Engine wired",
		zap.String("network", cfg.XRPLNetwork),
		zap.String("issuer", a.Gateway.IssuerAddress()),
		zap.Bool("subscriber", cfg.EnableSubscriber),
		zap.Bool("polling", cfg.EnablePolling),
		zap.Bool("postgres", pool != nil))
	return a, nil
}

// BuildGateway creates the ledger gateway for cfg. The stream is nil when
// the subscriber is disabled.
func BuildGateway(cfg *config.Config) (*xrpl.Gateway, *xrpl.Stream, error) {
	issuer, err := xrpl.WalletFromSeed(cfg.IssuerSeed)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid issuer seed: %w", err)
	}
	if cfg.IssuerAddress != "" && cfg.IssuerAddress != issuer.Address {
		return nil, nil, fmt.Errorf("XRPL_ISSUER_ADDRESS %s does not match the issuer seed", cfg.IssuerAddress)
	}

	rpc := xrpl.NewRPCClient(cfg.XRPLRPCURL, cfg.RPCRateLimit)
	var stream *xrpl.Stream
	if cfg.EnableSubscriber {
		stream = xrpl.NewStream(cfg.XRPLWSURL, logger.Log.With(zap.String("component", "ledger_stream")))
	}
	return xrpl.NewGateway(rpc, stream, issuer, nil), stream, nil
}

func buildNotifier(cfg *config.Config, awsCfg *aws.Config) services.Notifier {
	notifiers := []services.Notifier{
		services.NewWebhookNotifier(httpClient.NewHTTPClient(
			httpClient.WithTimeout(webhookTimeout),
			httpClient.WithDefaultHeader("User-Agent", "fountain-webhooks/1.0"),
		)),
	}
	if cfg.SQSQueueURL != "" {
		if awsCfg == nil {
			logger.Warn("SQS_QUEUE_URL set without AWS configuration, queue notifications disabled")
		} else {
			notifiers = append(notifiers, services.NewQueueNotifier(awsClient.NewSQSPublisher(*awsCfg, cfg.SQSQueueURL)))
		}
	}
	if cfg.ResendAPIKey != "" && len(cfg.NotificationEmailTo) > 0 {
		notifiers = append(notifiers, services.NewEmailNotifier(cfg.ResendAPIKey, cfg.EmailFromAddress, cfg.EmailFromName, cfg.NotificationEmailTo))
	}
	return services.NewMultiNotifier(notifiers...)
}

// Close stops the router and releases the database pool
func (a *App) Close() {
	if a.Router != nil {
		a.Router.Stop()
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}
