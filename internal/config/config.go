package config

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fountain/fountain-api/internal/constants"
	"github.com/fountain/fountain-api/internal/helpers"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// SecretSource resolves a secret from the ARN held in arnEnvVar, falling
// back to the plain value of fallbackEnvVar
type SecretSource interface {
	GetSecretString(ctx context.Context, arnEnvVar, fallbackEnvVar string) (string, error)
	GetSecretJSON(ctx context.Context, arnEnvVar string, target interface{}) error
}

// Config is the resolved process configuration
type Config struct {
	Stage    string
	Port     string
	LogLevel string

	DatabaseURL string

	XRPLNetwork         string
	XRPLRPCURL          string
	XRPLWSURL           string
	IssuerAddress       string
	IssuerSeed          string
	RPCRateLimit        float64
	EnableSubscriber    bool
	EnablePolling       bool
	PollInterval        time.Duration
	LedgerSweepInterval time.Duration
	ActivationStake     decimal.Decimal
	DepositTolerance    decimal.Decimal
	RefundDustThreshold decimal.Decimal
	RetirementLedgerAge uint32
	WalletEncryptionKey string
	USDBRLRate          decimal.Decimal
	XRPBRLRate          decimal.Decimal
	CoinMarketCapAPIKey string
	SQSQueueURL         string
	ResendAPIKey        string
	EmailFromAddress    string
	EmailFromName       string
	NotificationEmailTo []string
	JWTSecret           string
	CORSAllowedOrigins  []string
}

// rdsSecret is the JSON shape of the managed database credentials secret
type rdsSecret struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoadEnvFile loads .env into the environment when present
func LoadEnvFile() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

// Load reads the configuration from the environment, resolving secrets
// through secrets. The result is validated.
func Load(ctx context.Context, secrets SecretSource) (*Config, error) {
	stage := getEnv("STAGE", helpers.StageLocal)
	if !helpers.IsValidStage(stage) {
		return nil, fmt.Errorf("invalid STAGE %q", stage)
	}

	network := getEnv("XRPL_NETWORK", constants.NetworkTestnet)
	rpcURL, wsURL := constants.TestnetRPCURL, constants.TestnetWSURL
	if network == constants.NetworkMainnet {
		rpcURL, wsURL = constants.MainnetRPCURL, constants.MainnetWSURL
	}

	cfg := &Config{
		Stage:               stage,
		Port:                getEnv("PORT", constants.DefaultPort),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		XRPLNetwork:         network,
		XRPLRPCURL:          getEnv("XRPL_RPC_URL", rpcURL),
		XRPLWSURL:           getEnv("XRPL_WS_URL", wsURL),
		IssuerAddress:       os.Getenv("XRPL_ISSUER_ADDRESS"),
		CoinMarketCapAPIKey: os.Getenv("CMC_API_KEY"),
		SQSQueueURL:         os.Getenv("SQS_QUEUE_URL"),
		ResendAPIKey:        os.Getenv("RESEND_API_KEY"),
		EmailFromAddress:    getEnv("EMAIL_FROM_ADDRESS", "no-reply@fountain.dev"),
		EmailFromName:       getEnv("EMAIL_FROM_NAME", "Fountain"),
		NotificationEmailTo: splitList(os.Getenv("NOTIFICATION_EMAIL_TO")),
		CORSAllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	var err error
	if cfg.RPCRateLimit, err = getFloat("XRPL_RPC_RATE_LIMIT", constants.DefaultRPCRateLimit); err != nil {
		return nil, err
	}
	if cfg.EnableSubscriber, err = getBool("ENABLE_XRPL_SUBSCRIBER", true); err != nil {
		return nil, err
	}
	if cfg.EnablePolling, err = getBool("ENABLE_XRPL_POLLING_FALLBACK", true); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = getDuration("POLL_INTERVAL", constants.DefaultPollInterval); err != nil {
		return nil, err
	}
	if cfg.LedgerSweepInterval, err = getDuration("LEDGER_SWEEP_INTERVAL", constants.DefaultLedgerSweepInterval); err != nil {
		return nil, err
	}
	if cfg.ActivationStake, err = getDecimal("ACTIVATION_STAKE_XRP", constants.DefaultActivationStakeXRP); err != nil {
		return nil, err
	}
	if cfg.DepositTolerance, err = getDecimal("DEPOSIT_TOLERANCE", constants.DefaultDepositTolerance); err != nil {
		return nil, err
	}
	if cfg.RefundDustThreshold, err = getDecimal("REFUND_DUST_THRESHOLD", constants.DefaultRefundDustThreshold); err != nil {
		return nil, err
	}
	if cfg.USDBRLRate, err = getDecimal("USD_BRL_RATE", constants.DefaultUSDBRLRate); err != nil {
		return nil, err
	}
	if cfg.XRPBRLRate, err = getDecimal("XRP_BRL_RATE", constants.DefaultXRPBRLRate); err != nil {
		return nil, err
	}
	age, err := getFloat("WALLET_RETIREMENT_LEDGER_AGE", constants.MinWalletRetirementLedgerAge)
	if err != nil {
		return nil, err
	}
	if age < 0 {
		return nil, fmt.Errorf("WALLET_RETIREMENT_LEDGER_AGE must not be negative")
	}
	cfg.RetirementLedgerAge = uint32(age)

	if err := cfg.loadSecrets(ctx, secrets); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadSecrets(ctx context.Context, secrets SecretSource) error {
	var err error
	if c.WalletEncryptionKey, err = secrets.GetSecretString(ctx, "WALLET_ENCRYPTION_KEY_ARN", "WALLET_ENCRYPTION_KEY"); err != nil {
		return err
	}
	if c.IssuerSeed, err = secrets.GetSecretString(ctx, "XRPL_ISSUER_SEED_ARN", "XRPL_ISSUER_SEED"); err != nil {
		return err
	}
	// the HTTP surface can run without tokens in local stage
	c.JWTSecret, _ = secrets.GetSecretString(ctx, "JWT_SECRET_ARN", "JWT_SECRET")

	if helpers.IsDeployedStage(c.Stage) && os.Getenv("RDS_SECRET_ARN") != "" {
		dsn, err := rdsDSN(ctx, secrets)
		if err != nil {
			return err
		}
		c.DatabaseURL = dsn
		return nil
	}
	// an empty database url selects the in-memory store
	c.DatabaseURL, _ = secrets.GetSecretString(ctx, "DATABASE_URL_ARN", "DATABASE_URL")
	return nil
}

// rdsDSN builds the database url from the managed credentials secret
func rdsDSN(ctx context.Context, secrets SecretSource) (string, error) {
	host, name := os.Getenv("DB_HOST"), os.Getenv("DB_NAME")
	if host == "" || name == "" {
		return "", fmt.Errorf("DB_HOST and DB_NAME are required with RDS_SECRET_ARN")
	}
	var creds rdsSecret
	if err := secrets.GetSecretJSON(ctx, "RDS_SECRET_ARN", &creds); err != nil {
		return "", err
	}
	if creds.Username == "" || creds.Password == "" {
		return "", fmt.Errorf("RDS secret is missing username or password")
	}
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		url.QueryEscape(creds.Username), url.QueryEscape(creds.Password),
		host, name, getEnv("DB_SSLMODE", "require")), nil
}

// Validate rejects configurations the engine cannot run safely with
func (c *Config) Validate() error {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(c.WalletEncryptionKey))
	if err != nil || len(key) != 32 {
		return fmt.Errorf("WALLET_ENCRYPTION_KEY must be 32 bytes, base64 encoded")
	}
	if c.RetirementLedgerAge < constants.MinWalletRetirementLedgerAge {
		return fmt.Errorf("WALLET_RETIREMENT_LEDGER_AGE must be at least %d", constants.MinWalletRetirementLedgerAge)
	}
	if !c.ActivationStake.IsPositive() {
		return fmt.Errorf("ACTIVATION_STAKE_XRP must be positive")
	}
	if c.DepositTolerance.IsNegative() || c.RefundDustThreshold.IsNegative() {
		return fmt.Errorf("DEPOSIT_TOLERANCE and REFUND_DUST_THRESHOLD must not be negative")
	}
	switch c.XRPLNetwork {
	case constants.NetworkTestnet, constants.NetworkMainnet:
	default:
		return fmt.Errorf("unknown XRPL_NETWORK %q", c.XRPLNetwork)
	}
	if c.IssuerSeed == "" {
		return fmt.Errorf("XRPL_ISSUER_SEED is required")
	}
	if c.RPCRateLimit <= 0 {
		return fmt.Errorf("XRPL_RPC_RATE_LIMIT must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	if helpers.IsDeployedStage(c.Stage) && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in %s", c.Stage)
	}
	return nil
}

// EnvSecrets reads secrets straight from the environment. It stands in for
// Secrets Manager when no AWS configuration is available.
type EnvSecrets struct{}

func (EnvSecrets) GetSecretString(ctx context.Context, arnEnvVar, fallbackEnvVar string) (string, error) {
	if v := os.Getenv(fallbackEnvVar); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("secret not found in env var '%s'", fallbackEnvVar)
}

func (EnvSecrets) GetSecretJSON(ctx context.Context, arnEnvVar string, target interface{}) error {
	return fmt.Errorf("secret '%s' requires Secrets Manager", arnEnvVar)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getDecimal(key, fallback string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getEnv(key, fallback))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
