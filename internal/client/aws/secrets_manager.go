package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/fountain/fountain-api/internal/logger"
	"go.uber.org/zap"
)

type secretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerClient resolves service secrets from AWS Secrets Manager
// with an environment variable fallback.
type SecretsManagerClient struct {
	svc secretsAPI
	cfg aws.Config
}

// LoadConfig loads the default AWS configuration chain (environment, shared
// config, IAM role)
func LoadConfig(ctx context.Context) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return cfg, nil
}

// NewSecretsManagerClient creates a Secrets Manager client from the default config chain
func NewSecretsManagerClient(ctx context.Context) (*SecretsManagerClient, error) {
	cfg, err := LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &SecretsManagerClient{svc: secretsmanager.NewFromConfig(cfg), cfg: cfg}, nil
}

// Config returns the AWS configuration the client was built from
func (c *SecretsManagerClient) Config() aws.Config {
	return c.cfg
}

// GetSecretString returns the secret whose ARN is held by secretArnEnvVar.
// When that variable is unset or the fetch fails it falls back to the value
// of fallbackEnvVar.
func (c *SecretsManagerClient) GetSecretString(ctx context.Context, secretArnEnvVar string, fallbackEnvVar string) (string, error) {
	if value, ok := c.fetch(ctx, secretArnEnvVar); ok {
		return value, nil
	}

	secretValue := os.Getenv(fallbackEnvVar)
	if secretValue != "" {
		logger.Log.Debug("Using secret value from direct environment variable", zap.String("envVar", fallbackEnvVar))
		return secretValue, nil
	}

	return "", fmt.Errorf("secret not found using ARN env var '%s' or direct env var '%s'", secretArnEnvVar, fallbackEnvVar)
}

// GetSecretJSON fetches a JSON secret by the ARN held in secretArnEnvVar and
// unmarshals it into target. There is no environment fallback.
func (c *SecretsManagerClient) GetSecretJSON(ctx context.Context, secretArnEnvVar string, target interface{}) error {
	value, ok := c.fetch(ctx, secretArnEnvVar)
	if !ok {
		return fmt.Errorf("secret not found using ARN env var '%s'", secretArnEnvVar)
	}
	if err := json.Unmarshal([]byte(value), target); err != nil {
		return fmt.Errorf("secret from '%s' is not valid JSON: %w", secretArnEnvVar, err)
	}
	return nil
}

func (c *SecretsManagerClient) fetch(ctx context.Context, secretArnEnvVar string) (string, bool) {
	secretArn := os.Getenv(secretArnEnvVar)
	if secretArn == "" || c == nil || c.svc == nil {
		return "", false
	}

	result, err := c.svc.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretArn),
	})
	if err != nil || result.SecretString == nil || *result.SecretString == "" {
		logger.Log.Warn("Failed to retrieve secret from Secrets Manager, falling back",
			zap.String("secretArnEnvVar", secretArnEnvVar),
			zap.Error(err))
		return "", false
	}

	logger.Log.Info("Fetched secret from Secrets Manager", zap.String("secretArnEnvVar", secretArnEnvVar))
	return *result.SecretString, true
}
