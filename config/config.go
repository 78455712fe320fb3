// Package config loads server configuration from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends
const (
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"
)

// Config is the configuration of the server and the change consumer.
type Config struct {
	// Port is the port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	Region string `env:"AWS_REGION"`

	// Container identifies the set of tables records live in. It prefixes
	// every table name.
	Container string `env:"FIELD_MATES_CONTAINER" envDefault:"FieldMates"`

	// StoreBackend selects where records are kept: "dynamodb" or "memory".
	StoreBackend string `env:"STORE_BACKEND" envDefault:"dynamodb"`

	DynamoDBEndpoint string `env:"DYNAMODB_ENDPOINT"`
	S3Bucket         string `env:"S3_BUCKET_NAME"`
	S3Endpoint       string `env:"S3_ENDPOINT"`

	// NotificationQueueURL is the SQS queue change notifications are sent
	// to. Empty disables the queue.
	NotificationQueueURL string `env:"NOTIFICATION_QUEUE_URL"`
	SQSEndpoint          string `env:"SQS_ENDPOINT"`

	// QueryResultsLimit caps the number of records one fetch-all returns.
	QueryResultsLimit int32 `env:"QUERY_RESULTS_LIMIT" envDefault:"100"`

	// SettingsDB is the SQLite file local settings are kept in.
	SettingsDB string `env:"SETTINGS_DB" envDefault:"settings.db"`

	// LogFile, when set, receives every log message; stderr then only
	// gets Info and above.
	LogFile string `env:"LOG_FILE"`

	// IdentityPublicKey is the PEM public key identity tokens are signed
	// with. Empty disables sign-in.
	IdentityPublicKey string `env:"IDENTITY_PUBLIC_KEY"`
	IdentityAudience  string `env:"IDENTITY_AUDIENCE"`
}

// Load reads envFile, if it exists, into the environment and then parses the
// environment into a Config. Variables already set are not overridden by the
// file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load env file %q: %w", envFile, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the values of cfg can be used together.
func (cfg Config) Validate() error {
	var errs []error
	switch cfg.StoreBackend {
	case BackendDynamoDB, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendDynamoDB, BackendMemory, cfg.StoreBackend))
	}
	if cfg.Container == "" {
		errs = append(errs, errors.New("FIELD_MATES_CONTAINER must not be empty"))
	}
	if cfg.QueryResultsLimit <= 0 {
		errs = append(errs, fmt.Errorf("QUERY_RESULTS_LIMIT must be positive, got %d", cfg.QueryResultsLimit))
	}
	return errors.Join(errs...)
}

// TableName is the DynamoDB table records of recordType are kept in.
func (cfg Config) TableName(recordType string) string {
	return cfg.Container + "_" + recordType
}

// LoadAWS loads the shared AWS configuration for cfg.Region.
func (cfg Config) LoadAWS(ctx context.Context) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awscfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awscfg, nil
}
