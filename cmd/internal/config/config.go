package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

const (
	envVarsPrefix = "/notes/prod/"
	defaultRegion = "us-east-2"
)

type Config struct {
	Production bool
	Port       string
	LogLevel   log.Lvl

	DatabasePath string
	MachineID    int64

	TokenSecret []byte
	SessionTTL  time.Duration

	// Domain is the public origin used to build links in emails.
	Domain string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromAddress  string

	MailMaxAttempts int
	MailRetryDelay  time.Duration

	TokenSweepInterval time.Duration
}

// LoadEnv populates the process environment. Production reads the
// parameters under envVarsPrefix from AWS SSM, anything else reads .env.
func LoadEnv(ctx context.Context) error {
	if isProduction() {
		return loadProdEnv(ctx)
	}

	if err := godotenv.Load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("no .env file found, using the process environment")
			return nil
		}
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load builds the typed configuration from the environment.
func Load() (*Config, error) {
	prod := isProduction()
	r := &reader{}

	defaultSMTPPort := 2525
	if prod {
		defaultSMTPPort = 587
	}

	cfg := &Config{
		Production:         prod,
		Port:               getEnv("PORT", "7070"),
		LogLevel:           ParseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabasePath:       getEnv("DATABASE_PATH", "database.db"),
		MachineID:          int64(r.integer("MACHINE_ID", 1)),
		TokenSecret:        []byte(r.required("TOKEN_SECRET")),
		SessionTTL:         r.duration("SESSION_TTL", 24*time.Hour),
		Domain:             strings.TrimRight(getEnv("DOMAIN", "http://localhost:3000"), "/"),
		SMTPHost:           os.Getenv("SMTP_HOST"),
		SMTPPort:           r.integer("SMTP_PORT", defaultSMTPPort),
		SMTPUsername:       os.Getenv("SMTP_USERNAME"),
		SMTPPassword:       os.Getenv("SMTP_PASSWORD"),
		FromName:           getEnv("EMAIL_FROM_NAME", "Notes Team"),
		FromAddress:        getEnv("EMAIL_FROM_ADDRESS", "noreply@notes.local"),
		MailMaxAttempts:    r.integer("MAIL_MAX_ATTEMPTS", 3),
		MailRetryDelay:     r.duration("MAIL_RETRY_DELAY", 2*time.Second),
		TokenSweepInterval: r.duration("TOKEN_SWEEP_INTERVAL", 15*time.Minute),
	}

	if cfg.MailMaxAttempts < 1 {
		r.errs = append(r.errs, fmt.Errorf("MAIL_MAX_ATTEMPTS must be at least 1, got %d", cfg.MailMaxAttempts))
	}

	if err := errors.Join(r.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func ParseLogLevel(level string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

func isProduction() bool {
	return os.Getenv("GO_ENV") == "production"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// reader collects every malformed or missing variable so startup reports
// them all at once.
type reader struct {
	errs []error
}

func (r *reader) required(key string) string {
	v := os.Getenv(key)
	if v == "" {
		r.errs = append(r.errs, fmt.Errorf("%s is required", key))
	}
	return v
}

func (r *reader) integer(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid integer %q", key, raw))
		return fallback
	}
	return v
}

func (r *reader) duration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid duration %q", key, raw))
		return fallback
	}
	return v
}

func loadProdEnv(ctx context.Context) error {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(getEnv("AWS_REGION", defaultRegion)))
	if err != nil {
		return fmt.Errorf("load AWS SDK config: %w", err)
	}

	client := ssm.NewFromConfig(cfg)
	pages := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(envVarsPrefix),
		WithDecryption: aws.Bool(true),
		Recursive:      aws.Bool(true),
	})

	var count int
	for pages.HasMorePages() {
		out, err := pages.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("load prod environment: %w", err)
		}

		for _, param := range out.Parameters {
			key := strings.TrimPrefix(aws.ToString(param.Name), envVarsPrefix)
			if err := os.Setenv(key, aws.ToString(param.Value)); err != nil {
				return fmt.Errorf("set %s: %w", key, err)
			}
			count++
		}
	}

	log.Debugf("loaded %d prod environment variables", count)
	return nil
}
