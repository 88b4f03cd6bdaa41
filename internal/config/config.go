package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/autograde/grader/internal/logger"
	"github.com/autograde/grader/internal/validator"
)

type PostgresConfig struct {
	User               string        `validate:"required"`
	Password           string        `validate:"required"`
	Host               string        `validate:"required"`
	Database           string        `validate:"required"`
	MaxIdleConnections int           `validate:"required" mapstructure:"max_idle_connections"`
	MaxOpenConnections int           `validate:"required" mapstructure:"max_open_connections"`
	ConnectionTTL      time.Duration `validate:"required" mapstructure:"connection_ttl"`
	Port               int16         `validate:"required"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// How long a grading config stays cached, 0 disables the cache
	ConfigTTL time.Duration `mapstructure:"config_ttl"`
	Port      int16         `mapstructure:"port"`
}

type AzureConfig struct {
	StorageAccount *AzureStorageAccountConfig `mapstructure:"storage_account" validate:"required"`
	Dev            bool                       `mapstructure:"dev"`
}

type AzureStorageAccountConfig struct {
	Containers *AzureStorageAccountContainerConfig `mapstructure:"containers" validate:"required"`
	Queues     *AzureStorageAccountQueueConfig     `mapstructure:"queues"     validate:"required"`
	Name       string                              `mapstructure:"name"       validate:"required"`
	Key        string                              `mapstructure:"key"        validate:"required"`
}

type AzureStorageAccountContainerConfig struct {
	URL       string `mapstructure:"url"       validate:"required"`
	Artifacts string `mapstructure:"artifacts" validate:"required"`
	// Grade record archive, used when the S3 archive is disabled. Empty disables it.
	Archive string `mapstructure:"archive"`
}

type AzureStorageAccountQueueConfig struct {
	URL     string `mapstructure:"url"     validate:"required"`
	Batches string `mapstructure:"batches" validate:"required"`
	Results string `mapstructure:"results" validate:"required"`
}

type RateLimitConfig struct {
	// Requests per minute per client address on the grading routes, 0 disables the limit
	PerMinute int64 `mapstructure:"per_minute" validate:"gte=0"`
	// Let requests through when redis cannot be reached
	FailOpen bool `mapstructure:"fail_open"`
}

type SlogConfig struct {
	Level int `mapstructure:"level"`
}

type GormLogConfig struct {
	Level        int  `mapstructure:"level"`
	TraceQueries bool `mapstructure:"trace_queries"`
}

type LoggingConfig struct {
	Gorm    GormLogConfig `mapstructure:"gorm"`
	App     SlogConfig    `mapstructure:"app"`
	UseOTLP bool          `mapstructure:"use_otlp"`
}

type S3ArchiveConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	Enabled         bool   `mapstructure:"enabled"`
	SSLEnabled      bool   `mapstructure:"ssl_enabled"`
}

type GradingConfig struct {
	// Upper bound on submissions in flight within one batch
	MaxConcurrency int `mapstructure:"max_concurrency" validate:"gte=1"`
}

type ScoringConfig struct {
	URL     string        `mapstructure:"url"       validate:"required_unless=Local true"`
	Timeout time.Duration `mapstructure:"timeout"   validate:"gt=0"`
	// Transport level retries inside the HTTP client
	RetryMax int `mapstructure:"retry_max" validate:"gte=0"`
	// Attempts made by the batch retry decorator, 1 disables it
	BatchAttempts uint64 `mapstructure:"batch_attempts" validate:"gte=1"`
	// Grade with the built in similarity scorer instead of the remote service
	Local bool `mapstructure:"local"`
}

type ExtractionConfig struct {
	URL      string        `mapstructure:"url"       validate:"omitempty,url"`
	Timeout  time.Duration `mapstructure:"timeout"   validate:"gt=0"`
	RetryMax int           `mapstructure:"retry_max" validate:"gte=0"`
}

type RoutingConfig struct {
	// Assignment kind to threshold, overriding Threshold
	KindThresholds map[string]float64 `mapstructure:"kind_thresholds" validate:"dive,gte=0,lte=1"`
	Threshold      float64            `mapstructure:"threshold"       validate:"gte=0,lte=1"`
}

type ToneConfig struct {
	Name string `mapstructure:"name" validate:"required"`
	// Minimum percentage of total points
	Min float64 `mapstructure:"min"  validate:"gte=0,lte=100"`
}

type FeedbackConfig struct {
	Tones []ToneConfig `mapstructure:"tones" validate:"dive"`
}

// See grader.yaml for an example config
type Config struct {
	Postgres             *PostgresConfig  `mapstructure:"postgres"               validate:"required"`
	Redis                *RedisConfig     `mapstructure:"redis"`
	Azure                *AzureConfig     `mapstructure:"azure"`
	Logging              *LoggingConfig   `mapstructure:"logging"                validate:"required"`
	S3Archive            *S3ArchiveConfig `mapstructure:"s3_archive"`
	Grading              GradingConfig    `mapstructure:"grading"`
	Scoring              ScoringConfig    `mapstructure:"scoring"`
	Extraction           ExtractionConfig `mapstructure:"extraction"`
	Routing              RoutingConfig    `mapstructure:"routing"`
	Feedback             FeedbackConfig   `mapstructure:"feedback"`
	RateLimit            RateLimitConfig  `mapstructure:"rate_limit"`
	ListenAddress        string           `mapstructure:"listen_address"         validate:"required"`
	GracefulShutdownSecs int64            `mapstructure:"graceful_shutdown_secs"`
}

const (
	AppLogLevel                string = "logging.app.level"
	AzureDev                   string = "azure.dev"
	AzureStorageAccountKey     string = "azure.storage_account.key"
	EnvPrefix                  string = "grader"
	ExtractionRetryMax         string = "extraction.retry_max"
	ExtractionTimeout          string = "extraction.timeout"
	GormLogLevel               string = "logging.gorm.level"
	GormTraceQueries           string = "logging.gorm.trace_queries"
	GracefulShutdownSecs       string = "graceful_shutdown_secs"
	GradingMaxConcurrency      string = "grading.max_concurrency"
	ListenAddress              string = "listen_address"
	PostgresDatabase           string = "postgres.database"
	RateLimitFailOpen          string = "rate_limit.fail_open"
	RateLimitPerMinute         string = "rate_limit.per_minute"
	PostgresHost               string = "postgres.host"
	PostgresPassword           string = "postgres.password"
	PostgresPort               string = "postgres.port"
	PostgresUser               string = "postgres.user"
	PostgresMaxIdleConnections string = "postgres.max_idle_connections"
	PostgresMaxOpenConnections string = "postgres.max_open_connections"
	PostgresConnectonTTL       string = "postgres.connection_ttl"
	RedisConfigTTL             string = "redis.config_ttl"
	RedisHost                  string = "redis.host"
	RedisPassword              string = "redis.password"
	RedisPort                  string = "redis.port"
	RoutingThreshold           string = "routing.threshold"
	S3AccessKeyID              string = "s3_archive.access_key_id"
	S3ArchiveEnabled           string = "s3_archive.enabled"
	S3SSLEnabled               string = "s3_archive.ssl_enabled"
	S3SecretAccessKey          string = "s3_archive.secret_access_key" // #nosec
	ScoringBatchAttempts       string = "scoring.batch_attempts"
	ScoringLocal               string = "scoring.local"
	ScoringRetryMax            string = "scoring.retry_max"
	ScoringTimeout             string = "scoring.timeout"
	ScoringURL                 string = "scoring.url"
	UseOTLP                    string = "logging.use_otlp"
)

var configReady = false
var config Config

func GetConfig() (*Config, error) {
	if configReady {
		logger.Logger.Debug("returning already-loaded config")
		return &config, nil
	}
	logger.Logger.Info("loading config")

	if err := load(newViper(), &config); err != nil {
		configReady = false
		return nil, err
	}

	configReady = true
	return &config, nil
}

// Config for dry runs that never reach postgres, redis or the collaborator services.
// Storage settings are not validated and scoring is always local.
func GetLocalConfig() (*Config, error) {
	var out Config
	if err := read(newViper(), &out); err != nil {
		return nil, err
	}
	out.Scoring.Local = true

	return &out, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetConfigName("grader")

	v.AddConfigPath("/etc/grader/")
	v.AddConfigPath(".")

	v.SetConfigType("yaml")

	return v
}

func load(v *viper.Viper, out *Config) error {
	if err := read(v, out); err != nil {
		return err
	}

	valid := validator.Create()
	return valid.Validate(out)
}

func read(v *viper.Viper, out *Config) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.AutomaticEnv()

	// workaround for https://github.com/spf13/viper/issues/761
	// bind env vars explicitly so they unmarshal into the nested struct
	for _, key := range []string{
		PostgresPassword,
		AzureStorageAccountKey,
		RedisPassword,
		S3AccessKeyID,
		S3SecretAccessKey,
		ScoringURL,
		ScoringLocal,
	} {
		if err := v.BindEnv(key); err != nil {
			return err
		}
	}

	setDefaults(v)

	err := v.ReadInConfig()
	if err != nil {
		// ignore config file not found to allow pure env config
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	err = v.Unmarshal(out)
	if err != nil {
		return err
	}

	if len(out.Feedback.Tones) == 0 {
		out.Feedback.Tones = DefaultTones()
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ListenAddress, "[::]:1323")
	v.SetDefault(PostgresHost, "localhost")
	v.SetDefault(PostgresPort, 5432)
	v.SetDefault(PostgresMaxIdleConnections, 2)
	v.SetDefault(PostgresMaxOpenConnections, 10)
	v.SetDefault(PostgresConnectonTTL, 10*time.Minute)
	v.SetDefault(GormLogLevel, int(slog.LevelDebug))
	v.SetDefault(GormTraceQueries, false)
	v.SetDefault(AppLogLevel, int(slog.LevelDebug))
	v.SetDefault(S3ArchiveEnabled, false)
	v.SetDefault(S3SSLEnabled, true)

	v.SetDefault(RedisHost, "localhost")
	v.SetDefault(RedisPort, 6379)
	v.SetDefault(RedisConfigTTL, 5*time.Minute)

	v.SetDefault(RateLimitPerMinute, 0)
	v.SetDefault(RateLimitFailOpen, true)

	v.SetDefault(GradingMaxConcurrency, 4)
	v.SetDefault(ScoringTimeout, 30*time.Second)
	v.SetDefault(ScoringRetryMax, 0)
	v.SetDefault(ScoringBatchAttempts, 1)
	v.SetDefault(ScoringLocal, false)
	v.SetDefault(ExtractionTimeout, 2*time.Minute)
	v.SetDefault(ExtractionRetryMax, 3)
	v.SetDefault(RoutingThreshold, 0.5)

	v.SetDefault(UseOTLP, false)

	v.SetDefault(GracefulShutdownSecs, 30)
}

// Tone bands used when none are configured, highest first
func DefaultTones() []ToneConfig {
	return []ToneConfig{
		{Name: "excellent", Min: 90},
		{Name: "good", Min: 80},
		{Name: "satisfactory", Min: 70},
		{Name: "fair", Min: 60},
		{Name: "needs_improvement", Min: 0},
	}
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s",
		url.QueryEscape(c.Postgres.User),
		url.QueryEscape(c.Postgres.Password),
		c.Postgres.Host, c.Postgres.Port,
		url.QueryEscape(c.Postgres.Database),
	)
}

func (c *Config) RedisAddr() string {
	if c.Redis == nil {
		return ""
	}

	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
