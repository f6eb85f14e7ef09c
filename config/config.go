package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	AES       AESConfig       `mapstructure:"aes"`
	Log       LogConfig       `mapstructure:"log"`
	Hedera    HederaConfig    `mapstructure:"hedera"`
	Stellar   StellarConfig   `mapstructure:"stellar"`
	Wallet    WalletConfig    `mapstructure:"wallet"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Mode        string `mapstructure:"mode"` // debug, release, test
	MaxBodySize int64  `mapstructure:"max_body_size"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// MigrateURL returns the DSN in the scheme expected by the pgx/v5 migrate driver.
func (d DatabaseConfig) MigrateURL() string {
	return "pgx5" + strings.TrimPrefix(d.DSN(), "postgres")
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

// AESConfig holds the wallet secret sealing key. Never log it.
type AESConfig struct {
	Key string `mapstructure:"key"` // 32-byte hex-encoded key for AES-256
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// HederaConfig configures the hashgraph ledger. The operator is the treasury
// account that pays for new accounts.
type HederaConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Network        string        `mapstructure:"network"` // testnet, previewnet, mainnet
	OperatorID     string        `mapstructure:"operator_id"`
	OperatorKey    string        `mapstructure:"operator_key"`
	InitialBalance string        `mapstructure:"initial_balance"` // HBAR
	MaxTxFee       string        `mapstructure:"max_tx_fee"`      // HBAR
	MirrorNodeURL  string        `mapstructure:"mirror_node_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RatePerSecond  float64       `mapstructure:"rate_per_second"`
	Burst          int           `mapstructure:"burst"`
}

// InitialBalanceHbar parses the funding amount for new accounts.
func (h HederaConfig) InitialBalanceHbar() (decimal.Decimal, error) {
	return decimal.NewFromString(h.InitialBalance)
}

// MaxTxFeeHbar parses the per-transaction fee ceiling.
func (h HederaConfig) MaxTxFeeHbar() (decimal.Decimal, error) {
	return decimal.NewFromString(h.MaxTxFee)
}

type StellarConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	HorizonURL        string        `mapstructure:"horizon_url"`
	NetworkPassphrase string        `mapstructure:"network_passphrase"`
	FriendbotURL      string        `mapstructure:"friendbot_url"` // empty disables funding
	BaseFee           int64         `mapstructure:"base_fee"`      // stroops
	TxTimeout         time.Duration `mapstructure:"tx_timeout"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	RatePerSecond     float64       `mapstructure:"rate_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// WalletConfig tunes the payment orchestration.
type WalletConfig struct {
	LockTTL             time.Duration `mapstructure:"lock_ttl"`
	LockWait            time.Duration `mapstructure:"lock_wait"`
	IdempotencyTTL      time.Duration `mapstructure:"idempotency_ttl"`
	DefaultHistoryLimit int           `mapstructure:"default_history_limit"`
	MaxHistoryLimit     int           `mapstructure:"max_history_limit"`
}

type RateLimitConfig struct {
	AuthPerMinute    int `mapstructure:"auth_per_minute"`
	WalletPerMinute  int `mapstructure:"wallet_per_minute"`
	PaymentPerMinute int `mapstructure:"payment_per_minute"`
}

// Load reads configuration from an optional .env file, a config file and
// environment variables. Environment variables override file values.
// Prefix: SWA_. Nested keys use underscore: SWA_DATABASE_HOST, SWA_HEDERA_OPERATOR_ID, etc.
func Load(path string) (*Config, error) {
	// .env is a convenience for local runs; real env vars win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("SWA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// config file is optional, env vars can suffice
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.max_body_size", 1<<20)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "social_wallet")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "social-wallet-api")
	v.SetDefault("aes.key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("hedera.enabled", true)
	v.SetDefault("hedera.network", "testnet")
	v.SetDefault("hedera.operator_id", "")
	v.SetDefault("hedera.operator_key", "")
	v.SetDefault("hedera.initial_balance", "10")
	v.SetDefault("hedera.max_tx_fee", "2")
	v.SetDefault("hedera.mirror_node_url", "https://testnet.mirrornode.hedera.com")
	v.SetDefault("hedera.request_timeout", "20s")
	v.SetDefault("hedera.rate_per_second", 10)
	v.SetDefault("hedera.burst", 5)

	v.SetDefault("stellar.enabled", true)
	v.SetDefault("stellar.horizon_url", "https://horizon-testnet.stellar.org")
	v.SetDefault("stellar.network_passphrase", "Test SDF Network ; September 2015")
	v.SetDefault("stellar.friendbot_url", "https://friendbot.stellar.org")
	v.SetDefault("stellar.base_fee", 100)
	v.SetDefault("stellar.tx_timeout", "180s")
	v.SetDefault("stellar.request_timeout", "30s")
	v.SetDefault("stellar.rate_per_second", 10)
	v.SetDefault("stellar.burst", 5)

	v.SetDefault("wallet.lock_ttl", "60s")
	v.SetDefault("wallet.lock_wait", "5s")
	v.SetDefault("wallet.idempotency_ttl", "24h")
	v.SetDefault("wallet.default_history_limit", 10)
	v.SetDefault("wallet.max_history_limit", 100)

	v.SetDefault("ratelimit.auth_per_minute", 10)
	v.SetDefault("ratelimit.wallet_per_minute", 60)
	v.SetDefault("ratelimit.payment_per_minute", 20)
}

// Validate checks the settings that have no safe default.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if key, err := hex.DecodeString(c.AES.Key); err != nil || len(key) != 32 {
		errs = append(errs, errors.New("aes.key must be 64 hex characters"))
	}
	if c.Hedera.Enabled {
		if c.Hedera.OperatorID == "" || c.Hedera.OperatorKey == "" {
			errs = append(errs, errors.New("hedera.operator_id and hedera.operator_key are required when hedera is enabled"))
		}
		if _, err := c.Hedera.InitialBalanceHbar(); err != nil {
			errs = append(errs, fmt.Errorf("hedera.initial_balance: %w", err))
		}
		if _, err := c.Hedera.MaxTxFeeHbar(); err != nil {
			errs = append(errs, fmt.Errorf("hedera.max_tx_fee: %w", err))
		}
		// A transfer is a submit plus a receipt wait, each bounded by the timeout.
		if c.Wallet.LockTTL <= 2*c.Hedera.RequestTimeout {
			errs = append(errs, fmt.Errorf("wallet.lock_ttl (%s) must exceed twice hedera.request_timeout (%s)",
				c.Wallet.LockTTL, c.Hedera.RequestTimeout))
		}
	}
	if c.Stellar.Enabled && c.Wallet.LockTTL <= c.Stellar.RequestTimeout {
		errs = append(errs, fmt.Errorf("wallet.lock_ttl (%s) must exceed stellar.request_timeout (%s)",
			c.Wallet.LockTTL, c.Stellar.RequestTimeout))
	}
	if c.Stellar.Enabled && c.Stellar.NetworkPassphrase == "" {
		errs = append(errs, errors.New("stellar.network_passphrase is required when stellar is enabled"))
	}
	if !c.Hedera.Enabled && !c.Stellar.Enabled {
		errs = append(errs, errors.New("at least one ledger must be enabled"))
	}
	return errors.Join(errs...)
}
