package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"bridge-gate.backend/pkg/crosschain"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	JWT      JWTConfig
	Bridge   BridgeConfig
	Oracle   OracleConfig
	Relay    RelayConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL            string
	PASSWORD       string
	IdempotencyTTL time.Duration
}

// NATSConfig holds the relay transport configuration
type NATSConfig struct {
	URL           string
	Stream        string
	SubjectPrefix string
	Timeout       time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// BridgeConfig identifies the chain this node serves and its well-known holders
type BridgeConfig struct {
	ChainID            crosschain.ChainID
	ChainType          crosschain.ChainType
	GateAddress        string
	CallProxyAddress   string
	TreasuryAddress    string
	WrappedNativeToken string
	DeployerAddress    string
	TokenProxyInitCode string
	AdminAddress       string
	LocalRPCURL        string
	OriginRPCURLs      map[crosschain.ChainID]string
}

// OracleConfig points at the oracle query API
type OracleConfig struct {
	APIURL  string
	Timeout time.Duration
}

// RelayConfig holds the outbox relay cadence
type RelayConfig struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "bridgegate"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:            getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD:       getEnv("REDIS_PASSWORD", ""),
			IdempotencyTTL: getEnvAsDuration("REDIS_IDEMPOTENCY_TTL", 24*time.Hour),
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", "nats://localhost:4222"),
			Stream:        getEnv("NATS_STREAM", "BRIDGE"),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "bridge"),
			Timeout:       getEnvAsDuration("NATS_TIMEOUT", 10*time.Second),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		},
		Bridge: BridgeConfig{
			ChainID:            crosschain.ChainID(getEnvAsUint64("BRIDGE_CHAIN_ID", 1)),
			ChainType:          crosschain.ChainType(getEnv("BRIDGE_CHAIN_TYPE", string(crosschain.ChainTypeEVM))),
			GateAddress:        getEnv("BRIDGE_GATE_ADDRESS", ""),
			CallProxyAddress:   getEnv("BRIDGE_CALL_PROXY_ADDRESS", ""),
			TreasuryAddress:    getEnv("BRIDGE_TREASURY_ADDRESS", ""),
			WrappedNativeToken: getEnv("BRIDGE_WRAPPED_NATIVE_TOKEN", ""),
			DeployerAddress:    getEnv("BRIDGE_DEPLOYER_ADDRESS", ""),
			TokenProxyInitCode: getEnv("BRIDGE_TOKEN_PROXY_INIT_CODE", ""),
			AdminAddress:       getEnv("BRIDGE_ADMIN_ADDRESS", ""),
			LocalRPCURL:        getEnv("BRIDGE_RPC_URL", ""),
			OriginRPCURLs:      getEnvAsChainMap("ORIGIN_RPC_URLS"),
		},
		Oracle: OracleConfig{
			APIURL:  getEnv("ORACLE_API_URL", ""),
			Timeout: getEnvAsDuration("ORACLE_API_TIMEOUT", 15*time.Second),
		},
		Relay: RelayConfig{
			Interval:    getEnvAsDuration("RELAY_INTERVAL", 5*time.Second),
			BatchSize:   getEnvAsInt("RELAY_BATCH_SIZE", 100),
			MaxAttempts: getEnvAsInt("RELAY_MAX_ATTEMPTS", 10),
		},
	}
}

// Validate reports the settings the node cannot start without
func (c *Config) Validate() error {
	if c.Bridge.ChainID == 0 {
		return fmt.Errorf("BRIDGE_CHAIN_ID is required")
	}
	if crosschain.AddressLength(c.Bridge.ChainType) == 0 {
		return fmt.Errorf("unknown BRIDGE_CHAIN_TYPE %q", c.Bridge.ChainType)
	}
	required := map[string]string{
		"BRIDGE_GATE_ADDRESS":       c.Bridge.GateAddress,
		"BRIDGE_CALL_PROXY_ADDRESS": c.Bridge.CallProxyAddress,
		"BRIDGE_TREASURY_ADDRESS":   c.Bridge.TreasuryAddress,
	}
	for key, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", key)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsChainMap parses "56=https://bsc,137=https://polygon". Malformed entries are skipped.
func getEnvAsChainMap(key string) map[crosschain.ChainID]string {
	out := make(map[crosschain.ChainID]string)
	for _, entry := range strings.Split(os.Getenv(key), ",") {
		id, url, ok := strings.Cut(strings.TrimSpace(entry), "=")
		if !ok || url == "" {
			continue
		}
		chainID, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
		if err != nil || chainID == 0 {
			continue
		}
		out[crosschain.ChainID(chainID)] = strings.TrimSpace(url)
	}
	return out
}
