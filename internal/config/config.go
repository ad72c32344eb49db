package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Worker    WorkerConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout    time.Duration `mapstructure:"idleTimeout"`
	ShutdownPeriod time.Duration `mapstructure:"shutdownPeriod"`
}

type StorageConfig struct {
	// Driver selects the repository backend: "file" (default) or "postgres".
	Driver string            `mapstructure:"driver"`
	File   FileStorageConfig `mapstructure:"file"`
}

type FileStorageConfig struct {
	KeysPath     string `mapstructure:"keysPath"`
	ProductsPath string `mapstructure:"productsPath"`
	// SealKey is an optional hex-encoded 32-byte key. When set, both store
	// files are encrypted at rest.
	SealKey string `mapstructure:"sealKey"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	// AdminKeyHash is the hex SHA-256 digest of the admin API key
	// (see cmd/hashsecret).
	AdminKeyHash string        `mapstructure:"adminKeyHash"`
	JWTSecret    string        `mapstructure:"jwtSecret"`
	JWTTTL       time.Duration `mapstructure:"jwtTTL"`
}

type RateLimitConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	PerMinute int  `mapstructure:"perMinute"`
}

type WorkerConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ScanSchedule string `mapstructure:"scanSchedule"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func LoadConfig(configPath string) (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables and config file")
	}

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.readTimeout", 5*time.Second)
	viper.SetDefault("server.writeTimeout", 10*time.Second)
	viper.SetDefault("server.idleTimeout", 120*time.Second)
	viper.SetDefault("server.shutdownPeriod", 15*time.Second)

	viper.SetDefault("storage.driver", "file")
	viper.SetDefault("storage.file.keysPath", "./data/keys.json")
	viper.SetDefault("storage.file.productsPath", "./data/products.json")

	viper.SetDefault("database.maxOpenConns", 25)
	viper.SetDefault("database.maxIdleConns", 25)
	viper.SetDefault("database.connMaxLifetime", 5*time.Minute)

	viper.SetDefault("redis.db", "0")

	viper.SetDefault("auth.jwtTTL", 1*time.Hour)

	viper.SetDefault("rateLimit.enabled", true)
	viper.SetDefault("rateLimit.perMinute", 10)

	viper.SetDefault("worker.enabled", true)
	viper.SetDefault("worker.scanSchedule", "@every 1h")

	viper.SetDefault("log.level", "info")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AllowEmptyEnv(true)

	if configPath != "" {
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			log.Printf("Warning: could not read config file: %s. Error: %v\n", configPath, err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
