package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const keyEnv = "ENV"
const envLocal = "local"

const (
	EngineBleve  = "bleve"
	EngineMongo  = "mongo"
	EngineMemory = "memory"
)

const (
	defaultPort             = "4000"
	defaultEngine           = EngineBleve
	defaultStoragePath      = "./.vidcat"
	defaultIndexPath        = "index"
	defaultKVDBPath         = "./.vidcat/vidcat.db"
	defaultMongoDatabase    = "vidcat"
	defaultSearchTimeout    = 5 * time.Second
	defaultMaxPageSize      = 50
	defaultMaxVariants      = 256
	defaultRateLimit        = 20.0
	defaultRateBurst        = 40
	defaultLogLevel         = "info"
	defaultShutdownDuration = 10 * time.Second
)

type Config struct {
	config *viper.Viper
}

func Load(env string) (*Config, error) {

	if len(env) == 0 {
		if env = os.Getenv(keyEnv); len(env) == 0 {
			env = envLocal
		}
	}

	configPath, err := getConfigPath(env)

	viperConfig := viper.New()
	if err == nil {
		viperConfig.SetConfigFile(configPath)
		if err := viperConfig.ReadInConfig(); err != nil {
			slog.Warn(fmt.Sprintf("error reading config file, %s", err))
		}
	}
	viperConfig.AutomaticEnv()

	cfg := &Config{
		config: viperConfig,
	}

	return cfg, nil
}

func (c *Config) GetPort() string {
	return c.getString("PORT", "server.port", defaultPort)
}

func (c *Config) GetShutdownTimeout() time.Duration {
	return c.getDuration("SHUTDOWN_TIMEOUT", "server.shutdown_timeout", defaultShutdownDuration)
}

func (c *Config) GetLogLevel() string {
	return c.getString("LOG_LEVEL", "log.level", defaultLogLevel)
}

func (c *Config) GetEngine() string {
	return c.getString("DB_ENGINE", "database.engine", defaultEngine)
}

func (c *Config) GetKVDBPath() string {
	return c.getString("KVDB_PATH", "database.kvdb_path", defaultKVDBPath)
}

func (c *Config) GetIndexPath() string {
	return c.getString("INDEX_PATH", "database.index_path", defaultIndexPath)
}

func (c *Config) GetStoragePath() string {
	return c.getString("STORAGE_PATH", "database.storage_path", defaultStoragePath)
}

func (c *Config) GetMongoURI() string {
	return c.getString("MONGO_URI", "database.mongo_uri", "")
}

func (c *Config) GetMongoDatabase() string {
	return c.getString("MONGO_DATABASE", "database.mongo_database", defaultMongoDatabase)
}

func (c *Config) GetSearchTimeout() time.Duration {
	return c.getDuration("SEARCH_TIMEOUT", "search.timeout", defaultSearchTimeout)
}

func (c *Config) GetMaxPageSize() int {
	return c.getInt("SEARCH_MAX_PAGE_SIZE", "search.max_page_size", defaultMaxPageSize)
}

// GetMaxVariants bounds the number of spelling variants generated per query word.
func (c *Config) GetMaxVariants() int {
	return c.getInt("SEARCH_MAX_VARIANTS", "search.max_variants", defaultMaxVariants)
}

// GetRateLimit is the steady number of search requests allowed per second. Zero disables limiting.
func (c *Config) GetRateLimit() float64 {
	if c.config.IsSet("SEARCH_RATE_LIMIT") {
		return c.config.GetFloat64("SEARCH_RATE_LIMIT")
	}
	if c.config.IsSet("search.rate_limit") {
		return c.config.GetFloat64("search.rate_limit")
	}
	return defaultRateLimit
}

func (c *Config) GetRateBurst() int {
	return c.getInt("SEARCH_RATE_BURST", "search.rate_burst", defaultRateBurst)
}

func (c *Config) getString(envKey string, fileKey string, fallback string) string {
	value := c.config.GetString(envKey)
	if len(value) == 0 {
		value = c.config.GetString(fileKey)
	}
	if len(value) == 0 {
		value = fallback
	}

	return value
}

func (c *Config) getInt(envKey string, fileKey string, fallback int) int {
	value := c.config.GetInt(envKey)
	if value == 0 {
		value = c.config.GetInt(fileKey)
	}
	if value <= 0 {
		value = fallback
	}

	return value
}

func (c *Config) getDuration(envKey string, fileKey string, fallback time.Duration) time.Duration {
	value := c.config.GetDuration(envKey)
	if value == 0 {
		value = c.config.GetDuration(fileKey)
	}
	if value <= 0 {
		value = fallback
	}

	return value
}

func getProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		configDir := filepath.Join(currentDir, "config")
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)

		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	return "", fmt.Errorf("could not find project root (directory containing 'config' folder)")
}

func getConfigPath(env string) (string, error) {
	configFile := fmt.Sprintf("config.%s.yaml", env)

	projectRoot, err := getProjectRoot()
	if err != nil {
		slog.Warn("failed to find project root with config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	configPath := filepath.Join(projectRoot, "config", configFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Warn("failed to find config file within config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}
