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
	CatalogDriverBolt     = "bolt"
	CatalogDriverPostgres = "postgres"
)

const (
	defaultPort                   = "8080"
	defaultPostgresMaxConnections = 10
	defaultPostgresMaxIdle        = 5
	defaultSuggestRefresh         = 5 * time.Minute
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

// getString prefers the environment variable over the yaml key.
func (c *Config) getString(envKey string, yamlKey string) string {
	value := c.config.GetString(envKey)
	if len(value) == 0 {
		value = c.config.GetString(yamlKey)
	}

	return value
}

func (c *Config) getInt(envKey string, yamlKey string, fallback int) int {
	value := c.config.GetInt(envKey)
	if value == 0 {
		value = c.config.GetInt(yamlKey)
	}
	if value == 0 {
		value = fallback
	}

	return value
}

func (c *Config) GetPort() string {
	port := c.getString("PORT", "server.port")
	if len(port) == 0 {
		port = defaultPort
	}

	return port
}

func (c *Config) GetKVDBPath() string {
	return c.getString("KVDB_PATH", "database.kvdb_path")
}

// GetIndexPath returns the on-disk location of the suggestion index.
// An empty path keeps the index in memory.
func (c *Config) GetIndexPath() string {
	return c.getString("INDEX_PATH", "database.index_path")
}

func (c *Config) GetCatalogDriver() string {
	driver := c.getString("CATALOG_DRIVER", "catalog.driver")
	if len(driver) == 0 {
		driver = CatalogDriverBolt
	}

	return driver
}

func (c *Config) GetPostgresDSN() string {
	return c.getString("POSTGRES_DSN", "postgres.dsn")
}

func (c *Config) GetPostgresMaxConnections() int {
	return c.getInt("POSTGRES_MAX_CONNECTIONS", "postgres.max_connections", defaultPostgresMaxConnections)
}

func (c *Config) GetPostgresMaxIdle() int {
	return c.getInt("POSTGRES_MAX_IDLE", "postgres.max_idle", defaultPostgresMaxIdle)
}

// GetSuggestRefreshInterval is how often suggestions are rebuilt from an
// external catalog.
func (c *Config) GetSuggestRefreshInterval() time.Duration {
	interval := c.config.GetDuration("SUGGEST_REFRESH_INTERVAL")
	if interval <= 0 {
		interval = c.config.GetDuration("suggest.refresh_interval")
	}
	if interval <= 0 {
		interval = defaultSuggestRefresh
	}

	return interval
}

func (c *Config) GetAdminToken() string {
	return c.getString("ADMIN_TOKEN", "admin.token")
}

func (c *Config) GetLogLevel() string {
	return c.getString("LOG_LEVEL", "log.level")
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
