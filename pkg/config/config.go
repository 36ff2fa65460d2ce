/*
Package config manages TOML config for itemserve services.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/itemserve/internal/utils"
	"github.com/bastiangx/itemserve/pkg/dictionary"
	"github.com/charmbracelet/log"
)

// FileName is the config file looked up in the config directory.
const FileName = "config.toml"

// Config holds the entire config structure
type Config struct {
	Server ServerConfig `toml:"server"`
	Dict   DictConfig   `toml:"dict"`
	HTTP   HTTPConfig   `toml:"http"`
	S3     S3Config     `toml:"s3"`
	CLI    CliConfig    `toml:"cli"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxLimit      int  `toml:"max_limit"`
	MinPrefix     int  `toml:"min_prefix"`
	MaxPrefix     int  `toml:"max_prefix"`
	SuppressExact bool `toml:"suppress_exact"`
}

// DictConfig holds dictionary options.
type DictConfig struct {
	Source    string `toml:"source"`
	CacheSize int    `toml:"cache_size"`
}

// HTTPConfig holds the optional HTTP listener options.
type HTTPConfig struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
	Port    int    `toml:"port"`
}

// S3Config holds credentials for s3:// dictionary sources.
type S3Config struct {
	Endpoint        string `toml:"endpoint"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	Region          string `toml:"region"`
	UseSSL          bool   `toml:"use_ssl"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit  int `toml:"default_limit"`
	DefaultMinLen int `toml:"default_min_len"`
	DefaultMaxLen int `toml:"default_max_len"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. platform config dir (XDG_CONFIG_HOME, ~/.config, %APPDATA%)
// 2. ~/.itemserve, the temp dir, the executable dir
func GetConfigDir() (string, error) {
	pr, err := utils.NewPathResolver()
	if err != nil {
		log.Errorf("Failed to resolve paths: %v", err)
		return "", err
	}
	path, err := pr.GetConfigPath(FileName)
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, FileName), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/itemserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxLimit:      100,
			MinPrefix:     0,
			MaxPrefix:     60,
			SuppressExact: true,
		},
		Dict: DictConfig{
			Source:    "data/items.bin",
			CacheSize: 512,
		},
		HTTP: HTTPConfig{
			Enabled: false,
			Address: "127.0.0.1",
			Port:    8080,
		},
		S3: S3Config{
			UseSSL: true,
		},
		CLI: CliConfig{
			DefaultLimit:  24,
			DefaultMinLen: 0,
			DefaultMaxLen: 60,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.normalize()
	return config, nil
}

// normalize pulls out of range values back to something servable.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Server.MaxLimit <= 0 || c.Server.MaxLimit > def.Server.MaxLimit {
		log.Warnf("server.max_limit %d out of range 1..%d, using %d", c.Server.MaxLimit, def.Server.MaxLimit, def.Server.MaxLimit)
		c.Server.MaxLimit = def.Server.MaxLimit
	}
	if c.Server.MinPrefix < 0 {
		c.Server.MinPrefix = 0
	}
	if c.Server.MaxPrefix > 0 && c.Server.MaxPrefix < c.Server.MinPrefix {
		log.Warnf("server.max_prefix %d below min_prefix %d, using %d", c.Server.MaxPrefix, c.Server.MinPrefix, c.Server.MinPrefix)
		c.Server.MaxPrefix = c.Server.MinPrefix
	}
	if c.Dict.CacheSize < 0 {
		c.Dict.CacheSize = 0
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		c.HTTP.Port = def.HTTP.Port
	}
}

// tryPartialParse attempts to parse a TOML file section by section
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		extractDictConfig(section, &config.Dict)
	}
	if section, ok := utils.ExtractSection(tempConfig, "http"); ok {
		extractHTTPConfig(section, &config.HTTP)
	}
	if section, ok := utils.ExtractSection(tempConfig, "s3"); ok {
		extractS3Config(section, &config.S3)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	config.normalize()
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "min_prefix"); ok {
		server.MinPrefix = val
	}
	if val, ok := utils.ExtractInt64(data, "max_prefix"); ok {
		server.MaxPrefix = val
	}
	if val, ok := utils.ExtractBool(data, "suppress_exact"); ok {
		server.SuppressExact = val
	}
}

func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.ExtractString(data, "source"); ok {
		dict.Source = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_size"); ok {
		dict.CacheSize = val
	}
}

func extractHTTPConfig(data map[string]any, http *HTTPConfig) {
	if val, ok := utils.ExtractBool(data, "enabled"); ok {
		http.Enabled = val
	}
	if val, ok := utils.ExtractString(data, "address"); ok {
		http.Address = val
	}
	if val, ok := utils.ExtractInt64(data, "port"); ok {
		http.Port = val
	}
}

func extractS3Config(data map[string]any, s3 *S3Config) {
	if val, ok := utils.ExtractString(data, "endpoint"); ok {
		s3.Endpoint = val
	}
	if val, ok := utils.ExtractString(data, "access_key_id"); ok {
		s3.AccessKeyID = val
	}
	if val, ok := utils.ExtractString(data, "secret_access_key"); ok {
		s3.SecretAccessKey = val
	}
	if val, ok := utils.ExtractString(data, "region"); ok {
		s3.Region = val
	}
	if val, ok := utils.ExtractBool(data, "use_ssl"); ok {
		s3.UseSSL = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "default_min_len"); ok {
		cli.DefaultMinLen = val
	}
	if val, ok := utils.ExtractInt64(data, "default_max_len"); ok {
		cli.DefaultMaxLen = val
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	return SaveConfig(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the server values and saves to file. Nil pointers keep the current value.
func (c *Config) Update(configPath string, maxLimit, minPrefix, maxPrefix *int, suppressExact *bool) error {
	server := &c.Server
	if maxLimit != nil {
		server.MaxLimit = *maxLimit
	}
	if minPrefix != nil {
		server.MinPrefix = *minPrefix
	}
	if maxPrefix != nil {
		server.MaxPrefix = *maxPrefix
	}
	if suppressExact != nil {
		server.SuppressExact = *suppressExact
	}
	c.normalize()
	return SaveConfig(c, configPath)
}

// S3Options converts the s3 section for dictionary sources.
func (c *Config) S3Options() dictionary.S3Options {
	return dictionary.S3Options(c.S3)
}
