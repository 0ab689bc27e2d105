// Package config loads the process configuration from the environment
// with github.com/spf13/viper, plus the on-disk dictionary-code table
// with github.com/goccy/go-yaml.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/viper"
)

// Config is the frozen, once-initialized configuration struct: every
// per-request and startup knob lives here rather than scattered env
// lookups.
type Config struct {
	Port string

	Version string

	KafkaEnabled bool
	KafkaHost    string
	KafkaGroup   string
	KafkaQueues  []string

	OpensearchURL string

	AllowedOrigin string

	DictionaryConfigPath string
}

// defaultQueues subscribes every recognized topic; KAFKA_QUEUES narrows
// the set.
var defaultQueues = []string{
	"browser", "form", "process", "window", "menu_item", "menu_tree", "role",
}

// Load binds every recognized environment variable through viper, with
// defaults suited to a local deployment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	v.SetDefault("port", "7878")
	v.SetDefault("version", "dev")
	v.SetDefault("kafka_enabled", "Y")
	v.SetDefault("kafka_host", "127.0.0.1:9092")
	v.SetDefault("kafka_group", "default")
	v.SetDefault("kafka_queues", strings.Join(defaultQueues, " "))
	v.SetDefault("opensearch_url", "http://localhost:9200")
	v.SetDefault("allowed_origin", "*")
	v.SetDefault("dictionary_config_path", "")

	for _, key := range []string{
		"port", "version", "kafka_enabled", "kafka_host", "kafka_group",
		"kafka_queues", "opensearch_url", "allowed_origin",
		"dictionary_config_path",
	} {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("config: bind env %q: %w", key, err)
		}
	}

	cfg := &Config{
		Port:                 v.GetString("port"),
		Version:              v.GetString("version"),
		KafkaEnabled:         strings.EqualFold(v.GetString("kafka_enabled"), "Y"),
		KafkaHost:            v.GetString("kafka_host"),
		KafkaGroup:           v.GetString("kafka_group"),
		KafkaQueues:          strings.Fields(v.GetString("kafka_queues")),
		OpensearchURL:        v.GetString("opensearch_url"),
		AllowedOrigin:        v.GetString("allowed_origin"),
		DictionaryConfigPath: v.GetString("dictionary_config_path"),
	}
	if len(cfg.KafkaQueues) == 0 {
		cfg.KafkaQueues = defaultQueues
	}

	return cfg, nil
}

// AllowedOrigins splits the ALLOWED_ORIGIN value on commas so the CORS
// middleware can carry an actual allow-list rather than a single
// origin; a lone "*" is preserved as a wildcard.
func (c *Config) AllowedOrigins() []string {
	if c.AllowedOrigin == "" {
		return []string{"*"}
	}
	parts := strings.Split(c.AllowedOrigin, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// DictionaryCodeEntry describes one recognized dictionary code: the code
// itself, which is appended as-is as the trailing index-name segment, and
// a free-text description.
type DictionaryCodeEntry struct {
	Code        string `yaml:"code"`
	Description string `yaml:"description"`
}

// DictionaryConfig is the on-disk table of recognized dictionary
// codes.
type DictionaryConfig struct {
	Codes []DictionaryCodeEntry `yaml:"codes"`
}

// LoadDictionaryConfig reads the optional dictionary-code table from
// path; an empty path (the default) yields an empty, valid configuration
// so a deployment that never appends a dictionary-code segment to its
// index names doesn't need to supply a file.
func LoadDictionaryConfig(path string) (*DictionaryConfig, error) {
	if path == "" {
		return &DictionaryConfig{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading dictionary config: %w", err)
	}
	var cfg DictionaryConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal dictionary config: %w", err)
	}
	return &cfg, nil
}

// Known reports whether code is a recognized dictionary code; used to
// validate the optional dictionary_code query parameter before it's
// appended to an index name. A deployment that never loaded a table (the
// default, empty-path case) has nothing to validate against, so every code
// passes through unchecked rather than being rejected outright.
func (c *DictionaryConfig) Known(code string) bool {
	if code == "" || len(c.Codes) == 0 {
		return true
	}
	for _, e := range c.Codes {
		if e.Code == code {
			return true
		}
	}
	return false
}
