package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7878", cfg.Port)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, "http://localhost:9200", cfg.OpensearchURL)
	assert.Equal(t, []string{"browser", "form", "process", "window", "menu_item", "menu_tree", "role"}, cfg.KafkaQueues)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("KAFKA_ENABLED", "N")
	t.Setenv("KAFKA_QUEUES", "window  role")
	t.Setenv("OPENSEARCH_URL", "http://search:9200")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"window", "role"}, cfg.KafkaQueues, "queues split on whitespace")
	assert.Equal(t, "http://search:9200", cfg.OpensearchURL)
}

func TestLoad_KafkaEnabledIsCaseInsensitiveY(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "y")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.KafkaEnabled)
}

func TestAllowedOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, (&Config{}).AllowedOrigins())
	assert.Equal(t, []string{"*"}, (&Config{AllowedOrigin: "*"}).AllowedOrigins())
	assert.Equal(t,
		[]string{"https://a.example", "https://b.example"},
		(&Config{AllowedOrigin: "https://a.example, https://b.example"}).AllowedOrigins(),
	)
}

func TestLoadDictionaryConfig_EmptyPathIsValid(t *testing.T) {
	cfg, err := LoadDictionaryConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Codes)
	assert.True(t, cfg.Known("anything"), "an unloaded table validates nothing")
}

func TestLoadDictionaryConfig_ReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("codes:\n  - code: ad\n    description: application dictionary\n"), 0o600))

	cfg, err := LoadDictionaryConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Codes, 1)

	assert.True(t, cfg.Known(""))
	assert.True(t, cfg.Known("ad"))
	assert.False(t, cfg.Known("unknown"))
}
