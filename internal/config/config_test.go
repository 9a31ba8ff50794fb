package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendsense/spendsense/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Backend)
	assert.Equal(t, "spendsense", cfg.Dataset)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, 100, cfg.QueueSize)
	assert.Empty(t, cfg.Windows)
	assert.Empty(t, cfg.CatalogURI)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `backend: bigquery
project_id: acme-prod
dataset: signals
worker_count: 8
windows:
  - 30d
  - 90d
catalog_uri: gs://acme-catalogs/current.json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "bigquery", cfg.Backend)
	assert.Equal(t, "acme-prod", cfg.ProjectID)
	assert.Equal(t, "signals", cfg.Dataset)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.Equal(t, []string{"30d", "90d"}, cfg.Windows)
	assert.Equal(t, "gs://acme-catalogs/current.json", cfg.CatalogURI)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SPENDSENSE_BACKEND", "bigquery")
	t.Setenv("SPENDSENSE_PROJECT_ID", "env-project")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "bigquery", cfg.Backend)
	assert.Equal(t, "env-project", cfg.ProjectID)
}

func TestTimeWindows(t *testing.T) {
	cfg := Config{Windows: []string{"30d", "180d"}}
	assert.Equal(t, []domain.TimeWindow{domain.Window30d, domain.Window180d}, cfg.TimeWindows())

	empty := Config{}
	assert.Equal(t, domain.AllWindows(), empty.TimeWindows())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "bigquery without project",
			cfg:  Config{Backend: "bigquery", Dataset: "d", WorkerCount: 1, QueueSize: 1},

			wantErr: "requires project_id",
		},
		{
			name:    "unknown backend",
			cfg:     Config{Backend: "redis", WorkerCount: 1, QueueSize: 1},
			wantErr: "unknown backend",
		},
		{
			name:    "zero workers",
			cfg:     Config{Backend: "memory", WorkerCount: 0, QueueSize: 1},
			wantErr: "worker_count",
		},
		{
			name:    "bad window",
			cfg:     Config{Backend: "memory", WorkerCount: 1, QueueSize: 1, Windows: []string{"7d"}},
			wantErr: "unknown window",
		},
		{
			name: "valid memory",
			cfg:  Config{Backend: "memory", WorkerCount: 2, QueueSize: 10, Windows: []string{"180d"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
