package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudbeacon/driftlog/pkg/types"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Workers)
	assert.Equal(t, 300, cfg.UnitTimeoutSeconds)
	assert.Equal(t, "driftlog.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, AllServices, cfg.Services)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
accounts:
  - id: "123456789012"
    role: "inventory-reader"
    name: "prod"
regions:
  - eu-west-1
  - us-east-1
services:
  - ec2
  - rds
database:
  path: /tmp/inventory.db
workers: 4
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Accounts, 1)
	assert.Equal(t, "123456789012", cfg.Accounts[0].ID)
	assert.Equal(t, "inventory-reader", cfg.Accounts[0].Role)
	assert.Equal(t, []string{"eu-west-1", "us-east-1"}, cfg.Regions)
	assert.Equal(t, []string{"ec2", "rds"}, cfg.Services)
	assert.Equal(t, "/tmp/inventory.db", cfg.Database.Path)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := Config{
		Accounts: []types.Account{{ID: "123456789012", Role: "reader"}},
		Regions:  []string{"eu-west-1"},
		Services: []string{"ec2", "vpc_events"},
		Workers:  10,
	}
	assert.NoError(t, valid.Validate())

	noAccounts := valid
	noAccounts.Accounts = nil
	assert.Error(t, noAccounts.Validate())

	noRole := valid
	noRole.Accounts = []types.Account{{ID: "123456789012"}}
	assert.Error(t, noRole.Validate())

	noRegions := valid
	noRegions.Regions = nil
	assert.Error(t, noRegions.Validate())

	badWorkers := valid
	badWorkers.Workers = 0
	assert.Error(t, badWorkers.Validate())

	badService := valid
	badService.Services = []string{"dynamodb"}
	assert.Error(t, badService.Validate())
}
