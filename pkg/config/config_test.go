package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
scheduler:
  scheduling_interval: 5s
  overload_cpu_percent: 90
autoscaler:
  min_nodes: 3
  cooldown: 10m
logging:
  level: debug
  pretty: true
`)

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Scheduler.SchedulingInterval)
	assert.Equal(t, float64(90), cfg.Scheduler.OverloadCPUPercent)
	assert.Equal(t, 3, cfg.Autoscaler.MinNodes)
	assert.Equal(t, 10*time.Minute, cfg.Autoscaler.Cooldown)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Pretty)

	// Untouched sections keep their defaults
	assert.Equal(t, Default().Scheduler.MonitoringInterval, cfg.Scheduler.MonitoringInterval)
	assert.Equal(t, Default().Optimizer, cfg.Optimizer)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "scheduler: [not a map")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"zero scheduling interval", func(c *Config) { c.Scheduler.SchedulingInterval = 0 }, true},
		{"overload cpu over 100", func(c *Config) { c.Scheduler.OverloadCPUPercent = 150 }, true},
		{"negative optimizer weight", func(c *Config) { c.Optimizer.Headroom = -1 }, true},
		{"all weights zero", func(c *Config) {
			c.Optimizer.BinPacking = 0
			c.Optimizer.Headroom = 0
			c.Optimizer.Affinity = 0
		}, true},
		{"max below min nodes", func(c *Config) {
			c.Autoscaler.MinNodes = 5
			c.Autoscaler.MaxNodes = 2
		}, true},
		{"unbounded max nodes", func(c *Config) {
			c.Autoscaler.MinNodes = 5
			c.Autoscaler.MaxNodes = 0
		}, false},
		{"zero scale step", func(c *Config) { c.Autoscaler.ScaleStep = 0 }, true},
		{"confidence out of range", func(c *Config) { c.Autoscaler.DemandConfidence = 1.5 }, true},
		{"ceiling without caps", func(c *Config) {
			c.Policies.ResourceCeiling = &ResourceCeilingSpec{}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToScheduler(t *testing.T) {
	cfg := Default()
	cfg.Scheduler.OverloadCPUPercent = 75
	cfg.Optimizer.BinPacking = 0.9
	cfg.Autoscaler.MinNodes = 2

	sc := cfg.ToScheduler()
	assert.Equal(t, float64(75), sc.OverloadCPUPercent)
	assert.Equal(t, 0.9, sc.Weights.BinPacking)
	assert.Equal(t, 2, sc.Autoscaling.MinNodes)
}

func TestConstraints(t *testing.T) {
	p := PoliciesConfig{}
	assert.Empty(t, p.Constraints())

	p = PoliciesConfig{
		RequiredLabels:       map[string]string{"team": ""},
		ResourceCeiling:      &ResourceCeilingSpec{MaxCPUCores: 8, MaxMemoryMB: 16384},
		AllowedImagePrefixes: []string{"registry.internal/"},
	}
	constraints := p.Constraints()
	assert.Len(t, constraints, 3)
	assert.Equal(t, "required-labels", constraints[0].Name())
	assert.Equal(t, "resource-ceiling", constraints[1].Name())
	assert.Equal(t, "allowed-image-prefixes", constraints[2].Name())
}
