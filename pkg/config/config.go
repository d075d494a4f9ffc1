package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stratohq/strato/pkg/autoscaler"
	"github.com/stratohq/strato/pkg/optimizer"
	"github.com/stratohq/strato/pkg/policy"
	"github.com/stratohq/strato/pkg/scheduler"
)

// Config is the on-disk configuration for the strato daemon
type Config struct {
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Optimizer  OptimizerConfig  `yaml:"optimizer"`
	Autoscaler AutoscalerConfig `yaml:"autoscaler"`
	Policies   PoliciesConfig   `yaml:"policies"`
	Runtime    RuntimeConfig    `yaml:"runtime"`
	State      StateConfig      `yaml:"state"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SchedulerConfig tunes the scheduling loops and rebalancing thresholds
type SchedulerConfig struct {
	SchedulingInterval    time.Duration `yaml:"scheduling_interval"`
	MonitoringInterval    time.Duration `yaml:"monitoring_interval"`
	OverloadCPUPercent    float64       `yaml:"overload_cpu_percent"`
	OverloadMemoryPercent float64       `yaml:"overload_memory_percent"`
	ConsolidationPercent  float64       `yaml:"consolidation_percent"`
	StopTimeout           time.Duration `yaml:"stop_timeout"`
}

// OptimizerConfig sets the objective weights
type OptimizerConfig struct {
	BinPacking float64 `yaml:"bin_packing"`
	Headroom   float64 `yaml:"headroom"`
	Affinity   float64 `yaml:"affinity"`
}

// AutoscalerConfig tunes the scaling policy
type AutoscalerConfig struct {
	ScaleUpCPUPercent      float64       `yaml:"scale_up_cpu_percent"`
	ScaleUpMemoryPercent   float64       `yaml:"scale_up_memory_percent"`
	ScaleDownCPUPercent    float64       `yaml:"scale_down_cpu_percent"`
	ScaleDownMemoryPercent float64       `yaml:"scale_down_memory_percent"`
	MinNodes               int           `yaml:"min_nodes"`
	MaxNodes               int           `yaml:"max_nodes"`
	ScaleStep              int           `yaml:"scale_step"`
	Cooldown               time.Duration `yaml:"cooldown"`
	DemandConfidence       float64       `yaml:"demand_confidence"`
}

// PoliciesConfig declares admission constraints. Constraints are applied in
// the order listed here: required labels, resource ceiling, image prefixes.
type PoliciesConfig struct {
	RequiredLabels       map[string]string    `yaml:"required_labels"`
	ResourceCeiling      *ResourceCeilingSpec `yaml:"resource_ceiling"`
	AllowedImagePrefixes []string             `yaml:"allowed_image_prefixes"`
}

// ResourceCeilingSpec caps per-workload resource requests
type ResourceCeilingSpec struct {
	MaxCPUCores  float64 `yaml:"max_cpu_cores"`
	MaxMemoryMB  int64   `yaml:"max_memory_mb"`
	MaxStorageGB int64   `yaml:"max_storage_gb"`
}

// RuntimeConfig selects and configures the container runtime
type RuntimeConfig struct {
	ContainerdAddress string `yaml:"containerd_address"`
	Dev               bool   `yaml:"dev"`
}

// StateConfig configures on-disk checkpointing
type StateConfig struct {
	Dir string `yaml:"dir"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	ListenAddr string        `yaml:"listen_addr"`
	Interval   time.Duration `yaml:"interval"`
}

// LoggingConfig configures structured logging
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the stock configuration
func Default() Config {
	sched := scheduler.DefaultConfig()
	weights := optimizer.DefaultWeights()
	scaling := autoscaler.DefaultPolicy()

	return Config{
		Scheduler: SchedulerConfig{
			SchedulingInterval:    sched.SchedulingInterval,
			MonitoringInterval:    sched.MonitoringInterval,
			OverloadCPUPercent:    sched.OverloadCPUPercent,
			OverloadMemoryPercent: sched.OverloadMemoryPercent,
			ConsolidationPercent:  sched.ConsolidationPercent,
			StopTimeout:           sched.StopTimeout,
		},
		Optimizer: OptimizerConfig{
			BinPacking: weights.BinPacking,
			Headroom:   weights.Headroom,
			Affinity:   weights.Affinity,
		},
		Autoscaler: AutoscalerConfig{
			ScaleUpCPUPercent:      scaling.ScaleUpCPUPercent,
			ScaleUpMemoryPercent:   scaling.ScaleUpMemoryPercent,
			ScaleDownCPUPercent:    scaling.ScaleDownCPUPercent,
			ScaleDownMemoryPercent: scaling.ScaleDownMemoryPercent,
			MinNodes:               scaling.MinNodes,
			MaxNodes:               scaling.MaxNodes,
			ScaleStep:              scaling.ScaleStep,
			Cooldown:               scaling.Cooldown,
			DemandConfidence:       scaling.DemandConfidence,
		},
		Runtime: RuntimeConfig{
			ContainerdAddress: "/run/containerd/containerd.sock",
		},
		State: StateConfig{
			Dir: "/var/lib/strato",
		},
		Metrics: MetricsConfig{
			ListenAddr: ":9090",
			Interval:   15 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations that would misbehave at runtime
func (c Config) Validate() error {
	if c.Scheduler.SchedulingInterval <= 0 {
		return fmt.Errorf("scheduler.scheduling_interval must be positive")
	}
	if c.Scheduler.MonitoringInterval <= 0 {
		return fmt.Errorf("scheduler.monitoring_interval must be positive")
	}
	if c.Scheduler.OverloadCPUPercent <= 0 || c.Scheduler.OverloadCPUPercent > 100 {
		return fmt.Errorf("scheduler.overload_cpu_percent must be in (0, 100]")
	}
	if c.Scheduler.OverloadMemoryPercent <= 0 || c.Scheduler.OverloadMemoryPercent > 100 {
		return fmt.Errorf("scheduler.overload_memory_percent must be in (0, 100]")
	}
	if c.Scheduler.ConsolidationPercent < 0 || c.Scheduler.ConsolidationPercent > 100 {
		return fmt.Errorf("scheduler.consolidation_percent must be in [0, 100]")
	}

	if w := c.Optimizer; w.BinPacking < 0 || w.Headroom < 0 || w.Affinity < 0 {
		return fmt.Errorf("optimizer weights must be non-negative")
	}
	if c.Optimizer.BinPacking+c.Optimizer.Headroom+c.Optimizer.Affinity == 0 {
		return fmt.Errorf("at least one optimizer weight must be positive")
	}

	if c.Autoscaler.MinNodes < 0 {
		return fmt.Errorf("autoscaler.min_nodes must be non-negative")
	}
	if c.Autoscaler.MaxNodes != 0 && c.Autoscaler.MaxNodes < c.Autoscaler.MinNodes {
		return fmt.Errorf("autoscaler.max_nodes must be 0 or >= min_nodes")
	}
	if c.Autoscaler.ScaleStep <= 0 {
		return fmt.Errorf("autoscaler.scale_step must be positive")
	}
	if c.Autoscaler.DemandConfidence < 0 || c.Autoscaler.DemandConfidence > 1 {
		return fmt.Errorf("autoscaler.demand_confidence must be in [0, 1]")
	}

	if cl := c.Policies.ResourceCeiling; cl != nil {
		if cl.MaxCPUCores <= 0 || cl.MaxMemoryMB <= 0 {
			return fmt.Errorf("policies.resource_ceiling requires positive cpu and memory caps")
		}
	}

	return nil
}

// Constraints builds the declared admission constraints in declaration
// order: required labels, resource ceiling, image prefixes.
func (p PoliciesConfig) Constraints() []policy.Constraint {
	var out []policy.Constraint
	if len(p.RequiredLabels) > 0 {
		out = append(out, &policy.RequiredLabels{Labels: p.RequiredLabels})
	}
	if p.ResourceCeiling != nil {
		out = append(out, &policy.ResourceCeiling{
			MaxCPUCores:  p.ResourceCeiling.MaxCPUCores,
			MaxMemoryMB:  p.ResourceCeiling.MaxMemoryMB,
			MaxStorageGB: p.ResourceCeiling.MaxStorageGB,
		})
	}
	if len(p.AllowedImagePrefixes) > 0 {
		out = append(out, &policy.AllowedImagePrefixes{Prefixes: p.AllowedImagePrefixes})
	}
	return out
}

// ToScheduler converts the file representation into the scheduler's runtime
// configuration.
func (c Config) ToScheduler() scheduler.Config {
	return scheduler.Config{
		SchedulingInterval:    c.Scheduler.SchedulingInterval,
		MonitoringInterval:    c.Scheduler.MonitoringInterval,
		OverloadCPUPercent:    c.Scheduler.OverloadCPUPercent,
		OverloadMemoryPercent: c.Scheduler.OverloadMemoryPercent,
		ConsolidationPercent:  c.Scheduler.ConsolidationPercent,
		StopTimeout:           c.Scheduler.StopTimeout,
		Weights: optimizer.Weights{
			BinPacking: c.Optimizer.BinPacking,
			Headroom:   c.Optimizer.Headroom,
			Affinity:   c.Optimizer.Affinity,
		},
		Autoscaling: autoscaler.Policy{
			ScaleUpCPUPercent:      c.Autoscaler.ScaleUpCPUPercent,
			ScaleUpMemoryPercent:   c.Autoscaler.ScaleUpMemoryPercent,
			ScaleDownCPUPercent:    c.Autoscaler.ScaleDownCPUPercent,
			ScaleDownMemoryPercent: c.Autoscaler.ScaleDownMemoryPercent,
			MinNodes:               c.Autoscaler.MinNodes,
			MaxNodes:               c.Autoscaler.MaxNodes,
			ScaleStep:              c.Autoscaler.ScaleStep,
			Cooldown:               c.Autoscaler.Cooldown,
			DemandConfidence:       c.Autoscaler.DemandConfidence,
		},
	}
}
