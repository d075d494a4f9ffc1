package policy

import (
	"fmt"
	"strings"
	"sync"

	"github.com/stratohq/strato/pkg/types"
)

// Constraint is a named administrator-defined rule evaluated against a
// workload before placement proceeds.
type Constraint interface {
	// Name identifies the constraint in audit logs and violations
	Name() string

	// Evaluate returns a human-readable violation message, or "" when the
	// workload satisfies the constraint
	Evaluate(w *types.Workload) string
}

// Violation reports the first constraint a workload failed
type Violation struct {
	Constraint string
	Message    string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("policy %q violated: %s", v.Constraint, v.Message)
}

// Check is the record of a successful policy pass
type Check struct {
	Evaluated []string // Constraint names, in evaluation order
}

// Engine evaluates constraints in declaration order and fails fast on the
// first violation, so audit logs are reproducible across runs.
type Engine struct {
	mu          sync.RWMutex
	constraints []Constraint
}

// NewEngine creates a policy engine with no constraints; every workload
// passes until constraints are registered.
func NewEngine() *Engine {
	return &Engine{}
}

// Register appends a constraint. Evaluation order is registration order.
func (e *Engine) Register(c Constraint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.constraints = append(e.constraints, c)
}

// ApplyPolicies evaluates every registered constraint against the workload.
// Side-effect free; purely a gate.
func (e *Engine) ApplyPolicies(w *types.Workload) (*Check, error) {
	e.mu.RLock()
	constraints := make([]Constraint, len(e.constraints))
	copy(constraints, e.constraints)
	e.mu.RUnlock()

	check := &Check{}
	for _, c := range constraints {
		check.Evaluated = append(check.Evaluated, c.Name())
		if msg := c.Evaluate(w); msg != "" {
			return nil, &Violation{Constraint: c.Name(), Message: msg}
		}
	}
	return check, nil
}

// ConstraintCount returns the number of registered constraints
func (e *Engine) ConstraintCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.constraints)
}

// RequiredLabels demands that every listed label key/value pair is present
// on the workload.
type RequiredLabels struct {
	ConstraintName string
	Labels         map[string]string
}

func (c *RequiredLabels) Name() string {
	if c.ConstraintName != "" {
		return c.ConstraintName
	}
	return "required-labels"
}

func (c *RequiredLabels) Evaluate(w *types.Workload) string {
	for key, want := range c.Labels {
		got, ok := w.Spec.Labels[key]
		if !ok {
			return fmt.Sprintf("workload %s missing required label %q", w.Spec.ID, key)
		}
		if want != "" && got != want {
			return fmt.Sprintf("workload %s label %q is %q, want %q", w.Spec.ID, key, got, want)
		}
	}
	return ""
}

// ResourceCeiling caps the resources a single workload may request
type ResourceCeiling struct {
	ConstraintName string
	MaxCPUCores    float64
	MaxMemoryMB    int64
	MaxStorageGB   int64
}

func (c *ResourceCeiling) Name() string {
	if c.ConstraintName != "" {
		return c.ConstraintName
	}
	return "resource-ceiling"
}

func (c *ResourceCeiling) Evaluate(w *types.Workload) string {
	req := w.Spec.Resources
	if c.MaxCPUCores > 0 && req.CPUCores > c.MaxCPUCores {
		return fmt.Sprintf("workload %s requests %.2f cpu cores, ceiling is %.2f", w.Spec.ID, req.CPUCores, c.MaxCPUCores)
	}
	if c.MaxMemoryMB > 0 && req.MemoryMB > c.MaxMemoryMB {
		return fmt.Sprintf("workload %s requests %d MB memory, ceiling is %d MB", w.Spec.ID, req.MemoryMB, c.MaxMemoryMB)
	}
	if c.MaxStorageGB > 0 && req.StorageGB > c.MaxStorageGB {
		return fmt.Sprintf("workload %s requests %d GB storage, ceiling is %d GB", w.Spec.ID, req.StorageGB, c.MaxStorageGB)
	}
	return ""
}

// AllowedImagePrefixes restricts container images to approved registries
type AllowedImagePrefixes struct {
	ConstraintName string
	Prefixes       []string
}

func (c *AllowedImagePrefixes) Name() string {
	if c.ConstraintName != "" {
		return c.ConstraintName
	}
	return "allowed-image-prefixes"
}

func (c *AllowedImagePrefixes) Evaluate(w *types.Workload) string {
	if len(c.Prefixes) == 0 {
		return ""
	}
	for _, prefix := range c.Prefixes {
		if strings.HasPrefix(w.Spec.Image, prefix) {
			return ""
		}
	}
	return fmt.Sprintf("image %q is not from an approved registry", w.Spec.Image)
}
