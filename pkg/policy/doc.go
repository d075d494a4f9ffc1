/*
Package policy implements the policy engine, a hard gate evaluated before any
candidate search.

Constraints are named rules registered on an Engine and evaluated strictly in
registration order; the first violation stops evaluation and surfaces a
human-readable message. Deterministic ordering keeps audit logs reproducible
across identical submissions.

# Built-in Constraints

RequiredLabels demands label key/value pairs on the workload,
ResourceCeiling caps per-workload resource requests, and
AllowedImagePrefixes restricts images to approved registries. Operators
compose these from configuration; custom constraints only need to implement
the two-method Constraint interface.

	engine := policy.NewEngine()
	engine.Register(&policy.RequiredLabels{Labels: map[string]string{"team": "payments"}})

	if _, err := engine.ApplyPolicies(workload); err != nil {
		var v *policy.Violation
		if errors.As(err, &v) {
			// v.Constraint names the failed rule
		}
	}
*/
package policy
