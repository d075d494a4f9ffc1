/*
Package config loads the strato daemon configuration.

Configuration is a single YAML file layered over compiled-in defaults, so a
missing file or an empty section always yields a runnable daemon. Durations
use Go syntax ("2s", "3m"). ToScheduler converts the file representation into
the scheduler's runtime Config; policy constraint declarations are wired into
the policy engine by the daemon entrypoint.
*/
package config
