/*
Package observability turns engine lifecycle events into Prometheus metrics.

Metrics.Hooks returns a domain.LifecycleHooks value that can be passed to the
engine with WithLifecycleHooks and merged with any other hooks, such as the
debug logging hooks of the CLI.
*/
package observability
