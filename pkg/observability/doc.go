/*
Package observability turns engine lifecycle events into Prometheus metrics and
structured log lines.

Both are exposed as domain.LifecycleHooks, so they can be combined with
LifecycleHooks.Merge and passed to civicflow.WithLifecycleHooks.
*/
package observability
