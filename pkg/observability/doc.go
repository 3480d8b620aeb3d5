/*
Package observability provides tools for monitoring the authflow engine.

It turns driver lifecycle events into Prometheus metrics and structured
audit logs. Both are exposed as domain.LifecycleHooks and can be combined
with domain.ComposeHooks.
*/
package observability
