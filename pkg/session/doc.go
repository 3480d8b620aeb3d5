/*
Package session implements run management and persistence orchestration.

A simulation driver assumes a single owner. When runs are persisted and
advanced by several goroutines or replicas (HTTP handlers, CLI resumes), the
Manager serializes every load-tick-save cycle per run ID, combining a local
mutex with an optional distributed lock.
*/
package session
