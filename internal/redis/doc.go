// Package redis wraps the shared Redis client and the per-user rate
// limiter applied to OAuth initiation.
package redis
