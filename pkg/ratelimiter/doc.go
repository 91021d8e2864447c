// Package ratelimiter implements a token bucket limiter with pluggable
// storage. RedisStore shares buckets across instances; MemoryStore keeps
// them in-process for single-node and test setups.
//
// A bucket starts full at Capacity tokens and regains RefillRate tokens
// every RefillInterval. A request that finds too few tokens is denied and
// consumes nothing.
package ratelimiter
