// Package resource implements the shared resource policy for parse workers.
//
//	┌──────────────────────────────────────────────┐
//	│               resource.Controller            │
//	├──────────────────────┬───────────────────────┤
//	│  Memory budget       │  IO rate limiter      │
//	│  (weighted sem)      │  (token bucket)       │
//	├──────────────────────┼───────────────────────┤
//	│  AcquireMemory       │  AcquireIO            │
//	│  TryAcquireMemory    │  TryAcquireIO         │
//	│  ReleaseMemory       │  RateLimitedReader    │
//	│  MemoryUsage / Peak  │                       │
//	└──────────────────────┴───────────────────────┘
//
// # Memory
//
// The memory budget bounds the bytes materialized into owned records. Arenas
// reserve whole chunks before allocating them and release everything when the
// parse call finishes:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30,
//	})
//
//	if err := rc.AcquireMemory(ctx, 1<<20); err != nil {
//	    return err // wraps ErrMemoryLimitExceeded
//	}
//	defer rc.ReleaseMemory(1 << 20)
//
// # IO
//
// Token bucket limiter for input throughput:
//
//	reader := resource.NewRateLimitedReader(ctx, file, rc)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource
