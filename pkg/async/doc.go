// Package async provides safe concurrent execution primitives for background tasks.
//
// # Overview
//
// This package handles goroutine lifecycle management with panic recovery, timeout
// enforcement, context cancellation, and error collection.
//
// # Key Functions
//
// SafeGo: Execute function in goroutine with safety features
//
//	async.SafeGo(ctx, 30*time.Second, "compile module", func(ctx context.Context) error {
//		// Task code with automatic panic recovery and timeout
//		return compileModule(ctx)
//	})
//
// WorkerPool: Managed pool of concurrent workers
//
//	pool := async.NewWorkerPool(ctx, 10, "cache warming", 30*time.Second)
//	defer pool.Shutdown(5 * time.Second)
//
//	pool.Submit(func(ctx context.Context) error {
//		return compileModule(ctx)
//	})
//
// Batch: Concurrent batch processing
//
//	errs := async.Batch(ctx, items, 5, "process items", 30*time.Second, func(ctx context.Context, item Item) error {
//		return processItem(ctx, item)
//	})
//
// BatchWithProgress is Batch plus a completed/total callback, used for cache
// warming on startup so a large schema store logs progress instead of going
// silent until every table is warmed:
//
//	errs := async.BatchWithProgress(ctx, items, 5, "warm cache", 30*time.Second,
//		func(ctx context.Context, item Item) error { return processItem(ctx, item) },
//		func(completed, total int) { log.Printf("%d/%d", completed, total) })
//
// # Features
//
// Panic Recovery: Captures panics with stack traces
// Timeout Enforcement: Per-task timeouts
// Context Cancellation: Respects context cancellation
// Error Collection: Non-blocking error channels
// Graceful Shutdown: Worker draining
//
// # Use Cases
//
// Batch recompilation of registered schemas after a proto source change,
// warming the compiled-table cache across many schemas at startup.
//
// # Related Packages
//
//   - pkg/storage: schemas recompiled via WorkerPool land here
package async
