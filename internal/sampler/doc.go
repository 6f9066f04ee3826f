// Package sampler implements a low-overhead statistical call-stack sampler.
//
// A single background timer goroutine ticks at a fixed interval and hands a
// broadcast job to a deferred scheduler. The broadcast walks the registry of
// profiled workers and raises a per-worker sample request flag. Each worker
// polls its own flag at safe points (Poll) and captures its own stack into a
// bounded per-worker trace buffer, which a consumer later drains between
// window indices.
//
// Go has no asynchronous per-thread signals, so delivery is cooperative: a
// worker that never reaches a safe point is never sampled, and tick-to-capture
// latency depends on how often the worker polls. Timing guarantees are
// therefore approximate rather than interrupt-precise.
//
// All cross-worker state is limited to the registry, guarded by a mutex that
// the broadcast path only ever try-locks; everything else is owned by exactly
// one goroutine and published through atomics.
package sampler
