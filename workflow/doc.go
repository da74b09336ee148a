// Package workflow composes steps that share one session store.
//
// A Chain runs steps in order; a Parallel runs them concurrently over the
// same store, relying on the store's per-key critical section for safety.
// Guarded wraps a step with a pre-invocation filter chain so intercepted
// input never reaches the step.
package workflow
