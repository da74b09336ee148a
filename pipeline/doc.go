// Package pipeline assembles the city workflows.
//
// Direct is model-free: it resolves the city named in the pending input,
// looks up weather and time in parallel, and combines them. The other
// topologies drive agents over a ChatProvider and share state through the
// session under fixed output keys.
package pipeline
