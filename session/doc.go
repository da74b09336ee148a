// Package session holds the mutable state that travels with one
// conversation through a pipeline.
//
// A [Store] is a thread-safe key/value cache with lazily applied defaults
// ([Store.GetOrInit]) and an atomic read-modify-write primitive
// ([Store.Update]) used for fields that parallel steps append to. Stores are
// persisted through an [Adapter]: [MemoryAdapter] for tests and short-lived
// processes, or a [SQLiteDB] for sessions that must survive restarts.
//
// The typed fields the city agents rely on (temperature unit, city history,
// safety metrics, last response) are declared in state.go. A [Manager] owns
// the stores of many sessions and mints ULID session identifiers.
//
// Every domain operation takes the *Store explicitly. Passing a nil store is
// a programming error and panics.
package session
