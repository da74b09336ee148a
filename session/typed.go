package session

import "encoding/json"

// Get reads key as a T. Values that went through a JSON round trip (for
// example after Reload) are converted back to T. The second result is false
// if the key is absent or cannot be represented as T.
func Get[T any](s *Store, key string) (T, bool) {
	v, ok := must(s).Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	return as[T](v)
}

// Update applies fn to the current T under key atomically and stores the
// result. An absent or unconvertible value is passed to fn as the zero T.
func Update[T any](s *Store, key string, fn func(T) T) T {
	next := must(s).Update(key, func(cur any, ok bool) any {
		var v T
		if ok {
			v, _ = as[T](cur)
		}
		return fn(v)
	})
	return next.(T)
}

func as[T any](v any) (T, bool) {
	if t, ok := v.(T); ok {
		return t, true
	}
	var out T
	raw, err := json.Marshal(v)
	if err != nil {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false
	}
	return out, true
}

func must(s *Store) *Store {
	if s == nil {
		panic("session: nil store")
	}
	return s
}
