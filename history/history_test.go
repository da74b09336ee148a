package history

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spetersoncode/citydesk/session"
)

func TestAppend(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		city string
		want []string
	}{
		{"empty", nil, "tokyo", []string{"tokyo"}},
		{"distinct", []string{"tokyo"}, "london", []string{"tokyo", "london"}},
		{"consecutive repeat collapses", []string{"tokyo"}, "tokyo", []string{"tokyo"}},
		{"non-adjacent repeat kept", []string{"tokyo", "london"}, "tokyo", []string{"tokyo", "london", "tokyo"}},
		{
			"sixth distinct evicts oldest",
			[]string{"a", "b", "c", "d", "e"}, "f",
			[]string{"b", "c", "d", "e", "f"},
		},
		{
			"repeat at capacity is a no-op",
			[]string{"a", "b", "c", "d", "e"}, "e",
			[]string{"a", "b", "c", "d", "e"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Append(tt.in, tt.city))
		})
	}
}

func TestAppend_DoesNotMutateInput(t *testing.T) {
	in := make([]string, 2, 10)
	in[0], in[1] = "a", "b"
	out := Append(in, "c")
	out[0] = "changed"

	assert.Equal(t, []string{"a", "b"}, in)
	assert.Equal(t, "", in[:3][2], "backing array untouched")
}

func TestAppend_NeverExceedsCapacity(t *testing.T) {
	var h []string
	for i := 0; i < 50; i++ {
		h = Append(h, fmt.Sprint("city", i%7))
		require.LessOrEqual(t, len(h), Capacity)
	}
	assert.Equal(t, []string{"city3", "city4", "city5", "city6", "city0"}, h)
}

func TestRecordAndRecent(t *testing.T) {
	s := session.New(nil)
	session.Init(s)

	assert.Empty(t, Recent(s))
	Record(s, "sydney")
	Record(s, "sydney")
	Record(s, "tokyo")

	assert.Equal(t, []string{"sydney", "tokyo"}, Recent(s))
}

func TestRecord_ConcurrentAppendsKeepInvariant(t *testing.T) {
	s := session.New(nil)
	session.Init(s)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			Record(s, fmt.Sprint("city", i))
		}(i)
	}
	wg.Wait()

	h := Recent(s)
	assert.Len(t, h, Capacity)
	seen := map[string]bool{}
	for _, c := range h {
		assert.False(t, seen[c], "distinct appends never duplicate")
		seen[c] = true
	}
}

func TestRecord_NilSessionPanics(t *testing.T) {
	assert.Panics(t, func() { Record(nil, "tokyo") })
}
