package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/citydesk"
)

type cityArgs struct {
	City string `json:"city" desc:"City name" required:"true"`
}

type unitArgs struct {
	Unit string `json:"unit" enum:"celsius,fahrenheit" required:"true"`
}

func TestRegistryAdd(t *testing.T) {
	t.Run("registers tools with Func", func(t *testing.T) {
		registry := NewRegistry().Add(
			Func("get_weather", "Get weather", func(ctx context.Context, args cityArgs) (string, error) {
				return "sunny in " + args.City, nil
			}),
			Func("set_unit", "Set unit", func(ctx context.Context, args unitArgs) (string, error) {
				return args.Unit, nil
			}),
		)

		assert.Equal(t, 2, registry.Len())
		assert.Equal(t, []string{"get_weather", "set_unit"}, registry.Names())

		tool, ok := registry.GetTool("get_weather")
		require.True(t, ok)
		assert.Equal(t, "Get weather", tool.Description)

		var schema map[string]any
		require.NoError(t, json.Unmarshal(tool.Parameters, &schema))
		assert.Equal(t, []any{"city"}, schema["required"])

		_, ok = registry.Get("set_unit")
		assert.True(t, ok)
	})

	t.Run("panics on duplicate tool name", func(t *testing.T) {
		assert.Panics(t, func() {
			reg := Func("dupe", "First", func(ctx context.Context, args cityArgs) (string, error) { return "", nil })
			NewRegistry().Add(reg, reg)
		})
	})

	t.Run("Register reports duplicates", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(ai.Tool{Name: "a"}, nil))
		err := r.Register(ai.Tool{Name: "a"}, nil)
		var dup *ErrToolAlreadyRegistered
		assert.ErrorAs(t, err, &dup)
	})
}

func TestToolsSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		r.MustRegister(ai.Tool{Name: name}, nil)
	}
	tools := r.Tools()
	require.Len(t, tools, 3)
	assert.Equal(t, "alpha", tools[0].Name)
	assert.Equal(t, "zeta", tools[2].Name)
}

func TestExecute(t *testing.T) {
	registry := NewRegistry().Add(
		Func("echo", "Echo", func(ctx context.Context, args cityArgs) (string, error) {
			return "got " + args.City, nil
		}),
		Func("fail", "Fail", func(ctx context.Context, args cityArgs) (string, error) {
			return "", errors.New("boom")
		}),
		Func("structured", "Structured failure", func(ctx context.Context, args cityArgs) (string, error) {
			return "", &ResultError{Content: `{"status":"error"}`, Err: errors.New("not found")}
		}),
	)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		res, err := registry.Execute(ctx, ai.ToolCall{ID: "c1", Name: "echo", Arguments: `{"city":"tokyo"}`})
		require.NoError(t, err)
		assert.Equal(t, ai.ToolResult{ToolCallID: "c1", Name: "echo", Content: "got tokyo"}, res)
	})

	t.Run("empty arguments decode as zero value", func(t *testing.T) {
		res, err := registry.Execute(ctx, ai.ToolCall{ID: "c2", Name: "echo"})
		require.NoError(t, err)
		assert.Equal(t, "got ", res.Content)
	})

	t.Run("handler error becomes error result", func(t *testing.T) {
		res, err := registry.Execute(ctx, ai.ToolCall{ID: "c3", Name: "fail", Arguments: `{}`})
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, "boom", res.Content)
	})

	t.Run("result error sends payload verbatim", func(t *testing.T) {
		res, err := registry.Execute(ctx, ai.ToolCall{ID: "c4", Name: "structured", Arguments: `{}`})
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, `{"status":"error"}`, res.Content)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		res, err := registry.Execute(ctx, ai.ToolCall{ID: "c5", Name: "echo", Arguments: `{bad`})
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content, "invalid arguments")
	})

	t.Run("unknown tool", func(t *testing.T) {
		_, err := registry.Execute(ctx, ai.ToolCall{ID: "c6", Name: "nope"})
		var nf *ErrToolNotFound
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "nope", nf.Name)
	})
}

func TestWithHandler(t *testing.T) {
	schema := json.RawMessage(`{"type":"object"}`)
	reg := WithHandler("custom", "Custom", schema, func(ctx context.Context, call ai.ToolCall) (string, error) {
		return call.ID, nil
	})

	res, err := NewRegistry().Add(reg).Execute(context.Background(), ai.ToolCall{ID: "x", Name: "custom"})
	require.NoError(t, err)
	assert.Equal(t, "x", res.Content)
	assert.Equal(t, schema, reg.Tool.Parameters)
}
