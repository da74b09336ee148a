package anthropic

import (
	"encoding/json"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/citydesk"
)

func TestConvertMessages(t *testing.T) {
	msgs, system := convertMessages([]ai.Message{
		{Role: ai.RoleSystem, Content: "be brief"},
		{Role: ai.RoleSystem, Content: ""},
		{Role: ai.RoleUser, Content: "weather in paris?"},
		{Role: ai.RoleUser, Content: ""},
		{Role: ai.RoleAssistant, ToolCalls: []ai.ToolCall{{ID: "t1", Name: "get_weather", Arguments: `{"city":"paris"}`}}},
		{Role: ai.RoleTool, ToolResults: []ai.ToolResult{{ToolCallID: "t1", Content: `{"status":"error"}`, IsError: true}}},
		{Role: ai.RoleAssistant, Content: "no data"},
	})

	require.Len(t, system, 1)
	assert.Equal(t, "be brief", system[0].Text)

	require.Len(t, msgs, 4)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[1].Role)
	require.Len(t, msgs[1].Content, 1)
	require.NotNil(t, msgs[1].Content[0].OfToolUse)
	assert.Equal(t, "get_weather", msgs[1].Content[0].OfToolUse.Name)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[2].Role)
	require.NotNil(t, msgs[2].Content[0].OfToolResult)
	assert.Equal(t, "t1", msgs[2].Content[0].OfToolResult.ToolUseID)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[3].Role)
}

func TestParams(t *testing.T) {
	c := New("test-key", WithModel("claude-test"))
	schema := json.RawMessage(`{"type":"object","properties":{"city":{"type":"string"}},"required":["city"]}`)

	p := c.params([]ai.Message{ai.NewUserMessage("hi")}, ai.ApplyOptions(
		ai.WithSystem("instructions"),
		ai.WithTools([]ai.Tool{{Name: "get_weather", Description: "d", Parameters: schema}}),
		ai.WithToolChoice(ai.ToolChoiceRequired),
	))

	assert.Equal(t, anthropic.Model("claude-test"), p.Model)
	assert.Equal(t, int64(4096), p.MaxTokens)
	require.Len(t, p.System, 1)
	assert.Equal(t, "instructions", p.System[0].Text)
	require.Len(t, p.Tools, 1)
	assert.Equal(t, []string{"city"}, p.Tools[0].OfTool.InputSchema.Required)
	assert.NotNil(t, p.ToolChoice.OfAny)

	p = c.params(nil, ai.ApplyOptions(ai.WithModel("override"), ai.WithMaxTokens(10)))
	assert.Equal(t, anthropic.Model("override"), p.Model)
	assert.Equal(t, int64(10), p.MaxTokens)
	assert.Empty(t, p.Tools)
}
