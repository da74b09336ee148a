package citydesk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleConstants(t *testing.T) {
	assert.Equal(t, Role("user"), RoleUser)
	assert.Equal(t, Role("assistant"), RoleAssistant)
	assert.Equal(t, Role("system"), RoleSystem)
	assert.Equal(t, Role("tool"), RoleTool)
}

func TestNewUserMessage(t *testing.T) {
	m := NewUserMessage("weather in tokyo?")
	assert.Equal(t, RoleUser, m.Role)
	assert.Equal(t, "weather in tokyo?", m.Content)
	assert.True(t, strings.HasPrefix(m.ID, "msg-"))
	assert.NotEqual(t, m.ID, NewUserMessage("x").ID)
}

func TestMessageIsProse(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{"user", Message{Role: RoleUser}, true},
		{"assistant text", Message{Role: RoleAssistant, Content: "hi"}, true},
		{"assistant tool call", Message{Role: RoleAssistant, ToolCalls: []ToolCall{{Name: "get_weather"}}}, false},
		{"tool result", NewToolResultMessage(ToolResult{ToolCallID: "1"}), false},
		{"system", Message{Role: RoleSystem, Content: "rules"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.msg.IsProse())
		})
	}
}

func TestResponseHasToolCalls(t *testing.T) {
	var nilResp *Response
	assert.False(t, nilResp.HasToolCalls())
	assert.False(t, (&Response{Content: "done"}).HasToolCalls())
	assert.True(t, (&Response{ToolCalls: []ToolCall{{ID: "1"}}}).HasToolCalls())
}

func TestUsageAdd(t *testing.T) {
	u := Usage{InputTokens: 10, OutputTokens: 2}.Add(Usage{InputTokens: 5, OutputTokens: 1})
	assert.Equal(t, Usage{InputTokens: 15, OutputTokens: 3}, u)
}
