package openai

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/citydesk"
)

func TestConvertMessages(t *testing.T) {
	msgs := convertMessages([]ai.Message{
		{Role: ai.RoleSystem, Content: "sys"},
		{Role: ai.RoleUser, Content: "time in tokyo?"},
		{Role: ai.RoleUser, Content: ""},
		{Role: ai.RoleAssistant, Content: "checking", ToolCalls: []ai.ToolCall{{ID: "c1", Name: "get_current_time", Arguments: `{"city":"tokyo"}`}}},
		{Role: ai.RoleTool, ToolResults: []ai.ToolResult{
			{ToolCallID: "c1", Content: "a"},
			{ToolCallID: "c2", Content: "b"},
		}},
	})

	require.Len(t, msgs, 5)
	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)
	require.NotNil(t, msgs[2].OfAssistant)
	require.Len(t, msgs[2].OfAssistant.ToolCalls, 1)
	assert.Equal(t, "get_current_time", msgs[2].OfAssistant.ToolCalls[0].Function.Name)
	require.NotNil(t, msgs[3].OfTool)
	assert.Equal(t, "c1", msgs[3].OfTool.ToolCallID)
	assert.Equal(t, "c2", msgs[4].OfTool.ToolCallID)
}

func TestParams(t *testing.T) {
	c := New("test-key", WithModel("gpt-test"))
	schema := json.RawMessage(`{"type":"object","properties":{"unit":{"type":"string","enum":["celsius","fahrenheit"]}}}`)

	p := c.params([]ai.Message{ai.NewUserMessage("hi")}, ai.ApplyOptions(
		ai.WithSystem("instructions"),
		ai.WithTools([]ai.Tool{{Name: "update_temperature_preference", Parameters: schema}}),
		ai.WithToolChoice(ai.ToolChoiceAuto),
	))
	assert.Equal(t, "gpt-test", p.Model)
	require.Len(t, p.Messages, 2)
	assert.NotNil(t, p.Messages[0].OfSystem)
	require.Len(t, p.Tools, 1)
	assert.Equal(t, "update_temperature_preference", p.Tools[0].Function.Name)
	assert.Equal(t, "object", p.Tools[0].Function.Parameters["type"])
	assert.Equal(t, "auto", p.ToolChoice.OfAuto.Value)
}

func TestNewAzure(t *testing.T) {
	_, err := NewAzure("", "dep", "", "key")
	assert.Error(t, err)

	c, err := NewAzure("https://example.openai.azure.com", "gpt-4o-deployment", "", "key")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-deployment", c.model)
}

type staticCredential struct{}

func (staticCredential) GetToken(context.Context, policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: "token", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

func TestNewAzureWithCredential(t *testing.T) {
	_, err := NewAzureWithCredential("https://example.openai.azure.com", "dep", "", nil)
	assert.Error(t, err)

	c, err := NewAzureWithCredential("https://example.openai.azure.com", "gpt-4o-deployment", "2024-10-21", staticCredential{})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-deployment", c.model)
}
