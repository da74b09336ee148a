// Package openai implements citydesk.ChatProvider over OpenAI chat
// completions, including Azure OpenAI deployments.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	ai "github.com/spetersoncode/citydesk"
)

// DefaultModel is used when neither the client nor the request names one.
const DefaultModel = "gpt-4o"

// DefaultAzureAPIVersion is the Azure OpenAI API version used when none is
// configured.
const DefaultAzureAPIVersion = "2024-06-01"

// Client wraps the OpenAI SDK.
type Client struct {
	client *openai.Client
	model  string
}

// ClientOption configures the OpenAI client.
type ClientOption func(*Client)

// WithModel sets the default model for requests.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// New creates a client. An empty apiKey falls back to OPENAI_API_KEY.
func New(apiKey string, opts ...ClientOption) *Client {
	var reqOpts []option.RequestOption
	if apiKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(apiKey))
	}
	return newClient(reqOpts, opts)
}

// NewAzure creates a client for an Azure OpenAI deployment. The deployment
// name is the default model. With an empty apiKey the client authenticates
// through azidentity's default credential chain.
func NewAzure(endpoint, deployment, apiVersion, apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey != "" {
		return newAzure(endpoint, deployment, apiVersion, azure.WithAPIKey(apiKey), opts)
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("openai: azure credential: %w", err)
	}
	return NewAzureWithCredential(endpoint, deployment, apiVersion, cred, opts...)
}

// NewAzureWithCredential creates an Azure OpenAI client authenticating with
// cred, such as a managed identity.
func NewAzureWithCredential(endpoint, deployment, apiVersion string, cred azcore.TokenCredential, opts ...ClientOption) (*Client, error) {
	if cred == nil {
		return nil, errors.New("openai: azure credential is required")
	}
	return newAzure(endpoint, deployment, apiVersion, azure.WithTokenCredential(cred), opts)
}

func newAzure(endpoint, deployment, apiVersion string, auth option.RequestOption, opts []ClientOption) (*Client, error) {
	if endpoint == "" {
		return nil, errors.New("openai: azure endpoint is required")
	}
	if apiVersion == "" {
		apiVersion = DefaultAzureAPIVersion
	}
	reqOpts := []option.RequestOption{azure.WithEndpoint(endpoint, apiVersion), auth}
	return newClient(reqOpts, append([]ClientOption{WithModel(deployment)}, opts...)), nil
}

func newClient(reqOpts []option.RequestOption, opts []ClientOption) *Client {
	client := openai.NewClient(reqOpts...)
	c := &Client{client: &client, model: DefaultModel}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chat sends a conversation and returns a complete response.
func (c *Client) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	resp, err := c.client.Chat.Completions.New(ctx, c.params(messages, ai.ApplyOptions(opts...)))
	if err != nil {
		return nil, wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, ai.NewTransientError("openai: response has no choices", 0, nil)
	}

	choice := resp.Choices[0]
	return &ai.Response{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: ai.Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
		ToolCalls: extractToolCalls(choice.Message),
	}, nil
}

func (c *Client) params(messages []ai.Message, options *ai.Options) openai.ChatCompletionNewParams {
	model := c.model
	if options.Model != "" {
		model = options.Model
	}

	converted := convertMessages(messages)
	if options.System != "" {
		converted = append([]openai.ChatCompletionMessageParamUnion{openai.SystemMessage(options.System)}, converted...)
	}
	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: converted,
	}
	if options.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(options.MaxTokens))
	}
	if options.Temperature != nil {
		params.Temperature = openai.Float(*options.Temperature)
	}
	if len(options.Tools) > 0 {
		params.Tools = convertTools(options.Tools)
		if options.ToolChoice != "" {
			params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
				OfAuto: openai.String(string(options.ToolChoice)),
			}
		}
	}
	return params
}

func convertMessages(messages []ai.Message) []openai.ChatCompletionMessageParamUnion {
	var result []openai.ChatCompletionMessageParamUnion
	for _, msg := range messages {
		switch msg.Role {
		case ai.RoleAssistant:
			if len(msg.ToolCalls) > 0 {
				toolCalls := make([]openai.ChatCompletionMessageToolCallParam, len(msg.ToolCalls))
				for i, tc := range msg.ToolCalls {
					toolCalls[i] = openai.ChatCompletionMessageToolCallParam{
						ID: tc.ID,
						Function: openai.ChatCompletionMessageToolCallFunctionParam{
							Name:      tc.Name,
							Arguments: tc.Arguments,
						},
					}
				}
				assistant := openai.ChatCompletionAssistantMessageParam{ToolCalls: toolCalls}
				if msg.Content != "" {
					assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					}
				}
				result = append(result, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
			} else if msg.Content != "" {
				result = append(result, openai.AssistantMessage(msg.Content))
			}
		case ai.RoleSystem:
			if msg.Content != "" {
				result = append(result, openai.SystemMessage(msg.Content))
			}
		case ai.RoleTool:
			// One message per tool result.
			for _, tr := range msg.ToolResults {
				result = append(result, openai.ToolMessage(tr.Content, tr.ToolCallID))
			}
		default:
			if msg.Content != "" {
				result = append(result, openai.UserMessage(msg.Content))
			}
		}
	}
	return result
}

func convertTools(tools []ai.Tool) []openai.ChatCompletionToolParam {
	result := make([]openai.ChatCompletionToolParam, len(tools))
	for i, t := range tools {
		var params shared.FunctionParameters
		if len(t.Parameters) > 0 {
			_ = json.Unmarshal(t.Parameters, &params)
		}
		result[i] = openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  params,
			},
		}
	}
	return result
}

func extractToolCalls(msg openai.ChatCompletionMessage) []ai.ToolCall {
	if len(msg.ToolCalls) == 0 {
		return nil
	}
	result := make([]ai.ToolCall, len(msg.ToolCalls))
	for i, tc := range msg.ToolCalls {
		result[i] = ai.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}
	}
	return result
}

// wrapError categorizes API errors by status code. Other errors, such as
// network failures, are returned unchanged.
func wrapError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	return ai.ClassifyStatus(err.Error(), apiErr.StatusCode, err)
}

var _ ai.ChatProvider = (*Client)(nil)
