// Package openai adapts the OpenAI chat completion API to the
// langchaingo llms.Model interface, with streaming and tool calling.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
)

var (
	ErrNotSetAuth    = errors.New("OpenAI API key not set")
	ErrEmptyResponse = errors.New("no response")
)

// LLM is a client for the OpenAI chat completion API.
type LLM struct {
	client           *goopenai.Client
	model            ModelName
	CallbacksHandler callbacks.Handler
}

var _ llms.Model = (*LLM)(nil)

// New returns a new OpenAI LLM client.
//
// Authentication options:
// 1. WithAPIKey(apiKey) - pass API key directly
// 2. Set OPENAI_API_KEY environment variable
//
// Example:
//
//	llm, err := openai.New(
//		openai.WithAPIKey("your-api-key"),
//		openai.WithModel(openai.ModelNameGPT4oMini),
//	)
func New(opts ...Option) (*LLM, error) {
	options := &options{
		apiKey:    getEnvOrDefault("OPENAI_API_KEY", ""),
		modelName: ModelNameGPT4oMini,
		baseURL:   getEnvOrDefault("OPENAI_BASE_URL", ""),
	}

	for _, opt := range opts {
		opt(options)
	}

	if options.apiKey == "" {
		return nil, fmt.Errorf(`%w
You can pass auth info by using openai.New(openai.WithAPIKey("{API Key}"))
or
export OPENAI_API_KEY={API Key}`, ErrNotSetAuth)
	}

	config := goopenai.DefaultConfig(options.apiKey)
	if options.baseURL != "" {
		config.BaseURL = options.baseURL
	}
	if options.organization != "" {
		config.OrgID = options.organization
	}
	if options.httpClient != nil {
		config.HTTPClient = options.httpClient
	}

	return &LLM{
		client:           goopenai.NewClientWithConfig(config),
		model:            options.modelName,
		CallbacksHandler: options.callbacksHandler,
	}, nil
}

// Call generates a response from the LLM for the given prompt.
func (o *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, o, prompt, options...)
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if o.CallbacksHandler != nil {
		o.CallbacksHandler.HandleLLMGenerateContentStart(ctx, messages)
	}

	opts := &llms.CallOptions{}
	for _, opt := range options {
		opt(opts)
	}

	req := goopenai.ChatCompletionRequest{
		Model:       o.getModelString(*opts),
		Messages:    convertMessages(messages),
		Tools:       convertTools(opts.Tools),
		Temperature: float32(opts.Temperature),
		TopP:        float32(opts.TopP),
		MaxTokens:   opts.MaxTokens,
	}

	var resp *llms.ContentResponse
	var err error
	if opts.StreamingFunc != nil {
		resp, err = o.generateStreaming(ctx, req, opts.StreamingFunc)
	} else {
		resp, err = o.generate(ctx, req)
	}
	if err != nil {
		if o.CallbacksHandler != nil {
			o.CallbacksHandler.HandleLLMError(ctx, err)
		}
		return nil, err
	}

	if o.CallbacksHandler != nil {
		o.CallbacksHandler.HandleLLMGenerateContentEnd(ctx, resp)
	}
	return resp, nil
}

func (o *LLM) generate(ctx context.Context, req goopenai.ChatCompletionRequest) (*llms.ContentResponse, error) {
	result, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(result.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	choices := make([]*llms.ContentChoice, 0, len(result.Choices))
	for _, c := range result.Choices {
		choice := &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: string(c.FinishReason),
			GenerationInfo: map[string]any{
				"prompt_tokens":     result.Usage.PromptTokens,
				"completion_tokens": result.Usage.CompletionTokens,
				"total_tokens":      result.Usage.TotalTokens,
			},
		}
		for _, tc := range c.Message.ToolCalls {
			choice.ToolCalls = append(choice.ToolCalls, llms.ToolCall{
				ID:   tc.ID,
				Type: string(tc.Type),
				FunctionCall: &llms.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		choices = append(choices, choice)
	}

	return &llms.ContentResponse{Choices: choices}, nil
}

func (o *LLM) generateStreaming(ctx context.Context, req goopenai.ChatCompletionRequest, streamingFunc func(context.Context, []byte) error) (*llms.ContentResponse, error) {
	req.Stream = true

	stream, err := o.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var content strings.Builder
	var finishReason string
	toolCalls := map[int]*llms.ToolCall{}

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		choice := chunk.Choices[0]
		if choice.FinishReason != "" {
			finishReason = string(choice.FinishReason)
		}

		if choice.Delta.Content != "" {
			content.WriteString(choice.Delta.Content)
			if err := streamingFunc(ctx, []byte(choice.Delta.Content)); err != nil {
				return nil, err
			}
		}

		// Tool call arguments arrive as fragments keyed by index.
		for _, tc := range choice.Delta.ToolCalls {
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}
			call, ok := toolCalls[idx]
			if !ok {
				call = &llms.ToolCall{FunctionCall: &llms.FunctionCall{}}
				toolCalls[idx] = call
			}
			if tc.ID != "" {
				call.ID = tc.ID
			}
			if tc.Type != "" {
				call.Type = string(tc.Type)
			}
			if tc.Function.Name != "" {
				call.FunctionCall.Name += tc.Function.Name
			}
			call.FunctionCall.Arguments += tc.Function.Arguments
		}
	}

	choice := &llms.ContentChoice{
		Content:        content.String(),
		StopReason:     finishReason,
		GenerationInfo: make(map[string]any),
	}
	for i := 0; i < len(toolCalls); i++ {
		if call, ok := toolCalls[i]; ok {
			choice.ToolCalls = append(choice.ToolCalls, *call)
		}
	}

	return &llms.ContentResponse{Choices: []*llms.ContentChoice{choice}}, nil
}

func (o *LLM) getModelString(opts llms.CallOptions) string {
	model := o.model
	if opts.Model != "" {
		model = ModelName(opts.Model)
	}
	return string(model)
}

func convertMessages(messages []llms.MessageContent) []goopenai.ChatCompletionMessage {
	out := make([]goopenai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		role := convertRole(msg.Role)

		var content strings.Builder
		var msgToolCalls []goopenai.ToolCall
		var toolResponses []goopenai.ChatCompletionMessage

		for _, part := range msg.Parts {
			switch p := part.(type) {
			case llms.TextContent:
				content.WriteString(p.Text)
			case llms.ToolCall:
				tc := goopenai.ToolCall{
					ID:   p.ID,
					Type: goopenai.ToolTypeFunction,
				}
				if p.FunctionCall != nil {
					tc.Function = goopenai.FunctionCall{
						Name:      p.FunctionCall.Name,
						Arguments: p.FunctionCall.Arguments,
					}
				}
				msgToolCalls = append(msgToolCalls, tc)
			case llms.ToolCallResponse:
				toolResponses = append(toolResponses, goopenai.ChatCompletionMessage{
					Role:       goopenai.ChatMessageRoleTool,
					ToolCallID: p.ToolCallID,
					Name:       p.Name,
					Content:    p.Content,
				})
			}
		}

		// Tool responses are standalone messages in the OpenAI format.
		if len(toolResponses) > 0 {
			out = append(out, toolResponses...)
			continue
		}

		out = append(out, goopenai.ChatCompletionMessage{
			Role:      role,
			Content:   content.String(),
			ToolCalls: msgToolCalls,
		})
	}
	return out
}

func convertRole(role llms.ChatMessageType) string {
	switch role {
	case llms.ChatMessageTypeAI:
		return goopenai.ChatMessageRoleAssistant
	case llms.ChatMessageTypeSystem:
		return goopenai.ChatMessageRoleSystem
	case llms.ChatMessageTypeTool:
		return goopenai.ChatMessageRoleTool
	default:
		return goopenai.ChatMessageRoleUser
	}
}

func convertTools(tools []llms.Tool) []goopenai.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]goopenai.Tool, 0, len(tools))
	for _, tool := range tools {
		if tool.Function == nil {
			continue
		}
		out = append(out, goopenai.Tool{
			Type: goopenai.ToolTypeFunction,
			Function: &goopenai.FunctionDefinition{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  tool.Function.Parameters,
			},
		})
	}
	return out
}
