package llm

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIInvoker implements Invoker on the official openai-go SDK (chat
// completions).
type OpenAIInvoker struct {
	opts []option.RequestOption
}

// NewOpenAIInvoker builds an invoker from an API key and optional base URL
// override.
func NewOpenAIInvoker(apiKey, baseURL string) (*OpenAIInvoker, error) {
	if apiKey == "" {
		return nil, errors.New("llm: openai api key missing")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIInvoker{opts: opts}, nil
}

// Invoke sends the persona and conversation to the chat completions API and
// returns the model's turn with its reported usage.
func (o *OpenAIInvoker) Invoke(ctx context.Context, req Request) (Response, error) {
	client := openai.NewClient(o.opts...)

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    msgs,
		Temperature: openai.Float(req.Temperature),
	}
	for _, tool := range req.Tools {
		params.Tools = append(params.Tools, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        tool.Name,
				Description: openai.String(tool.Description),
				Parameters:  openai.FunctionParameters(tool.Parameters),
			},
		})
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, &InvocationError{Provider: "openai", Err: err}
	}
	if len(resp.Choices) == 0 {
		return Response{}, &InvocationError{Provider: "openai", Err: errors.New("empty choices")}
	}

	message := resp.Choices[0].Message
	out := Response{
		Text: message.Content,
		Usage: Usage{
			Prompt:     int(resp.Usage.PromptTokens),
			Completion: int(resp.Usage.CompletionTokens),
		},
	}
	for _, call := range message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return out, nil
}
