package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider names accepted by NewLangChainModel.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// LangChainModel adapts a langchaingo model to the ChatWithMessages call used by the pipeline.
type LangChainModel struct {
	llm       llms.Model
	modelName string
}

// NewLangChainModel creates a model for the given provider.
// For "openai" baseURL is the server root of any OpenAI-compatible API (for example OpenRouter);
// "/v1" is appended. For "ollama" it is the Ollama server URL.
func NewLangChainModel(provider, baseURL, apiKey, model string) (*LangChainModel, error) {
	var m llms.Model
	var err error

	switch provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("API key required for provider %s", provider)
		}
		opts := []openai.Option{
			openai.WithToken(apiKey),
			openai.WithModel(model),
		}
		if baseURL != "" {
			opts = append(opts, openai.WithBaseURL(strings.TrimRight(baseURL, "/")+"/v1"))
		}
		m, err = openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case ProviderOllama:
		m, err = ollama.New(
			ollama.WithModel(model),
			ollama.WithServerURL(baseURL),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}

	return &LangChainModel{
		llm:       m,
		modelName: model,
	}, nil
}

// ChatWithMessages generates a completion for the conversation.
func (m *LangChainModel) ChatWithMessages(ctx context.Context, messages []Message, params ChatParams) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		content = append(content, llms.TextParts(messageType(msg.Role), msg.Content))
	}

	opts := []llms.CallOption{
		llms.WithTemperature(float64(params.Temperature)),
	}
	if params.Model != "" {
		opts = append(opts, llms.WithModel(params.Model))
	}
	if params.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(params.MaxTokens))
	}

	response, err := m.llm.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	return response.Choices[0].Content, nil
}

// Model returns the default model name.
func (m *LangChainModel) Model() string {
	return m.modelName
}

func messageType(role string) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
