package providers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ssingh-rookie/LeafWise-API/internal/platform/envutil"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
)

// streamKind selects which vendor's SSE wire shape Stream decodes against.
type streamKind string

const (
	streamKindAnthropic streamKind = "anthropic"
	streamKindOpenAI    streamKind = "openai"
)

type ModelTier string

const (
	TierSimple  ModelTier = "simple"
	TierComplex ModelTier = "complex"
)

type ChatTurn struct {
	Role    string // "user" | "assistant"
	Content string
}

type ChatResult struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
}

// ConversationalLLM is the shared contract for both the primary and
// fallback LLM gateways (spec §4.2 items 3-4): identical shape, different
// vendor endpoint/model behind it.
type ConversationalLLM interface {
	Generate(ctx context.Context, tier ModelTier, systemPrompt string, turns []ChatTurn) (ChatResult, error)
	// Stream delivers content chunks in emission order via onDelta and
	// returns the finalized result with total usage once the stream ends.
	Stream(ctx context.Context, tier ModelTier, systemPrompt string, turns []ChatTurn, onDelta func(chunk string)) (ChatResult, error)
}

type llmGateway struct {
	httpGateway
	simpleModel  string
	complexModel string
	streamKind   streamKind
}

func NewLLMPrimary(log *logger.Logger) (ConversationalLLM, error) {
	apiKey := strings.TrimSpace(os.Getenv("LLM_PRIMARY_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing env var LLM_PRIMARY_API_KEY")
	}
	baseURL := envutil.GetEnv("LLM_PRIMARY_BASE_URL", "https://api.anthropic.com/v1", log)
	return &llmGateway{
		httpGateway:  newHTTPGateway("llm-primary", baseURL, apiKey, "x-api-key", "", 30*time.Second),
		simpleModel:  envutil.GetEnv("LLM_PRIMARY_SIMPLE_MODEL", "claude-3-5-haiku", log),
		complexModel: envutil.GetEnv("LLM_PRIMARY_COMPLEX_MODEL", "claude-3-5-sonnet", log),
		streamKind:   streamKindAnthropic,
	}, nil
}

func NewLLMFallback(log *logger.Logger) (ConversationalLLM, error) {
	apiKey := strings.TrimSpace(os.Getenv("LLM_FALLBACK_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing env var LLM_FALLBACK_API_KEY")
	}
	baseURL := envutil.GetEnv("LLM_FALLBACK_BASE_URL", "https://api.openai.com/v1", log)
	model := envutil.GetEnv("LLM_FALLBACK_MODEL", "gpt-4o-mini", log)
	return &llmGateway{
		httpGateway:  newHTTPGateway("llm-fallback", baseURL, apiKey, "Authorization", "Bearer ", 15*time.Second),
		simpleModel:  model,
		complexModel: model,
		streamKind:   streamKindOpenAI,
	}, nil
}

type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string                   `json:"model"`
	Messages []chatCompletionMessage  `json:"messages"`
	Stream   bool                     `json:"stream,omitempty"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatCompletionMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (g *llmGateway) modelFor(tier ModelTier) string {
	if tier == TierComplex {
		return g.complexModel
	}
	return g.simpleModel
}

func (g *llmGateway) buildRequest(tier ModelTier, systemPrompt string, turns []ChatTurn) chatCompletionRequest {
	msgs := make([]chatCompletionMessage, 0, len(turns)+1)
	if strings.TrimSpace(systemPrompt) != "" {
		msgs = append(msgs, chatCompletionMessage{Role: "system", Content: systemPrompt})
	}
	for _, t := range turns {
		msgs = append(msgs, chatCompletionMessage{Role: t.Role, Content: t.Content})
	}
	return chatCompletionRequest{Model: g.modelFor(tier), Messages: msgs}
}

func (g *llmGateway) Generate(ctx context.Context, tier ModelTier, systemPrompt string, turns []ChatTurn) (ChatResult, error) {
	req := g.buildRequest(tier, systemPrompt, turns)

	var resp chatCompletionResponse
	if err := g.doJSON(ctx, "/chat/completions", req, &resp); err != nil {
		return ChatResult{}, err
	}
	if len(resp.Choices) == 0 {
		return ChatResult{}, &GatewayError{Provider: g.provider, Code: ErrCodeInvalidResponse, Err: fmt.Errorf("no choices in response")}
	}
	return ChatResult{
		Content:      resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Model:        req.Model,
	}, nil
}

// openAIStreamChunk is one "data: {...}" line of an OpenAI-shaped
// chat-completions SSE stream.
type openAIStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// anthropicStreamEvent is one "data: {...}" line of an Anthropic-shaped
// messages SSE stream; Type discriminates content_block_delta,
// message_delta, and message_stop events.
type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Text string `json:"text"`
	} `json:"delta"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Stream issues the vendor's real streaming endpoint and decodes incremental
// deltas into onDelta as they arrive, per spec §4.2 item 3-4's "chunks in
// emission order" contract.
func (g *llmGateway) Stream(ctx context.Context, tier ModelTier, systemPrompt string, turns []ChatTurn, onDelta func(chunk string)) (ChatResult, error) {
	req := g.buildRequest(tier, systemPrompt, turns)
	req.Stream = true

	resp, err := g.postStream(ctx, "/chat/completions", req)
	if err != nil {
		return ChatResult{}, err
	}
	defer resp.Body.Close()

	var content strings.Builder
	var inputTokens, outputTokens int

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" || data == "[DONE]" {
			continue
		}

		switch g.streamKind {
		case streamKindAnthropic:
			var evt anthropicStreamEvent
			if err := json.Unmarshal([]byte(data), &evt); err != nil {
				continue
			}
			switch evt.Type {
			case "content_block_delta":
				if evt.Delta.Text != "" {
					content.WriteString(evt.Delta.Text)
					if onDelta != nil {
						onDelta(evt.Delta.Text)
					}
				}
			case "message_delta", "message_stop":
				if evt.Usage.InputTokens > 0 {
					inputTokens = evt.Usage.InputTokens
				}
				if evt.Usage.OutputTokens > 0 {
					outputTokens = evt.Usage.OutputTokens
				}
			}
		default:
			var chunk openAIStreamChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue
			}
			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				delta := chunk.Choices[0].Delta.Content
				content.WriteString(delta)
				if onDelta != nil {
					onDelta(delta)
				}
			}
			if chunk.Usage != nil {
				inputTokens = chunk.Usage.PromptTokens
				outputTokens = chunk.Usage.CompletionTokens
			}
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return ChatResult{}, &GatewayError{Provider: g.provider, Code: ErrCodeServiceError, Err: err}
	}

	return ChatResult{
		Content:      content.String(),
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Model:        req.Model,
	}, nil
}
