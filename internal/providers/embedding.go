package providers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ssingh-rookie/LeafWise-API/internal/platform/envutil"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
)

// EmbeddingResult holds one vector per input string, in input order, plus
// the total token count billed for the whole batch.
type EmbeddingResult struct {
	Vectors [][]float64
	Tokens  int
	Model   string
}

// Embedder is the Embedding gateway of spec §4.2 item 5: accepts one string
// or a batch, returns a 1536-dim vector per element. No fallback chain
// exists for this task (spec §4.3 table).
type Embedder interface {
	Embed(ctx context.Context, inputs []string) (EmbeddingResult, error)
}

type embeddingGateway struct {
	httpGateway
	model string
	dims  int
}

func NewEmbedder(log *logger.Logger) (Embedder, error) {
	apiKey := strings.TrimSpace(os.Getenv("EMBEDDING_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing env var EMBEDDING_API_KEY")
	}
	baseURL := envutil.GetEnv("EMBEDDING_BASE_URL", "https://api.openai.com/v1", log)
	model := envutil.GetEnv("EMBEDDING_MODEL", "text-embedding-3-small", log)
	return &embeddingGateway{
		httpGateway: newHTTPGateway("embedding", baseURL, apiKey, "Authorization", "Bearer ", 5*time.Second),
		model:       model,
		dims:        1536,
	}, nil
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Model string `json:"model"`
	Data  []struct {
		Embedding []float64 `json:"embedding"`
		Index     int        `json:"index"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (g *embeddingGateway) Embed(ctx context.Context, inputs []string) (EmbeddingResult, error) {
	if len(inputs) == 0 {
		return EmbeddingResult{}, &GatewayError{Provider: g.provider, Code: ErrCodeInvalidResponse, Err: fmt.Errorf("no inputs supplied")}
	}

	var resp embeddingResponse
	if err := g.doJSON(ctx, "/embeddings", embeddingRequest{Model: g.model, Input: inputs}, &resp); err != nil {
		return EmbeddingResult{}, err
	}
	if len(resp.Data) != len(inputs) {
		return EmbeddingResult{}, &GatewayError{Provider: g.provider, Code: ErrCodeInvalidResponse, Err: fmt.Errorf("expected %d vectors, got %d", len(inputs), len(resp.Data))}
	}

	vectors := make([][]float64, len(inputs))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return EmbeddingResult{}, &GatewayError{Provider: g.provider, Code: ErrCodeInvalidResponse, Err: fmt.Errorf("embedding index %d out of range", d.Index)}
		}
		if len(d.Embedding) != g.dims {
			return EmbeddingResult{}, &GatewayError{Provider: g.provider, Code: ErrCodeInvalidResponse, Err: fmt.Errorf("expected %d-dim vector, got %d", g.dims, len(d.Embedding))}
		}
		vectors[d.Index] = d.Embedding
	}

	return EmbeddingResult{Vectors: vectors, Tokens: resp.Usage.TotalTokens, Model: g.model}, nil
}
