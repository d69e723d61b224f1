package clip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"image-search-be/internal/pkg/logger"
	"image-search-be/pkg/embedding"

	gocache "github.com/patrickmn/go-cache"
)

// Config tunes the CLIP provider. Zero values fall back to the reference
// model's dimensions (ViT-B/32: 512-d output, 77-token context, 224px input).
type Config struct {
	BaseURL       string
	Dimension     int
	MaxTextLength int
	ImageSize     int
	Timeout       time.Duration
	CacheTTL      time.Duration
}

// Provider generates CLIP embeddings by preparing the encodings locally
// (tokenization, image preprocessing) and delegating the actual model forward
// pass to an inference server over HTTP. Identical text queries are served
// from an in-process cache since query embedding is deterministic.
type Provider struct {
	baseURL       string
	dimension     int
	maxTextLength int
	imageSize     int
	client        *http.Client
	tokenizer     *Tokenizer
	textCache     *gocache.Cache
	log           logger.ILogger
}

func NewProvider(cfg Config, log logger.ILogger) embedding.EmbeddingProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8090"
	}
	if cfg.Dimension == 0 {
		cfg.Dimension = 512
	}
	if cfg.MaxTextLength == 0 {
		cfg.MaxTextLength = DefaultMaxTextLength
	}
	if cfg.ImageSize == 0 {
		cfg.ImageSize = DefaultImageSize
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 10 * time.Minute
	}

	return &Provider{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		dimension:     cfg.Dimension,
		maxTextLength: cfg.MaxTextLength,
		imageSize:     cfg.ImageSize,
		client:        &http.Client{Timeout: cfg.Timeout},
		tokenizer:     NewTokenizer(),
		textCache:     gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		log:           log,
	}
}

type embedTextRequest struct {
	TokenIds []int64 `json:"token_ids"`
}

type embedImageRequest struct {
	Pixels []float32 `json:"pixels"`
	Size   int       `json:"size"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (p *Provider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, embedding.ErrEmptyText
	}

	if cached, found := p.textCache.Get(text); found {
		return cached.([]float32), nil
	}

	tokenIds := p.tokenizer.Encode(text, p.maxTextLength)
	vec, err := p.callModel(ctx, "/v1/embed/text", embedTextRequest{TokenIds: tokenIds})
	if err != nil {
		return nil, &embedding.EmbeddingError{Op: "text", Input: text, Cause: err}
	}

	vec, err = p.finalize(vec)
	if err != nil {
		return nil, &embedding.EmbeddingError{Op: "text", Input: text, Cause: err}
	}

	p.textCache.SetDefault(text, vec)
	return vec, nil
}

func (p *Provider) EmbedImage(ctx context.Context, path string) ([]float32, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &embedding.EmbeddingError{Op: "image", Input: path, Cause: fmt.Errorf("image path must not be empty")}
	}

	pixels, err := PreprocessImage(path, p.imageSize)
	if err != nil {
		return nil, &embedding.EmbeddingError{Op: "image", Input: path, Cause: err}
	}

	vec, err := p.callModel(ctx, "/v1/embed/image", embedImageRequest{Pixels: pixels, Size: p.imageSize})
	if err != nil {
		return nil, &embedding.EmbeddingError{Op: "image", Input: path, Cause: err}
	}

	vec, err = p.finalize(vec)
	if err != nil {
		return nil, &embedding.EmbeddingError{Op: "image", Input: path, Cause: err}
	}
	return vec, nil
}

func (p *Provider) callModel(ctx context.Context, endpoint string, payload interface{}) ([]float32, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model server error (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	var modelResp embedResponse
	if err := json.Unmarshal(bodyBytes, &modelResp); err != nil {
		return nil, err
	}
	return modelResp.Embedding, nil
}

// finalize validates the raw model output and normalizes it to unit length.
func (p *Provider) finalize(vec []float32) ([]float32, error) {
	if len(vec) != p.dimension {
		return nil, fmt.Errorf("dimension mismatch: got %d, want %d", len(vec), p.dimension)
	}
	if !embedding.IsFinite(vec) {
		return nil, fmt.Errorf("model returned a non-finite vector")
	}

	normalized, ok := embedding.Normalize(vec)
	if !ok {
		p.log.Warn("embedding", "Vector norm below epsilon, returning un-normalized vector", nil)
	}
	return normalized, nil
}
