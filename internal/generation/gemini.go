package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-2.0-flash"

type GeminiConfig struct {
	APIKey            string
	Model             string
	RequestsPerMinute int
	ConcurrentReqs    int
}

type GeminiGenerator struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	limiter *rate.Limiter
	slots   chan struct{}
}

func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	name := cfg.Model
	if name == "" {
		name = defaultModel
	}
	model := client.GenerativeModel(name)
	model.SetTemperature(0.4)
	model.SetTopP(0.95)

	concurrent := max(cfg.ConcurrentReqs, 1)
	slots := make(chan struct{}, concurrent)
	for i := 0; i < concurrent; i++ {
		slots <- struct{}{}
	}

	rpm := max(cfg.RequestsPerMinute, 1)
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), concurrent)

	return &GeminiGenerator{
		client:  client,
		model:   model,
		limiter: limiter,
		slots:   slots,
	}, nil
}

func (g *GeminiGenerator) Close() {
	g.client.Close()
}

func (g *GeminiGenerator) acquire(ctx context.Context) error {
	select {
	case <-g.slots:
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := g.limiter.Wait(ctx); err != nil {
		g.slots <- struct{}{}
		return err
	}
	return nil
}

func (g *GeminiGenerator) release() {
	g.slots <- struct{}{}
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}
	if err := g.acquire(ctx); err != nil {
		return "", err
	}
	defer g.release()

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &UnavailableError{Err: err}
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			log.Warn().Int("candidate", i).Str("finish_reason", cand.FinishReason.String()).Msg("Gemini stopped early")
		}
	}

	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
