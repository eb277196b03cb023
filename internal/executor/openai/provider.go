// Package openai implements the analysis executor against the OpenAI
// chat completions API with vision input.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/zonewatch/zonewatch/internal/domain"
	"github.com/zonewatch/zonewatch/internal/executor"
	"github.com/zonewatch/zonewatch/internal/metrics"
	"github.com/zonewatch/zonewatch/internal/registry"
	"github.com/zonewatch/zonewatch/internal/snapshot"
)

const (
	// DefaultModel is the default vision-capable model.
	DefaultModel = "gpt-4o"

	// maxTokens caps the model's response length.
	maxTokens = 1024

	// maxImageDim is the longest snapshot edge sent to the model. Larger
	// snapshots are downscaled to keep request sizes and token costs down.
	maxImageDim = 1280

	// jpegQuality for re-encoded snapshots.
	jpegQuality = 85
)

// Config contains configuration for the OpenAI executor.
type Config struct {
	APIKey string
	Model  string
	executor.Config
}

// Provider implements executor.Executor using OpenAI vision models. Zone
// attributes are resolved against the registry and the snapshot comes from
// the configured snapshot source.
type Provider struct {
	config    Config
	client    *goopenai.Client
	registry  *registry.Registry
	snapshots snapshot.Source
	logger    *slog.Logger
}

// New creates a new OpenAI executor.
func New(config Config, reg *registry.Registry, snapshots snapshot.Source, logger *slog.Logger) (*Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.RetryBaseDelay == 0 {
		config.RetryBaseDelay = 1 * time.Second
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = 60 * time.Second
	}

	return &Provider{
		config:    config,
		client:    goopenai.NewClient(config.APIKey),
		registry:  reg,
		snapshots: snapshots,
		logger:    logger,
	}, nil
}

// Execute analyzes the named zone's latest snapshot.
func (p *Provider) Execute(ctx context.Context, zoneName string) (*executor.Analysis, error) {
	start := time.Now()

	zone, err := p.registry.Lookup(zoneName)
	if err != nil {
		if errors.Is(err, registry.ErrUnknownZone) {
			return nil, executor.WrapError("lookup zone", fmt.Errorf("%w: %q", executor.ErrUnknownZone, zoneName))
		}
		return nil, executor.WrapError("lookup zone", err)
	}

	imageURL, err := p.fetchSnapshot(ctx, zone.SnapshotKey)
	if err != nil {
		return nil, executor.WrapError("fetch snapshot", err)
	}

	resp, err := p.completeWithRetry(ctx, zone, imageURL)
	if err != nil {
		metrics.VisionAPICalls.WithLabelValues("error").Inc()
		return nil, executor.WrapError("chat completion", err)
	}
	metrics.VisionAPICalls.WithLabelValues("ok").Inc()
	metrics.VisionTokensTotal.WithLabelValues("input").Add(float64(resp.Usage.PromptTokens))
	metrics.VisionTokensTotal.WithLabelValues("output").Add(float64(resp.Usage.CompletionTokens))

	result, err := parseAnalysis(resp)
	if err != nil {
		return nil, executor.WrapError("parse response", err)
	}

	result.Usage = executor.UsageInfo{
		Model:        p.config.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Duration:     time.Since(start),
	}

	p.logger.Debug("zone analyzed",
		"zone", zone.Name,
		"status", result.Status,
		"observations", len(result.Observations),
		"duration", result.Usage.Duration,
	)
	return result, nil
}

// fetchSnapshot loads the zone's snapshot, downscales it when needed, and
// returns it as a base64 data URL ready for the vision API.
func (p *Provider) fetchSnapshot(ctx context.Context, key string) (string, error) {
	data, _, err := p.snapshots.Latest(ctx, key)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			return "", fmt.Errorf("%w: %q", executor.ErrNoSnapshot, key)
		}
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode snapshot: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxImageDim || bounds.Dy() > maxImageDim {
		img = imaging.Fit(img, maxImageDim, maxImageDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// completeWithRetry executes the chat completion, retrying transient errors
// with exponential backoff.
func (p *Provider) completeWithRetry(ctx context.Context, zone domain.Zone, imageURL string) (goopenai.ChatCompletionResponse, error) {
	req := goopenai.ChatCompletionRequest{
		Model:     p.config.Model,
		MaxTokens: maxTokens,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role:    goopenai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role: goopenai.ChatMessageRoleUser,
				MultiContent: []goopenai.ChatMessagePart{
					{
						Type: goopenai.ChatMessagePartTypeText,
						Text: userPrompt(zone.Name, zone.Context),
					},
					{
						Type: goopenai.ChatMessagePartTypeImageURL,
						ImageURL: &goopenai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: goopenai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}

	var lastErr error
	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := p.config.RetryBaseDelay * time.Duration(1<<(attempt-1))
			p.logger.Warn("retrying vision request", "attempt", attempt, "delay", delay, "error", lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return goopenai.ChatCompletionResponse{}, ctx.Err()
			}
		}

		reqCtx, cancel := context.WithTimeout(ctx, p.config.RequestTimeout)
		resp, err := p.client.CreateChatCompletion(reqCtx, req)
		cancel()
		if err == nil {
			return resp, nil
		}

		lastErr = classifyError(err)
		if !executor.IsRetryable(lastErr) {
			return goopenai.ChatCompletionResponse{}, lastErr
		}
	}
	return goopenai.ChatCompletionResponse{}, lastErr
}

// classifyError maps API failures onto the executor sentinels so both the
// local retry loop and the scheduler's retry policy can reason about them.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", executor.ErrTimeout, err)
	}

	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", executor.ErrRateLimit, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", executor.ErrUnauthorized, err)
		case http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return fmt.Errorf("%w: %v", executor.ErrUnavailable, err)
		}
	}
	return err
}

// analysisPayload is the JSON shape the prompt asks the model for.
type analysisPayload struct {
	Status       string `json:"status"`
	Summary      string `json:"summary"`
	Observations []struct {
		Label      string `json:"label"`
		Detail     string `json:"detail"`
		Confidence string `json:"confidence"`
	} `json:"observations"`
}

// parseAnalysis extracts and validates the model's JSON answer.
func parseAnalysis(resp goopenai.ChatCompletionResponse) (*executor.Analysis, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("response contains no choices")
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal analysis: %w", err)
	}

	status := executor.ZoneStatus(payload.Status)
	if !status.Valid() {
		return nil, fmt.Errorf("invalid zone status %q", payload.Status)
	}
	if payload.Summary == "" {
		return nil, fmt.Errorf("analysis summary is empty")
	}

	result := &executor.Analysis{
		Status:  status,
		Summary: payload.Summary,
	}
	for _, o := range payload.Observations {
		conf := executor.Confidence(o.Confidence)
		if !conf.Valid() {
			conf = executor.ConfidenceLow
		}
		result.Observations = append(result.Observations, executor.Observation{
			Label:      o.Label,
			Detail:     o.Detail,
			Confidence: conf,
		})
	}
	return result, nil
}
