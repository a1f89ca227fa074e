package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"

	"github.com/calorieking/backend/config"
)

const (
	analyzePrompt = `Analyze this food image and provide a detailed breakdown of the meal.

Identify each food item visible in the image, estimate the portion size, and calculate approximate calories.

Return your response in this EXACT JSON format (no markdown, no code blocks, just raw JSON):
{
    "foods": [
        {
            "name": "Food name",
            "portion": "Estimated portion (e.g., '6 oz', '1 cup', '1/2 cup')",
            "calories": 280
        }
    ],
    "total_calories": 500
}

Be specific with food names (e.g., "Grilled chicken breast" not just "chicken"). Provide realistic portion estimates and calorie counts based on standard nutritional data.`

	reanalyzePrompt = `Estimate the typical portion size and calories for this food item: %s
%s
Return your response in this EXACT JSON format (no markdown, no code blocks, just raw JSON):
{
    "portion": "Estimated portion (e.g., '6 oz', '1 cup', '1/2 cup')",
    "calories": 280
}

Provide a realistic calorie count based on standard nutritional data.`

	defaultMediaType = "image/jpeg"
	maxErrorBody     = 4096
)

// messageRequest is the body of an Anthropic Messages API call
type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// messageResponse is the subset of the Messages API response that is used
type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// VisionService sends meal photos and food names to the Anthropic Messages API
type VisionService struct {
	apiKey     string
	apiURL     string
	model      string
	version    string
	maxTokens  int
	maxRetries int
	backoff    time.Duration
	client     *http.Client
	log        logrus.FieldLogger
}

// NewVisionService creates a vision service from configuration. A missing API
// key is not an error here; every call then fails with an UpstreamError.
func NewVisionService(cfg *config.Config, log logrus.FieldLogger) *VisionService {
	return &VisionService{
		apiKey:     cfg.AnthropicAPIKey,
		apiURL:     cfg.AnthropicAPIURL,
		model:      cfg.AnthropicModel,
		version:    cfg.AnthropicVersion,
		maxTokens:  cfg.AnthropicMaxTokens,
		maxRetries: cfg.UpstreamMaxRetries,
		backoff:    time.Second,
		client: &http.Client{
			Timeout: cfg.UpstreamTimeout,
		},
		log: log.WithField("component", "vision"),
	}
}

// WithBackoff sets the base delay between retries
func (s *VisionService) WithBackoff(d time.Duration) *VisionService {
	s.backoff = d
	return s
}

// Analyze asks the model to itemize the foods in image and returns its raw text
func (s *VisionService) Analyze(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", &UpstreamError{Message: "no image data"}
	}

	mediaType := DetectMediaType(image, mimeType)
	s.log.WithFields(logrus.Fields{
		"media_type": mediaType,
		"bytes":      len(image),
	}).Debug("Analyzing meal image")

	return s.send(ctx, []contentBlock{
		{
			Type: "image",
			Source: &imageSource{
				Type:      "base64",
				MediaType: mediaType,
				Data:      base64.StdEncoding.EncodeToString(image),
			},
		},
		{Type: "text", Text: analyzePrompt},
	})
}

// Reanalyze asks the model for the portion and calories of one named food
func (s *VisionService) Reanalyze(ctx context.Context, foodName, portion string) (string, error) {
	hint := ""
	if p := strings.TrimSpace(portion); p != "" {
		hint = fmt.Sprintf("The portion is approximately: %s\n", p)
	}
	s.log.WithField("food", foodName).Debug("Re-estimating food item")

	return s.send(ctx, []contentBlock{
		{Type: "text", Text: fmt.Sprintf(reanalyzePrompt, strings.TrimSpace(foodName), hint)},
	})
}

func (s *VisionService) send(ctx context.Context, content []contentBlock) (string, error) {
	if s.apiKey == "" {
		return "", &UpstreamError{Message: "analysis unavailable", Err: ErrMissingAPIKey}
	}

	body, err := json.Marshal(messageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		Messages:  []message{{Role: "user", Content: content}},
	})
	if err != nil {
		return "", &UpstreamError{Message: "failed to marshal request", Err: err}
	}

	attempts := s.maxRetries + 1
	var lastErr *UpstreamError
	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := s.attempt(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !err.Retryable() || attempt == attempts || ctx.Err() != nil {
			break
		}

		s.log.WithFields(logrus.Fields{
			"attempt": attempt,
			"status":  err.StatusCode,
		}).WithError(err).Warn("Upstream call failed, retrying")

		select {
		case <-ctx.Done():
			return "", &UpstreamError{Message: "request cancelled", Err: ctx.Err()}
		case <-time.After(time.Duration(attempt) * s.backoff):
		}
	}

	s.log.WithError(lastErr).Error("Upstream call failed")
	return "", lastErr
}

func (s *VisionService) attempt(ctx context.Context, body []byte) (string, *UpstreamError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", &UpstreamError{Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", s.version)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &UpstreamError{Message: "failed to send request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	var result messageResponse
	decodeErr := json.Unmarshal(respBody, &result)

	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && result.Error != nil && result.Error.Message != "" {
			msg = result.Error.Message
		} else if len(respBody) > 0 {
			msg = truncate(string(respBody), maxErrorBody)
		}
		return "", &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
	}

	if decodeErr != nil {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Message: "failed to decode response", Err: decodeErr}
	}
	if result.Error != nil {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Message: result.Error.Message}
	}

	var sb strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		msg := "empty response from model"
		if result.StopReason != "" {
			msg += " (stop_reason: " + result.StopReason + ")"
		}
		return "", &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
	}

	return sb.String(), nil
}

// DetectMediaType returns declared when it names an image type and otherwise
// sniffs the bytes, falling back to image/jpeg.
func DetectMediaType(data []byte, declared string) string {
	declared = strings.ToLower(strings.TrimSpace(strings.SplitN(declared, ";", 2)[0]))
	if strings.HasPrefix(declared, "image/") {
		return declared
	}

	detected := mimetype.Detect(data)
	for mt := detected; mt != nil; mt = mt.Parent() {
		if strings.HasPrefix(mt.String(), "image/") {
			return mt.String()
		}
	}
	return defaultMediaType
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
