package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xaenox/chronex/pkg/config"
	"go.uber.org/zap"
)

// HuggingFace calls the hosted inference API for text generation.
type HuggingFace struct {
	endpoint    string
	model       string
	token       string
	maxTokens   int
	temperature float64
	client      *http.Client
	logger      *zap.Logger
}

func NewHuggingFace(cfg config.AIConfig, logger *zap.Logger) (*HuggingFace, error) {
	if cfg.HuggingFaceModel == "" {
		return nil, fmt.Errorf("%w: missing Hugging Face model", ErrNotConfigured)
	}
	endpoint := cfg.HuggingFaceEndpoint
	if endpoint == "" {
		endpoint = "https://api-inference.huggingface.co/models"
	}

	return &HuggingFace{
		endpoint:    strings.TrimRight(endpoint, "/"),
		model:       cfg.HuggingFaceModel,
		token:       cfg.HuggingFaceToken,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client:      &http.Client{},
		logger:      logger,
	}, nil
}

func (h *HuggingFace) Name() string { return "huggingface" }

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

type hfError struct {
	Error string `json:"error"`
}

func (h *HuggingFace) Generate(ctx context.Context, message, _ string) (string, error) {
	body, err := json.Marshal(hfRequest{
		Inputs: message,
		Parameters: hfParameters{
			MaxNewTokens: h.maxTokens,
			Temperature:  h.temperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint+"/"+h.model, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Hugging Face: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr hfError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("Hugging Face returned status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return "", fmt.Errorf("Hugging Face returned status %d", resp.StatusCode)
	}

	// The API answers with a list for most models and a single object for some.
	var generations []hfGeneration
	if err := json.Unmarshal(raw, &generations); err != nil {
		var single hfGeneration
		if err := json.Unmarshal(raw, &single); err != nil {
			return "", fmt.Errorf("decoding response: %w", err)
		}
		generations = []hfGeneration{single}
	}

	if len(generations) == 0 {
		return "", ErrEmptyReply
	}
	text := strings.TrimSpace(generations[0].GeneratedText)
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}
