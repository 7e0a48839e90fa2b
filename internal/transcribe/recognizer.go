package transcribe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ytget/video-downloader/internal/model"
)

// DefaultModel is the Whisper model used when none is configured
const DefaultModel = "whisper-1"

// Recognizer turns a WAV file into text
type Recognizer interface {
	Recognize(ctx context.Context, wavPath string) (string, error)
}

// RecognizerConfig configures an OpenAIRecognizer
type RecognizerConfig struct {
	APIKey   string
	BaseURL  string // optional, for OpenAI-compatible services
	Model    string
	Language string // optional ISO-639-1 hint
}

// OpenAIRecognizer implements Recognizer using the OpenAI Whisper API
type OpenAIRecognizer struct {
	client   *openai.Client
	model    string
	language string
}

// NewOpenAIRecognizer creates a recognizer. The API key is required.
func NewOpenAIRecognizer(cfg RecognizerConfig) (*OpenAIRecognizer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("speech recognition API key not provided")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &OpenAIRecognizer{
		client:   openai.NewClientWithConfig(clientConfig),
		model:    model,
		language: cfg.Language,
	}, nil
}

// Recognize uploads the WAV file and returns the recognized text
func (o *OpenAIRecognizer) Recognize(ctx context.Context, wavPath string) (string, error) {
	req := openai.AudioRequest{
		Model:    o.model,
		FilePath: wavPath,
		Format:   openai.AudioResponseFormatJSON,
		Language: o.language,
	}

	resp, err := o.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", classifyError(err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", model.RecognitionError(errors.New("no speech recognized"))
	}
	return text, nil
}

// classifyError maps an API failure onto the network or recognition kind.
// Unreachable, overloaded, rate-limited and unauthorized services are
// network failures; other rejections mean the audio was not accepted.
func classifyError(err error) error {
	status := 0

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch {
	case status == 0,
		status >= http.StatusInternalServerError,
		status == http.StatusTooManyRequests,
		status == http.StatusUnauthorized,
		status == http.StatusForbidden:
		return fmt.Errorf("could not request results from the speech recognition service: %w", model.NetworkError(err))
	default:
		return model.RecognitionError(err)
	}
}
