package openai

import (
	"net/http"
	"os"

	"github.com/tmc/langchaingo/callbacks"
)

// ModelName represents the model identifier for the OpenAI API.
type ModelName string

const (
	ModelNameGPT4o     ModelName = "gpt-4o"
	ModelNameGPT4oMini ModelName = "gpt-4o-mini"
	ModelNameGPT41     ModelName = "gpt-4.1"
	ModelNameGPT41Mini ModelName = "gpt-4.1-mini"
	ModelNameGPT41Nano ModelName = "gpt-4.1-nano"
	ModelNameO3Mini    ModelName = "o3-mini"
)

type options struct {
	apiKey           string
	modelName        ModelName
	baseURL          string
	organization     string
	httpClient       *http.Client
	callbacksHandler callbacks.Handler
}

// Option is a function that configures an LLM.
type Option func(*options)

// WithAPIKey sets the API key for the LLM.
func WithAPIKey(apiKey string) Option {
	return func(opts *options) {
		opts.apiKey = apiKey
	}
}

// WithModel sets the model name for the LLM.
func WithModel(model ModelName) Option {
	return func(opts *options) {
		opts.modelName = model
	}
}

// WithBaseURL sets the base URL for the LLM API.
// Useful for OpenAI-compatible gateways and proxies.
func WithBaseURL(baseURL string) Option {
	return func(opts *options) {
		opts.baseURL = baseURL
	}
}

// WithOrganization sets the OpenAI organization ID.
func WithOrganization(organization string) Option {
	return func(opts *options) {
		opts.organization = organization
	}
}

// WithHTTPClient sets the HTTP client for the LLM.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *options) {
		opts.httpClient = client
	}
}

// WithCallbacks sets the callbacks handler for the LLM.
func WithCallbacks(handler callbacks.Handler) Option {
	return func(opts *options) {
		opts.callbacksHandler = handler
	}
}

// getEnvOrDefault retrieves an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
