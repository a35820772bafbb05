// Package openai implements the generation client on an OpenAI compatible API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"example.com/gymgenius/internal/domain"
	"example.com/gymgenius/internal/generation"
	"example.com/gymgenius/internal/media"
	"example.com/gymgenius/internal/prompts"
)

const tracerName = "gymgenius/upstream/openai"

// Config holds credentials, endpoint and models.
type Config struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string
	AudioModel string
	Voice      string
}

type api interface {
	CreateChatCompletion(ctx context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error)
	CreateImage(ctx context.Context, req goopenai.ImageRequest) (goopenai.ImageResponse, error)
	CreateSpeech(ctx context.Context, req goopenai.CreateSpeechRequest) (goopenai.RawResponse, error)
}

// Option configures the client.
type Option func(*Client)

// WithLogger overrides the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client implements generation.Client against chat completions, images and speech endpoints.
type Client struct {
	api     api
	catalog *prompts.Catalog
	cfg     Config
	logger  *zap.Logger
	tracer  trace.Tracer
}

// New constructs a client. BaseURL may point at any OpenAI compatible server.
func New(cfg Config, catalog *prompts.Catalog, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	sdkCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		sdkCfg.BaseURL = cfg.BaseURL
	}
	return newClient(goopenai.NewClientWithConfig(sdkCfg), cfg, catalog, opts...), nil
}

func newClient(a api, cfg Config, catalog *prompts.Catalog, opts ...Option) *Client {
	c := &Client{
		api:     a,
		catalog: catalog,
		cfg:     cfg,
		logger:  zap.NewNop(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateStructured renders the template and requests a strict JSON schema response.
func (c *Client) GenerateStructured(ctx context.Context, req generation.StructuredRequest) (json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "GenerateStructured", trace.WithAttributes(
		attribute.String("gen_ai.request.model", c.cfg.TextModel),
		attribute.String("prompt.template", req.Template),
	))
	defer span.End()

	prompt, err := c.catalog.Render(req.Template, req.Params)
	if err != nil {
		return nil, fail(span, err)
	}

	chat := goopenai.ChatCompletionRequest{
		Model: c.cfg.TextModel,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if req.Schema != nil {
		def := toDefinition(req.Schema)
		chat.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Template,
				Schema: &def,
				Strict: true,
			},
		}
	} else {
		chat.ResponseFormat = &goopenai.ChatCompletionResponseFormat{Type: goopenai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := c.api.CreateChatCompletion(ctx, chat)
	if err != nil {
		c.logger.Error("openai structured request failed", zap.String("template", req.Template), zap.Error(err))
		return nil, fail(span, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, fail(span, domain.ErrEmptyResult)
	}
	span.SetAttributes(attribute.Int("gen_ai.usage.total_tokens", resp.Usage.TotalTokens))
	return json.RawMessage(resp.Choices[0].Message.Content), nil
}

// GenerateMedia dispatches by kind. A response without an artifact yields an empty URI.
func (c *Client) GenerateMedia(ctx context.Context, req generation.MediaRequest) (generation.MediaResult, error) {
	switch req.Kind {
	case domain.MediaImage:
		return c.generateImage(ctx, req)
	case domain.MediaAudio:
		return c.generateSpeech(ctx, req)
	}
	return generation.MediaResult{}, fmt.Errorf("openai: unsupported media kind %q", req.Kind)
}

func (c *Client) generateImage(ctx context.Context, req generation.MediaRequest) (generation.MediaResult, error) {
	model := pick(req.Model, c.cfg.ImageModel)
	ctx, span := c.tracer.Start(ctx, "GenerateImage", trace.WithAttributes(attribute.String("gen_ai.request.model", model)))
	defer span.End()

	resp, err := c.api.CreateImage(ctx, goopenai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          model,
		N:              1,
		Size:           goopenai.CreateImageSize1024x1024,
		ResponseFormat: goopenai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return generation.MediaResult{}, fail(span, err)
	}
	if len(resp.Data) == 0 {
		span.AddEvent("no image returned")
		return generation.MediaResult{}, nil
	}
	img := resp.Data[0]
	switch {
	case img.B64JSON != "":
		return generation.MediaResult{URI: "data:image/png;base64," + img.B64JSON}, nil
	case img.URL != "":
		return generation.MediaResult{URI: img.URL}, nil
	}
	span.AddEvent("empty image returned")
	return generation.MediaResult{}, nil
}

func (c *Client) generateSpeech(ctx context.Context, req generation.MediaRequest) (generation.MediaResult, error) {
	model := pick(req.Model, c.cfg.AudioModel)
	ctx, span := c.tracer.Start(ctx, "GenerateSpeech", trace.WithAttributes(
		attribute.String("gen_ai.request.model", model),
		attribute.Int("input.length", len(req.Prompt)),
	))
	defer span.End()

	resp, err := c.api.CreateSpeech(ctx, goopenai.CreateSpeechRequest{
		Model:          goopenai.SpeechModel(model),
		Input:          req.Prompt,
		Voice:          goopenai.SpeechVoice(c.cfg.Voice),
		ResponseFormat: goopenai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return generation.MediaResult{}, fail(span, err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return generation.MediaResult{}, fail(span, fmt.Errorf("read speech body: %w", err))
	}
	if len(audio) == 0 {
		span.AddEvent("no audio returned")
		return generation.MediaResult{}, nil
	}
	return generation.MediaResult{URI: media.DataURI("audio/mpeg", audio)}, nil
}

// toDefinition converts the schema for strict mode, which requires every object to
// forbid additional properties.
func toDefinition(s *generation.Schema) jsonschema.Definition {
	def := jsonschema.Definition{
		Type:        dataType(s.Type),
		Description: s.Description,
		Required:    s.Required,
	}
	if s.Items != nil {
		items := toDefinition(s.Items)
		def.Items = &items
	}
	if s.Type == generation.TypeObject {
		def.AdditionalProperties = false
		def.Properties = make(map[string]jsonschema.Definition, len(s.Properties))
		for name, prop := range s.Properties {
			def.Properties[name] = toDefinition(prop)
		}
	}
	return def
}

func dataType(t generation.SchemaType) jsonschema.DataType {
	switch t {
	case generation.TypeObject:
		return jsonschema.Object
	case generation.TypeArray:
		return jsonschema.Array
	case generation.TypeNumber:
		return jsonschema.Number
	case generation.TypeInteger:
		return jsonschema.Integer
	}
	return jsonschema.String
}

func pick(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
