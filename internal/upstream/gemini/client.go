// Package gemini implements the generation client on the Google Gen AI SDK:
// Gemini JSON mode for structured content, Imagen for images and Gemini TTS for audio.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"example.com/gymgenius/internal/domain"
	"example.com/gymgenius/internal/generation"
	"example.com/gymgenius/internal/media"
	"example.com/gymgenius/internal/prompts"
)

const tracerName = "gymgenius/upstream/gemini"

// Config holds the models and voice used by the client.
type Config struct {
	APIKey     string
	TextModel  string
	ImageModel string
	AudioModel string
	Voice      string
}

// models is the subset of *genai.Models the client calls.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Option configures the client.
type Option func(*Client)

// WithLogger overrides the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client implements generation.Client against the Gemini API.
type Client struct {
	models  models
	catalog *prompts.Catalog
	cfg     Config
	logger  *zap.Logger
	tracer  trace.Tracer
}

// New connects to the Gemini API.
func New(ctx context.Context, cfg Config, catalog *prompts.Catalog, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return newClient(sdk.Models, cfg, catalog, opts...), nil
}

func newClient(m models, cfg Config, catalog *prompts.Catalog, opts ...Option) *Client {
	c := &Client{
		models:  m,
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

// GenerateStructured renders the template and requests JSON constrained by the schema.
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

	config := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	if req.Schema != nil {
		config.ResponseSchema = toSchema(req.Schema)
	}

	resp, err := c.models.GenerateContent(ctx, c.cfg.TextModel, genai.Text(prompt), config)
	if err != nil {
		c.logger.Error("gemini structured request failed", zap.String("template", req.Template), zap.Error(err))
		return nil, fail(span, err)
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return nil, fail(span, domain.ErrEmptyResult)
	}
	span.SetAttributes(attribute.Int("response.length", len(text)))
	return json.RawMessage(text), nil
}

// GenerateMedia dispatches by kind. A response without an artifact yields an empty URI.
func (c *Client) GenerateMedia(ctx context.Context, req generation.MediaRequest) (generation.MediaResult, error) {
	switch req.Kind {
	case domain.MediaImage:
		return c.generateImage(ctx, req)
	case domain.MediaAudio:
		return c.generateSpeech(ctx, req)
	}
	return generation.MediaResult{}, fmt.Errorf("gemini: unsupported media kind %q", req.Kind)
}

func (c *Client) generateImage(ctx context.Context, req generation.MediaRequest) (generation.MediaResult, error) {
	model := pick(req.Model, c.cfg.ImageModel)
	ctx, span := c.tracer.Start(ctx, "GenerateImage", trace.WithAttributes(attribute.String("gen_ai.request.model", model)))
	defer span.End()

	resp, err := c.models.GenerateImages(ctx, model, req.Prompt, &genai.GenerateImagesConfig{NumberOfImages: 1})
	if err != nil {
		return generation.MediaResult{}, fail(span, err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 {
		span.AddEvent("no image returned")
		return generation.MediaResult{}, nil
	}
	img := resp.GeneratedImages[0].Image
	if img == nil || len(img.ImageBytes) == 0 {
		span.AddEvent("empty image returned")
		return generation.MediaResult{}, nil
	}
	return generation.MediaResult{URI: media.DataURI(pick(img.MIMEType, "image/png"), img.ImageBytes)}, nil
}

func (c *Client) generateSpeech(ctx context.Context, req generation.MediaRequest) (generation.MediaResult, error) {
	model := pick(req.Model, c.cfg.AudioModel)
	ctx, span := c.tracer.Start(ctx, "GenerateSpeech", trace.WithAttributes(
		attribute.String("gen_ai.request.model", model),
		attribute.Int("input.length", len(req.Prompt)),
	))
	defer span.End()

	resp, err := c.models.GenerateContent(ctx, model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: c.cfg.Voice},
			},
		},
	})
	if err != nil {
		return generation.MediaResult{}, fail(span, err)
	}

	blob := firstInlineData(resp)
	if blob == nil || len(blob.Data) == 0 {
		span.AddEvent("no audio returned")
		return generation.MediaResult{}, nil
	}
	if strings.HasPrefix(blob.MIMEType, "audio/wav") {
		return generation.MediaResult{URI: media.DataURI("audio/wav", blob.Data)}, nil
	}

	wav, err := media.WAV(blob.Data, pcmFormat(blob.MIMEType))
	if err != nil {
		return generation.MediaResult{}, fail(span, err)
	}
	c.logger.Debug("framed speech as wav", zap.Int("pcm_size", len(blob.Data)), zap.Int("wav_size", len(wav)))
	return generation.MediaResult{URI: media.DataURI("audio/wav", wav)}, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func firstInlineData(resp *genai.GenerateContentResponse) *genai.Blob {
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil {
				return part.InlineData
			}
		}
	}
	return nil
}

// pcmFormat reads the sample rate from MIME parameters such as "audio/L16;codec=pcm;rate=24000".
func pcmFormat(mimeType string) media.PCMFormat {
	format := media.GeminiSpeechFormat
	for _, param := range strings.Split(mimeType, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if ok && key == "rate" {
			if rate, err := strconv.Atoi(value); err == nil && rate > 0 {
				format.SampleRate = rate
			}
		}
	}
	return format
}

func toSchema(s *generation.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:             schemaType(s.Type),
		Description:      s.Description,
		Required:         s.Required,
		PropertyOrdering: s.Order,
		Items:            toSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toSchema(prop)
		}
	}
	return out
}

func schemaType(t generation.SchemaType) genai.Type {
	switch t {
	case generation.TypeObject:
		return genai.TypeObject
	case generation.TypeArray:
		return genai.TypeArray
	case generation.TypeNumber:
		return genai.TypeNumber
	case generation.TypeInteger:
		return genai.TypeInteger
	}
	return genai.TypeString
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
