package gemini

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"example.com/gymgenius/internal/domain"
	"example.com/gymgenius/internal/generation"
	"example.com/gymgenius/internal/media"
	"example.com/gymgenius/internal/prompts"
)

type fakeModels struct {
	mu sync.Mutex

	contentResp *genai.GenerateContentResponse
	contentErr  error
	imagesResp  *genai.GenerateImagesResponse
	imagesErr   error

	contentModels  []string
	contentConfigs []*genai.GenerateContentConfig
	prompts        []string
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contentModels = append(f.contentModels, model)
	f.contentConfigs = append(f.contentConfigs, config)
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompts = append(f.prompts, contents[0].Parts[0].Text)
	}
	return f.contentResp, f.contentErr
}

func (f *fakeModels) GenerateImages(_ context.Context, model, prompt string, _ *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.imagesResp, f.imagesErr
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: "model"}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

var testConfig = Config{
	TextModel:  "gemini-2.5-flash",
	ImageModel: "imagen-4.0-fast-generate-001",
	AudioModel: "gemini-2.5-flash-preview-tts",
	Voice:      "Algenib",
}

func TestStructuredRequestUsesJSONModeAndSchema(t *testing.T) {
	fake := &fakeModels{contentResp: textResponse(`{"tips":[`, `{"topic":"diet","tip":"a","advice":"b"}]}`)}
	client := newClient(fake, testConfig, prompts.MustLoad())

	raw, err := client.GenerateStructured(context.Background(), generation.StructuredRequest{
		Template: prompts.MotivationalTips,
		Params:   map[string]any{"topics": []string{"diet"}},
		Schema:   generation.TipsSchema(),
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"tips":[{"topic":"diet","tip":"a","advice":"b"}]}`, string(raw))

	require.Equal(t, "gemini-2.5-flash", fake.contentModels[0])
	cfg := fake.contentConfigs[0]
	require.Equal(t, "application/json", cfg.ResponseMIMEType)
	require.Equal(t, genai.TypeObject, cfg.ResponseSchema.Type)
	require.Equal(t, genai.TypeArray, cfg.ResponseSchema.Properties["tips"].Type)
	require.Equal(t, []string{"topic", "tip", "advice"}, cfg.ResponseSchema.Properties["tips"].Items.PropertyOrdering)
	require.Contains(t, fake.prompts[0], "- diet")
}

func TestStructuredEmptyResponse(t *testing.T) {
	fake := &fakeModels{contentResp: &genai.GenerateContentResponse{}}
	client := newClient(fake, testConfig, prompts.MustLoad())

	_, err := client.GenerateStructured(context.Background(), generation.StructuredRequest{
		Template: prompts.MotivationalTips,
		Params:   map[string]any{"topics": []string{"diet"}},
	})
	require.ErrorIs(t, err, domain.ErrEmptyResult)
}

func TestStructuredUpstreamError(t *testing.T) {
	fake := &fakeModels{contentErr: errors.New("429 resource exhausted")}
	client := newClient(fake, testConfig, prompts.MustLoad())

	_, err := client.GenerateStructured(context.Background(), generation.StructuredRequest{
		Template: prompts.MotivationalTips,
		Params:   map[string]any{"topics": []string{"diet"}},
	})
	require.ErrorContains(t, err, "429")
}

func TestImageBecomesDataURI(t *testing.T) {
	fake := &fakeModels{imagesResp: &genai.GenerateImagesResponse{
		GeneratedImages: []*genai.GeneratedImage{{Image: &genai.Image{ImageBytes: []byte{1, 2, 3}, MIMEType: "image/png"}}},
	}}
	client := newClient(fake, testConfig, prompts.MustLoad())

	res, err := client.GenerateMedia(context.Background(), generation.MediaRequest{Kind: domain.MediaImage, Prompt: "Fitness exercise: Push-ups"})
	require.NoError(t, err)
	require.Equal(t, media.DataURI("image/png", []byte{1, 2, 3}), res.URI)
}

func TestImageWithoutArtifactIsEmptyURI(t *testing.T) {
	fake := &fakeModels{imagesResp: &genai.GenerateImagesResponse{}}
	client := newClient(fake, testConfig, prompts.MustLoad())

	res, err := client.GenerateMedia(context.Background(), generation.MediaRequest{Kind: domain.MediaImage, Prompt: "x"})
	require.NoError(t, err)
	require.Empty(t, res.URI)
}

func TestSpeechFramedAsWAV(t *testing.T) {
	pcm := make([]byte, 96)
	fake := &fakeModels{contentResp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []*genai.Part{{InlineData: &genai.Blob{Data: pcm, MIMEType: "audio/L16;codec=pcm;rate=16000"}}}},
	}}}}
	client := newClient(fake, testConfig, prompts.MustLoad())

	res, err := client.GenerateMedia(context.Background(), generation.MediaRequest{Kind: domain.MediaAudio, Prompt: "Stand tall"})
	require.NoError(t, err)

	mimeType, wav, err := media.DecodeDataURI(res.URI)
	require.NoError(t, err)
	require.Equal(t, "audio/wav", mimeType)
	require.Len(t, wav, 44+len(pcm))
	require.Equal(t, uint32(16000), binary.LittleEndian.Uint32(wav[24:28]))

	cfg := fake.contentConfigs[0]
	require.Equal(t, []string{"AUDIO"}, cfg.ResponseModalities)
	require.Equal(t, "Algenib", cfg.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName)
	require.Equal(t, "gemini-2.5-flash-preview-tts", fake.contentModels[0])
}

func TestUnsupportedMediaKind(t *testing.T) {
	client := newClient(&fakeModels{}, testConfig, prompts.MustLoad())
	_, err := client.GenerateMedia(context.Background(), generation.MediaRequest{Kind: "video"})
	require.Error(t, err)
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(context.Background(), Config{}, prompts.MustLoad())
	require.Error(t, err)
}
