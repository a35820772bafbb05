package generation

import (
	"go.uber.org/zap"

	"example.com/gymgenius/internal/prompts"
)

// Toolkit bundles the generation components built over one upstream client.
type Toolkit struct {
	Plans  *Orchestrator
	Tips   *TipsGenerator
	Images *ImageSynthesizer
	Audio  *AudioSynthesizer
}

// Models names the media models used by a Toolkit. Empty values defer to the client defaults.
type Models struct {
	Image string
	Audio string
}

// NewToolkit wires every component to client.
func NewToolkit(client Client, catalog *prompts.Catalog, models Models, logger *zap.Logger) *Toolkit {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Toolkit{
		Plans:  NewOrchestrator(NewPlanGenerator(client, WithLogger(logger)), WithLogger(logger)),
		Tips:   NewTipsGenerator(client, WithLogger(logger)),
		Images: NewImageSynthesizer(client, catalog, WithModel(models.Image), WithLogger(logger.Named("images"))),
		Audio:  NewAudioSynthesizer(client, WithModel(models.Audio), WithLogger(logger.Named("audio"))),
	}
}
