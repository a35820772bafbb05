package generation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"example.com/gymgenius/internal/domain"
	"example.com/gymgenius/internal/prompts"
)

// TipsGenerator requests one motivational tip per topic.
type TipsGenerator struct {
	client StructuredClient
	logger *zap.Logger
}

// NewTipsGenerator constructs a TipsGenerator.
func NewTipsGenerator(client StructuredClient, opts ...Option) *TipsGenerator {
	s := applyOptions(opts)
	return &TipsGenerator{client: client, logger: s.logger}
}

type tipsEnvelope struct {
	Tips []domain.Tip `json:"tips"`
}

// Generate returns exactly one tip per topic, in topic order.
func (g *TipsGenerator) Generate(ctx context.Context, topics []string) (tips []domain.Tip, err error) {
	if len(topics) == 0 {
		return nil, &domain.ValidationError{Problems: []string{"at least one topic is required"}}
	}
	for _, topic := range topics {
		if strings.TrimSpace(topic) == "" {
			return nil, &domain.ValidationError{Problems: []string{"topics must be non-empty"}}
		}
	}

	start := time.Now()
	defer func() { observe(kindTips, start, err) }()

	raw, err := g.client.GenerateStructured(ctx, StructuredRequest{
		Template: prompts.MotivationalTips,
		Params:   map[string]any{"topics": topics},
		Schema:   TipsSchema(),
	})
	if err != nil {
		return nil, &domain.GenerationError{Message: domain.MessageTipsFailed, Err: err}
	}

	var envelope tipsEnvelope
	if err = decodeStructured(raw, &envelope); err != nil {
		return nil, &domain.GenerationError{Message: domain.MessageTipsFailed, Err: err}
	}
	if len(envelope.Tips) != len(topics) {
		err = fmt.Errorf("expected %d tips, got %d", len(topics), len(envelope.Tips))
		return nil, &domain.GenerationError{Message: domain.MessageTipsFailed, Err: err}
	}
	return alignTips(topics, envelope.Tips), nil
}

// GenerateOrEmpty is Generate with failures degraded to an empty sequence.
func (g *TipsGenerator) GenerateOrEmpty(ctx context.Context, topics []string) []domain.Tip {
	tips, err := g.Generate(ctx, topics)
	if err != nil {
		g.logger.Warn("tips unavailable, continuing without them", zap.Strings("topics", topics), zap.Error(err))
		return []domain.Tip{}
	}
	return tips
}

// alignTips orders tips by the requested topics. When topic names do not pair up
// one-to-one the upstream order is kept.
func alignTips(topics []string, tips []domain.Tip) []domain.Tip {
	byTopic := make(map[string]int, len(tips))
	for i, tip := range tips {
		key := normalizeTopic(tip.Topic)
		if _, dup := byTopic[key]; dup {
			return tips
		}
		byTopic[key] = i
	}

	out := make([]domain.Tip, 0, len(topics))
	for _, topic := range topics {
		i, ok := byTopic[normalizeTopic(topic)]
		if !ok {
			return tips
		}
		out = append(out, tips[i])
	}
	return out
}

func normalizeTopic(topic string) string {
	return strings.ToLower(strings.TrimSpace(topic))
}

// TipsBoard prefetches tips once and serves them to views rendered before a plan exists.
type TipsBoard struct {
	generator *TipsGenerator
	topics    []string

	once  sync.Once
	ready chan struct{}

	mu   sync.RWMutex
	tips []domain.Tip
}

// NewTipsBoard constructs a board for the given topics.
func NewTipsBoard(generator *TipsGenerator, topics []string) *TipsBoard {
	return &TipsBoard{
		generator: generator,
		topics:    append([]string(nil), topics...),
		ready:     make(chan struct{}),
		tips:      []domain.Tip{},
	}
}

// Prefetch runs the tips request. Only the first call does any work.
func (b *TipsBoard) Prefetch(ctx context.Context) {
	b.once.Do(func() {
		defer close(b.ready)
		tips := b.generator.GenerateOrEmpty(ctx, b.topics)
		b.mu.Lock()
		b.tips = tips
		b.mu.Unlock()
	})
}

// Ready is closed when the prefetch has finished.
func (b *TipsBoard) Ready() <-chan struct{} {
	return b.ready
}

// Tips returns a copy of the prefetched tips; empty until the prefetch succeeds.
func (b *TipsBoard) Tips() []domain.Tip {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Tip, len(b.tips))
	copy(out, b.tips)
	return out
}
