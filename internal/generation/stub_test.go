package generation

import (
	"context"
	"encoding/json"
	"sync"

	"example.com/gymgenius/internal/domain"
)

// stubClient answers structured requests by template id and media requests by prompt.
type stubClient struct {
	mu sync.Mutex

	structured map[string]func(StructuredRequest) (json.RawMessage, error)
	media      func(MediaRequest) (MediaResult, error)

	structuredCalls []StructuredRequest
	mediaCalls      []MediaRequest
}

func newStubClient() *stubClient {
	return &stubClient{structured: make(map[string]func(StructuredRequest) (json.RawMessage, error))}
}

func (c *stubClient) GenerateStructured(_ context.Context, req StructuredRequest) (json.RawMessage, error) {
	c.mu.Lock()
	c.structuredCalls = append(c.structuredCalls, req)
	fn := c.structured[req.Template]
	c.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(req)
}

func (c *stubClient) GenerateMedia(_ context.Context, req MediaRequest) (MediaResult, error) {
	c.mu.Lock()
	c.mediaCalls = append(c.mediaCalls, req)
	fn := c.media
	c.mu.Unlock()
	if fn == nil {
		return MediaResult{}, nil
	}
	return fn(req)
}

func (c *stubClient) mediaPrompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.mediaCalls))
	for _, call := range c.mediaCalls {
		out = append(out, call.Prompt)
	}
	return out
}

func (c *stubClient) structuredCallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.structuredCalls)
}

func respondJSON(v any) func(StructuredRequest) (json.RawMessage, error) {
	return func(StructuredRequest) (json.RawMessage, error) {
		data, err := json.Marshal(v)
		return data, err
	}
}

func respondErr(err error) func(StructuredRequest) (json.RawMessage, error) {
	return func(StructuredRequest) (json.RawMessage, error) {
		return nil, err
	}
}

// stubPlans is a PlanSource with scripted halves.
type stubPlans struct {
	workout    *domain.WorkoutPlan
	workoutErr error
	diet       *domain.DietPlan
	dietErr    error

	mu        sync.Mutex
	dietCalls int
	workCalls int
}

func (s *stubPlans) Workout(context.Context, domain.WorkoutInput) (*domain.WorkoutPlan, error) {
	s.mu.Lock()
	s.workCalls++
	s.mu.Unlock()
	return s.workout, s.workoutErr
}

func (s *stubPlans) Diet(context.Context, domain.DietInput) (*domain.DietPlan, error) {
	s.mu.Lock()
	s.dietCalls++
	s.mu.Unlock()
	return s.diet, s.dietErr
}
