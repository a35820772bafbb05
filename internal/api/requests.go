package api

import (
	"strings"

	"example.com/gymgenius/internal/domain"
)

// GeneratePlansResponse is the body returned by POST /v1/plans.
type GeneratePlansResponse struct {
	WorkoutPlan *domain.WorkoutPlan `json:"workoutPlan"`
	DietPlan    *domain.DietPlan    `json:"dietPlan"`
	Saved       bool                `json:"saved"`
	SaveError   string              `json:"saveError,omitempty"`
}

// TipsResponse is the body returned by GET /v1/tips.
type TipsResponse struct {
	Tips []domain.Tip `json:"tips"`
}

// ImageRequest is the payload for POST /v1/images.
type ImageRequest struct {
	Name     string `json:"subject"`
	Category string `json:"category"`
	View     string `json:"view,omitempty"`
}

// Subject validates the request and converts it to a domain subject.
func (r ImageRequest) Subject() (domain.Subject, error) {
	category, err := domain.ParseSubjectCategory(r.Category)
	if err != nil {
		return domain.Subject{}, err
	}
	subject := domain.Subject{Name: strings.TrimSpace(r.Name), Category: category}
	if err := subject.Validate(); err != nil {
		return domain.Subject{}, err
	}
	return subject, nil
}

// ImageResponse carries the generated image URI.
type ImageResponse struct {
	ImageURL string `json:"imageUrl"`
}

// AudioRequest is the payload for POST /v1/audio.
type AudioRequest struct {
	Text string `json:"text"`
	View string `json:"view,omitempty"`
}

// Validate ensures request correctness.
func (r AudioRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return &domain.ValidationError{Problems: []string{"text is required"}}
	}
	return nil
}

// AudioResponse carries the generated audio URI.
type AudioResponse struct {
	AudioURL string `json:"audioUrl"`
}
