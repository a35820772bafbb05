package domain

import (
	"errors"
	"fmt"
	"strings"
)

// User-facing messages surfaced by the presentation layer.
const (
	MessagePlansFailed = "Failed to generate plans. Please try again."
	MessageImageFailed = "Failed to generate image."
	MessageAudioFailed = "Failed to generate audio."
	MessageSaveFailed  = "Could not save your plan."
	MessageTipsFailed  = "Failed to generate tips."
)

var (
	// ErrEmptyResult is returned when the upstream service answers without a usable structured value.
	ErrEmptyResult = errors.New("upstream returned no structured result")
	// ErrNoArtifact is returned when a media response carries no artifact URI.
	ErrNoArtifact = errors.New("upstream returned no artifact")
)

// ValidationError reports malformed or incomplete input caught before any generation call.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// GenerationError reports a failed or unusable structured-content request.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// MediaKind identifies the artifact type of a media request.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
)

// MediaGenerationError reports a terminal image or audio failure for one subject.
type MediaGenerationError struct {
	Kind    MediaKind
	Subject string
	Err     error
}

func (e *MediaGenerationError) Error() string {
	return fmt.Sprintf("generate %s for %q: %v", e.Kind, e.Subject, e.Err)
}

func (e *MediaGenerationError) Unwrap() error { return e.Err }

// Message returns the fixed user-facing text for the failure.
func (e *MediaGenerationError) Message() string {
	if e.Kind == MediaAudio {
		return MessageAudioFailed
	}
	return MessageImageFailed
}

// PersistenceError reports a failed operation against the durable plan slot.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("plan slot %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsGeneration reports whether err is a *GenerationError.
func IsGeneration(err error) bool {
	var target *GenerationError
	return errors.As(err, &target)
}

// IsMediaGeneration reports whether err is a *MediaGenerationError.
func IsMediaGeneration(err error) bool {
	var target *MediaGenerationError
	return errors.As(err, &target)
}

// IsPersistence reports whether err is a *PersistenceError.
func IsPersistence(err error) bool {
	var target *PersistenceError
	return errors.As(err, &target)
}
