package cli

import (
	"errors"
	"strings"

	"example.com/gymgenius/internal/domain"
	"example.com/gymgenius/internal/planstore"
)

// Describe renders err the way the command line reports it to the user.
func Describe(err error) string {
	var (
		validation  *domain.ValidationError
		generation  *domain.GenerationError
		media       *domain.MediaGenerationError
		persistence *domain.PersistenceError
	)
	switch {
	case errors.As(err, &validation):
		return "Invalid input: " + strings.Join(validation.Problems, "; ")
	case errors.As(err, &generation):
		return generation.Message
	case errors.As(err, &media):
		return media.Message()
	case errors.As(err, &persistence):
		switch persistence.Op {
		case planstore.OpLoad:
			return "Could not load your plan."
		case planstore.OpClear:
			return "Could not clear your plan."
		}
		return domain.MessageSaveFailed
	}
	return err.Error()
}
