package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"example.com/gymgenius/internal/domain"
	"example.com/gymgenius/internal/media"
)

func newImageCommand(env *Env) *cobra.Command {
	var (
		category string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "image NAME",
		Short: "Illustrate an exercise or a meal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := domain.ParseSubjectCategory(category)
			if err != nil {
				return err
			}
			subject := domain.Subject{Name: strings.Join(args, " "), Category: parsed}

			ctx := cmd.Context()
			toolkit, err := env.NewToolkit(ctx)
			if err != nil {
				return fmt.Errorf("build generation client: %w", err)
			}
			uri, err := toolkit.Images.Synthesize(ctx, subject)
			if err != nil {
				return err
			}
			return writeArtifact(env, uri, out, slug(subject.Name))
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", string(domain.CategoryExercise), "exercise or meal")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (defaults to the subject name)")
	return cmd
}

func newAudioCommand(env *Env) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "audio TEXT",
		Short: "Narrate text to an audio file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			toolkit, err := env.NewToolkit(ctx)
			if err != nil {
				return fmt.Errorf("build generation client: %w", err)
			}
			uri, err := toolkit.Audio.Synthesize(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return writeArtifact(env, uri, out, "narration")
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (defaults to narration.<ext>)")
	return cmd
}

// writeArtifact saves a data URI to disk. Remote URIs are printed instead.
func writeArtifact(env *Env, uri, out, base string) error {
	mimeType, data, err := media.DecodeDataURI(uri)
	if errors.Is(err, media.ErrNotDataURI) {
		fmt.Fprintln(env.Out, uri)
		return nil
	}
	if err != nil {
		return err
	}
	if out == "" {
		out = base + media.Extension(mimeType)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(env.Out, "%s %s (%s, %d bytes)\n", green("Wrote"), out, mimeType, len(data))
	return nil
}

func slug(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	if len(fields) == 0 {
		return "image"
	}
	return strings.Join(fields, "-")
}
