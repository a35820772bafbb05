package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"example.com/gymgenius/internal/domain"
)

func newTipsCommand(env *Env) *cobra.Command {
	var (
		read int
		out  string
	)

	cmd := &cobra.Command{
		Use:   "tips [topic...]",
		Short: "Print one motivational tip per topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			topics := args
			if len(topics) == 0 {
				topics = env.Config.TipTopics
			}

			ctx := cmd.Context()
			toolkit, err := env.NewToolkit(ctx)
			if err != nil {
				return fmt.Errorf("build generation client: %w", err)
			}
			tips := toolkit.Tips.GenerateOrEmpty(ctx, topics)
			printTips(env.Out, tips)

			if read == 0 {
				return nil
			}
			if read < 0 || read > len(tips) {
				return &domain.ValidationError{Problems: []string{fmt.Sprintf("--read must be between 1 and %d, got %d", len(tips), read)}}
			}
			tip := tips[read-1]
			uri, err := toolkit.Audio.Synthesize(ctx, tip.ReadAloudText())
			if err != nil {
				return err
			}
			return writeArtifact(env, uri, out, "tip-"+slug(tip.Topic))
		},
	}

	cmd.Flags().IntVarP(&read, "read", "r", 0, "narrate the Nth tip to an audio file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file for --read (defaults to tip-<topic>.<ext>)")
	return cmd
}
