// Package cli implements the gymgenius command line.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"example.com/gymgenius/internal/config"
	"example.com/gymgenius/internal/generation"
	"example.com/gymgenius/internal/planstore"
)

// Env carries the collaborators the commands resolve lazily, so commands that only
// touch the plan slot run without generation credentials.
type Env struct {
	Out    io.Writer
	Err    io.Writer
	Logger *zap.Logger
	Config config.Config

	NewToolkit func(ctx context.Context) (*generation.Toolkit, error)
	OpenStore  func(ctx context.Context) (*planstore.Store, func(), error)
}

// NewRootCommand assembles the command tree.
func NewRootCommand(env *Env) *cobra.Command {
	if env.Out == nil {
		env.Out = os.Stdout
	}
	if env.Err == nil {
		env.Err = os.Stderr
	}
	if env.Logger == nil {
		env.Logger = zap.NewNop()
	}

	root := &cobra.Command{
		Use:           "gymgenius",
		Short:         "Generate personalised workout and diet plans",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(env.Out)
	root.SetErr(env.Err)

	root.AddCommand(
		newGenerateCommand(env),
		newPlanCommand(env),
		newTipsCommand(env),
		newImageCommand(env),
		newAudioCommand(env),
	)
	return root
}

