package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"example.com/gymgenius/internal/domain"
)

func newGenerateCommand(env *Env) *cobra.Command {
	var (
		profilePath string
		save        bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a seven day workout and diet plan from a profile file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if profilePath == "" {
				return errors.New("profile file must be provided via --profile flag")
			}
			profile, err := readProfile(profilePath)
			if err != nil {
				return err
			}
			if err := profile.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			toolkit, err := env.NewToolkit(ctx)
			if err != nil {
				return fmt.Errorf("build generation client: %w", err)
			}

			fmt.Fprintf(env.Out, "Generating plans for %s...\n", profile.Name)
			bundle, err := toolkit.Plans.GeneratePlans(ctx, profile)
			if err != nil {
				return err
			}
			printBundle(env.Out, bundle)

			if !save {
				return nil
			}
			store, closeStore, err := env.OpenStore(ctx)
			if err != nil {
				return fmt.Errorf("open plan store: %w", err)
			}
			defer closeStore()
			if err := store.Save(ctx, profile, bundle); err != nil {
				return err
			}
			green := color.New(color.FgGreen).SprintFunc()
			fmt.Fprintln(env.Out, green("Plan saved."))
			return nil
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "profile file (.toml or .json)")
	cmd.Flags().BoolVar(&save, "save", false, "save the generated plan as the current plan")
	return cmd
}

// readProfile decodes a profile by file extension; anything that is not .json is read as TOML.
func readProfile(path string) (domain.UserProfile, error) {
	var profile domain.UserProfile
	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("read profile: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &profile); err != nil {
			return profile, fmt.Errorf("decode profile json: %w", err)
		}
		return profile, nil
	}
	if err := toml.Unmarshal(data, &profile); err != nil {
		return profile, fmt.Errorf("decode profile toml: %w", err)
	}
	return profile, nil
}
