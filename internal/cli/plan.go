package cli

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newPlanCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Inspect or clear the saved plan",
	}
	cmd.AddCommand(newPlanShowCommand(env), newPlanClearCommand(env))
	return cmd
}

func newPlanShowCommand(env *Env) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the saved plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closeStore, err := env.OpenStore(ctx)
			if err != nil {
				return fmt.Errorf("open plan store: %w", err)
			}
			defer closeStore()

			stored, err := store.Load(ctx)
			if err != nil {
				return err
			}
			if stored == nil {
				fmt.Fprintln(env.Out, "No saved plan. Run `gymgenius generate --save` to create one.")
				return nil
			}
			if asJSON {
				enc := json.NewEncoder(env.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(stored)
			}

			cyan := color.New(color.FgCyan).SprintFunc()
			p := stored.Profile
			fmt.Fprintf(env.Out, "%s: %s, %d days per week, %d meals per day\n", cyan("Profile"), p.Name, p.DaysPerWeek, p.MealCount)
			printBundle(env.Out, *stored.Bundle)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored record as JSON")
	return cmd
}

func newPlanClearCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closeStore, err := env.OpenStore(ctx)
			if err != nil {
				return fmt.Errorf("open plan store: %w", err)
			}
			defer closeStore()

			if err := store.Clear(ctx); err != nil {
				return err
			}
			green := color.New(color.FgGreen).SprintFunc()
			fmt.Fprintln(env.Out, green("Saved plan cleared."))
			return nil
		},
	}
}
