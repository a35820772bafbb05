package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"example.com/gymgenius/internal/domain"
)

const ruleWidth = 60

func printBundle(w io.Writer, bundle domain.PlanBundle) {
	green := color.New(color.FgGreen).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	workout := bundle.WorkoutPlan
	fmt.Fprintf(w, "\n%s\n", green(strings.ToUpper(workout.PlanTitle)))
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))
	for _, day := range workout.WeeklySchedule {
		fmt.Fprintf(w, "%s %d: %s\n", yellow("Day"), day.Day, day.Focus)
		if len(day.Exercises) == 0 {
			fmt.Fprintln(w, "   rest")
			continue
		}
		for i, ex := range day.Exercises {
			fmt.Fprintf(w, "   %d. %s  %s x %s  %s %s\n", i+1, ex.Name, ex.Sets, ex.Reps, cyan("rest"), ex.Rest)
		}
	}

	diet := bundle.DietPlan
	fmt.Fprintf(w, "\n%s\n", green(strings.ToUpper(diet.PlanTitle)))
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))
	for _, day := range diet.DailyPlans {
		fmt.Fprintf(w, "%s %d: %s (%s kcal)\n", yellow("Day"), day.Day, day.Title, formatCalories(day.DailySummary.TotalCalories))
		for _, meal := range day.Meals {
			fmt.Fprintf(w, "   - %s: %s (%s kcal)\n", meal.Name, meal.Description, formatCalories(meal.Calories))
		}
		if day.DailySummary.Notes != "" {
			fmt.Fprintf(w, "   %s: %s\n", cyan("Notes"), day.DailySummary.Notes)
		}
	}
}

func printTips(w io.Writer, tips []domain.Tip) {
	if len(tips) == 0 {
		fmt.Fprintln(w, "No tips available right now.")
		return
	}
	cyan := color.New(color.FgCyan).SprintFunc()
	for _, tip := range tips {
		fmt.Fprintf(w, "%s %s\n   %s\n", cyan("["+tip.Topic+"]"), tip.Tip, tip.Advice)
	}
}

func formatCalories(v float64) string {
	return fmt.Sprintf("%.0f", v)
}
