package domain

import (
	"errors"
	"fmt"
	"strings"
)

// DaysInPlan is the number of daily entries in every generated plan.
const DaysInPlan = 7

// Exercise is one prescribed movement; sets, reps and rest are free-form.
type Exercise struct {
	Name string `json:"name"`
	Sets string `json:"sets"`
	Reps string `json:"reps"`
	Rest string `json:"rest"`
}

// DailyWorkout is one day of the weekly schedule. Rest days carry no exercises.
type DailyWorkout struct {
	Day       int        `json:"day"`
	Focus     string     `json:"focus"`
	Exercises []Exercise `json:"exercises"`
}

// WorkoutPlan is the generated weekly training schedule.
type WorkoutPlan struct {
	PlanTitle      string         `json:"planTitle"`
	WeeklySchedule []DailyWorkout `json:"weeklySchedule"`
}

// Validate checks the structural shape: seven entries with unique day numbers in 1..7.
func (w WorkoutPlan) Validate() error {
	days := make([]int, 0, len(w.WeeklySchedule))
	for _, d := range w.WeeklySchedule {
		days = append(days, d.Day)
	}
	if err := checkWeek(days); err != nil {
		return fmt.Errorf("workout plan: %w", err)
	}
	return nil
}

// TrainingDays counts the days that prescribe at least one exercise.
func (w WorkoutPlan) TrainingDays() int {
	n := 0
	for _, d := range w.WeeklySchedule {
		if len(d.Exercises) > 0 {
			n++
		}
	}
	return n
}

// Meal is one dish of a day.
type Meal struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Calories    float64 `json:"calories"`
}

// DailySummary totals a day of the diet plan.
type DailySummary struct {
	TotalCalories float64 `json:"totalCalories"`
	Notes         string  `json:"notes"`
}

// DailyDiet is one day of the diet plan.
type DailyDiet struct {
	Day          int          `json:"day"`
	Title        string       `json:"title"`
	Meals        []Meal       `json:"meals"`
	DailySummary DailySummary `json:"dailySummary"`
}

// DietPlan is the generated weekly diet.
type DietPlan struct {
	PlanTitle  string      `json:"planTitle"`
	DailyPlans []DailyDiet `json:"dailyPlans"`
}

// Validate checks seven unique days and non-negative calorie values.
func (d DietPlan) Validate() error {
	days := make([]int, 0, len(d.DailyPlans))
	for _, day := range d.DailyPlans {
		days = append(days, day.Day)
		for _, meal := range day.Meals {
			if meal.Calories < 0 {
				return fmt.Errorf("diet plan: day %d meal %q has negative calories", day.Day, meal.Name)
			}
		}
		if day.DailySummary.TotalCalories < 0 {
			return fmt.Errorf("diet plan: day %d has negative total calories", day.Day)
		}
	}
	if err := checkWeek(days); err != nil {
		return fmt.Errorf("diet plan: %w", err)
	}
	return nil
}

func checkWeek(days []int) error {
	if len(days) != DaysInPlan {
		return fmt.Errorf("expected %d days, got %d", DaysInPlan, len(days))
	}
	seen := make(map[int]struct{}, len(days))
	for _, day := range days {
		if day < 1 || day > DaysInPlan {
			return fmt.Errorf("day number %d out of range", day)
		}
		if _, dup := seen[day]; dup {
			return fmt.Errorf("duplicate day number %d", day)
		}
		seen[day] = struct{}{}
	}
	return nil
}

// PlanBundle pairs the workout and diet plans of one successful generation.
type PlanBundle struct {
	WorkoutPlan *WorkoutPlan `json:"workoutPlan"`
	DietPlan    *DietPlan    `json:"dietPlan"`
}

// Validate requires both halves of the bundle to be present and well formed.
func (b PlanBundle) Validate() error {
	if b.WorkoutPlan == nil || b.DietPlan == nil {
		return errors.New("plan bundle requires both workoutPlan and dietPlan")
	}
	if err := b.WorkoutPlan.Validate(); err != nil {
		return err
	}
	return b.DietPlan.Validate()
}

// StoredPlan is the durable record kept in the single plan slot.
type StoredPlan struct {
	Profile *UserProfile `json:"profile"`
	Bundle  *PlanBundle  `json:"bundle"`
}

// Validate reports whether the record is a complete, self-consistent pair.
func (s StoredPlan) Validate() error {
	var problems []string
	if s.Profile == nil {
		problems = append(problems, "profile is required")
	} else if err := s.Profile.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			problems = append(problems, verr.Problems...)
		}
	}
	if s.Bundle == nil {
		problems = append(problems, "bundle is required")
	} else if err := s.Bundle.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Tip is one motivational tip for a requested topic.
type Tip struct {
	Topic  string `json:"topic"`
	Tip    string `json:"tip"`
	Advice string `json:"advice"`
}

// ReadAloudText is the narration used when a tip is read aloud.
func (t Tip) ReadAloudText() string {
	return t.Tip + " - " + t.Advice
}

// SubjectCategory distinguishes exercise subjects from meal subjects.
type SubjectCategory string

const (
	CategoryExercise SubjectCategory = "exercise"
	CategoryMeal     SubjectCategory = "meal"
)

// ParseSubjectCategory converts user input into a SubjectCategory.
func ParseSubjectCategory(raw string) (SubjectCategory, error) {
	switch SubjectCategory(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryExercise:
		return CategoryExercise, nil
	case CategoryMeal:
		return CategoryMeal, nil
	}
	return "", &ValidationError{Problems: []string{fmt.Sprintf("unknown subject category %q", raw)}}
}

// Label is the category prefix used by the simple image prompt.
func (c SubjectCategory) Label() string {
	if c == CategoryMeal {
		return "Healthy food"
	}
	return "Fitness exercise"
}

// Subject names an exercise or meal for on-demand image synthesis.
type Subject struct {
	Name     string
	Category SubjectCategory
}

// Validate ensures the subject can be illustrated.
func (s Subject) Validate() error {
	var problems []string
	if strings.TrimSpace(s.Name) == "" {
		problems = append(problems, "subject name is required")
	}
	if s.Category != CategoryExercise && s.Category != CategoryMeal {
		problems = append(problems, fmt.Sprintf("unknown subject category %q", s.Category))
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
