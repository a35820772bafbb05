// Package domain defines the plan data model and error taxonomy of the generation service.
package domain

import (
	"fmt"
	"strings"
)

// UserProfile is the fitness and diet profile submitted by the user.
type UserProfile struct {
	Name               string  `json:"name" toml:"name"`
	Age                float64 `json:"age" toml:"age"`
	Gender             string  `json:"gender" toml:"gender"`
	Height             float64 `json:"height" toml:"height"`
	Weight             float64 `json:"weight" toml:"weight"`
	FitnessGoals       string  `json:"fitnessGoals" toml:"fitness_goals"`
	WorkoutLocation    string  `json:"workoutLocation" toml:"workout_location"`
	AvailableEquipment string  `json:"availableEquipment" toml:"available_equipment"`
	ExperienceLevel    string  `json:"experienceLevel" toml:"experience_level"`
	DaysPerWeek        int     `json:"daysPerWeek" toml:"days_per_week"`
	WorkoutType        string  `json:"workoutType" toml:"workout_type"`
	DietaryPreferences string  `json:"dietaryPreferences" toml:"dietary_preferences"`
	MealCount          int     `json:"mealCount" toml:"meal_count"`
}

// Validate ensures the profile can be submitted for generation.
func (p UserProfile) Validate() error {
	var problems []string
	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "name is required")
	}
	if p.Age <= 0 {
		problems = append(problems, "age must be a positive number")
	}
	if p.Height <= 0 {
		problems = append(problems, "height must be a positive number")
	}
	if p.Weight <= 0 {
		problems = append(problems, "weight must be a positive number")
	}
	if strings.TrimSpace(p.Gender) == "" {
		problems = append(problems, "gender is required")
	}
	if strings.TrimSpace(p.FitnessGoals) == "" {
		problems = append(problems, "fitnessGoals is required")
	}
	if strings.TrimSpace(p.AvailableEquipment) == "" {
		problems = append(problems, "availableEquipment is required")
	}
	if p.DaysPerWeek < 1 || p.DaysPerWeek > 7 {
		problems = append(problems, fmt.Sprintf("daysPerWeek must be between 1 and 7, got %d", p.DaysPerWeek))
	}
	if p.MealCount < 1 || p.MealCount > 5 {
		problems = append(problems, fmt.Sprintf("mealCount must be between 1 and 5, got %d", p.MealCount))
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// BodyStats holds the profile fields shared by both plan requests.
type BodyStats struct {
	Age          float64
	Gender       string
	Height       float64
	Weight       float64
	FitnessGoals string
}

func (b BodyStats) params() map[string]any {
	return map[string]any{
		"age":          b.Age,
		"gender":       b.Gender,
		"height":       b.Height,
		"weight":       b.Weight,
		"fitnessGoals": b.FitnessGoals,
	}
}

// WorkoutInput is the reduced profile view used to request a workout plan.
type WorkoutInput struct {
	BodyStats
	WorkoutLocation    string
	AvailableEquipment string
	ExperienceLevel    string
	DaysPerWeek        int
	WorkoutType        string
}

// Params returns the named template parameters for the workout prompt.
func (w WorkoutInput) Params() map[string]any {
	out := w.BodyStats.params()
	out["workoutLocation"] = w.WorkoutLocation
	out["availableEquipment"] = w.AvailableEquipment
	out["experienceLevel"] = w.ExperienceLevel
	out["daysPerWeek"] = w.DaysPerWeek
	out["workoutType"] = w.WorkoutType
	return out
}

// DietInput is the reduced profile view used to request a diet plan.
type DietInput struct {
	BodyStats
	DietaryPreferences string
	MealCount          int
}

// Params returns the named template parameters for the diet prompt.
func (d DietInput) Params() map[string]any {
	out := d.BodyStats.params()
	out["dietaryPreferences"] = d.DietaryPreferences
	out["mealCount"] = d.MealCount
	return out
}

func (p UserProfile) bodyStats() BodyStats {
	return BodyStats{
		Age:          p.Age,
		Gender:       p.Gender,
		Height:       p.Height,
		Weight:       p.Weight,
		FitnessGoals: p.FitnessGoals,
	}
}

// WorkoutInput derives the workout request view.
func (p UserProfile) WorkoutInput() WorkoutInput {
	return WorkoutInput{
		BodyStats:          p.bodyStats(),
		WorkoutLocation:    p.WorkoutLocation,
		AvailableEquipment: p.AvailableEquipment,
		ExperienceLevel:    p.ExperienceLevel,
		DaysPerWeek:        p.DaysPerWeek,
		WorkoutType:        p.WorkoutType,
	}
}

// DietInput derives the diet request view.
func (p UserProfile) DietInput() DietInput {
	return DietInput{
		BodyStats:          p.bodyStats(),
		DietaryPreferences: p.DietaryPreferences,
		MealCount:          p.MealCount,
	}
}
