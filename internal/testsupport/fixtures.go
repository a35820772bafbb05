// Package testsupport provides fixtures shared by the package tests.
package testsupport

import (
	"fmt"

	"example.com/gymgenius/internal/domain"
)

// Profile returns a valid profile training four days a week with three meals a day.
func Profile() domain.UserProfile {
	return domain.UserProfile{
		Name:               "Ana",
		Age:                31,
		Gender:             "female",
		Height:             168,
		Weight:             62.5,
		FitnessGoals:       "build strength",
		WorkoutLocation:    "gym",
		AvailableEquipment: "dumbbells, barbell, bench",
		ExperienceLevel:    "intermediate",
		DaysPerWeek:        4,
		WorkoutType:        "strength",
		DietaryPreferences: "vegetarian",
		MealCount:          3,
	}
}

// WorkoutPlan returns a seven day schedule with the given number of training days.
func WorkoutPlan(trainingDays int) *domain.WorkoutPlan {
	plan := &domain.WorkoutPlan{PlanTitle: "Strength Base"}
	for day := 1; day <= domain.DaysInPlan; day++ {
		entry := domain.DailyWorkout{Day: day, Focus: "Rest", Exercises: []domain.Exercise{}}
		if day <= trainingDays {
			entry.Focus = fmt.Sprintf("Session %d", day)
			entry.Exercises = []domain.Exercise{
				{Name: "Push-ups", Sets: "3", Reps: "12", Rest: "60s"},
				{Name: "Goblet Squat", Sets: "4", Reps: "10", Rest: "90s"},
			}
		}
		plan.WeeklySchedule = append(plan.WeeklySchedule, entry)
	}
	return plan
}

// DietPlan returns a seven day diet with two meals per day.
func DietPlan() *domain.DietPlan {
	plan := &domain.DietPlan{PlanTitle: "Green Week"}
	for day := 1; day <= domain.DaysInPlan; day++ {
		plan.DailyPlans = append(plan.DailyPlans, domain.DailyDiet{
			Day:   day,
			Title: fmt.Sprintf("Day %d", day),
			Meals: []domain.Meal{
				{Name: "Overnight oats", Description: "Oats with berries", Calories: 420},
				{Name: "Lentil bowl", Description: "Lentils, rice and greens", Calories: 650},
			},
			DailySummary: domain.DailySummary{TotalCalories: 1070, Notes: "Hydrate well"},
		})
	}
	return plan
}

// Bundle returns a complete bundle matching Profile.
func Bundle() domain.PlanBundle {
	return domain.PlanBundle{WorkoutPlan: WorkoutPlan(4), DietPlan: DietPlan()}
}
