package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/gymgenius/internal/domain"
	"example.com/gymgenius/internal/testsupport"
)

func TestProfileValidateListsEveryProblem(t *testing.T) {
	profile := testsupport.Profile()
	require.NoError(t, profile.Validate())

	profile.Name = "  "
	profile.Age = 0
	profile.DaysPerWeek = 8
	profile.MealCount = 0

	err := profile.Validate()
	require.True(t, domain.IsValidation(err))

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Problems, 4)
}

func TestProfileDerivesReducedViews(t *testing.T) {
	profile := testsupport.Profile()

	workout := profile.WorkoutInput().Params()
	require.Equal(t, 4, workout["daysPerWeek"])
	require.Equal(t, "gym", workout["workoutLocation"])
	require.NotContains(t, workout, "mealCount")

	diet := profile.DietInput().Params()
	require.Equal(t, 3, diet["mealCount"])
	require.Equal(t, "vegetarian", diet["dietaryPreferences"])
	require.NotContains(t, diet, "daysPerWeek")
	require.Equal(t, "build strength", diet["fitnessGoals"])
}

func TestWorkoutPlanValidate(t *testing.T) {
	plan := testsupport.WorkoutPlan(3)
	require.NoError(t, plan.Validate())
	require.Equal(t, 3, plan.TrainingDays())

	short := *plan
	short.WeeklySchedule = plan.WeeklySchedule[:6]
	require.ErrorContains(t, short.Validate(), "expected 7 days")

	dup := testsupport.WorkoutPlan(3)
	dup.WeeklySchedule[6].Day = 1
	require.ErrorContains(t, dup.Validate(), "duplicate day number 1")

	outOfRange := testsupport.WorkoutPlan(3)
	outOfRange.WeeklySchedule[0].Day = 9
	require.ErrorContains(t, outOfRange.Validate(), "out of range")
}

func TestDietPlanRejectsNegativeCalories(t *testing.T) {
	plan := testsupport.DietPlan()
	require.NoError(t, plan.Validate())

	plan.DailyPlans[2].Meals[0].Calories = -10
	require.ErrorContains(t, plan.Validate(), "negative calories")
}

func TestStoredPlanRequiresBothHalves(t *testing.T) {
	profile := testsupport.Profile()
	bundle := testsupport.Bundle()

	require.NoError(t, domain.StoredPlan{Profile: &profile, Bundle: &bundle}.Validate())

	err := domain.StoredPlan{Bundle: &bundle}.Validate()
	require.True(t, domain.IsValidation(err))
	require.ErrorContains(t, err, "profile is required")

	err = domain.StoredPlan{Profile: &profile, Bundle: &domain.PlanBundle{WorkoutPlan: bundle.WorkoutPlan}}.Validate()
	require.ErrorContains(t, err, "requires both")
}

func TestSubjectCategories(t *testing.T) {
	cat, err := domain.ParseSubjectCategory(" Meal ")
	require.NoError(t, err)
	require.Equal(t, domain.CategoryMeal, cat)
	require.Equal(t, "Healthy food", cat.Label())
	require.Equal(t, "Fitness exercise", domain.CategoryExercise.Label())

	_, err = domain.ParseSubjectCategory("dessert")
	require.True(t, domain.IsValidation(err))

	require.Error(t, domain.Subject{Name: "", Category: domain.CategoryExercise}.Validate())
	require.NoError(t, domain.Subject{Name: "Push-ups", Category: domain.CategoryExercise}.Validate())
}

func TestTipReadAloudText(t *testing.T) {
	tip := domain.Tip{Topic: "posture", Tip: "Stand tall", Advice: "Keep your shoulders back."}
	require.Equal(t, "Stand tall - Keep your shoulders back.", tip.ReadAloudText())
}

func TestErrorKindsUnwrap(t *testing.T) {
	cause := domain.ErrNoArtifact
	err := &domain.MediaGenerationError{Kind: domain.MediaImage, Subject: "Push-ups", Err: cause}
	require.ErrorIs(t, err, domain.ErrNoArtifact)
	require.Contains(t, err.Error(), "Push-ups")
	require.Equal(t, domain.MessageImageFailed, err.Message())

	audio := &domain.MediaGenerationError{Kind: domain.MediaAudio, Subject: "hello", Err: cause}
	require.Equal(t, domain.MessageAudioFailed, audio.Message())

	gen := &domain.GenerationError{Message: domain.MessagePlansFailed, Err: domain.ErrEmptyResult}
	require.ErrorIs(t, gen, domain.ErrEmptyResult)
	require.True(t, domain.IsGeneration(gen))
	require.False(t, domain.IsPersistence(gen))
}
