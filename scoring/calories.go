package scoring

import (
	"fmt"
	"math"
	"slices"

	"nutri-lens/errs"
	"nutri-lens/models"
)

var activityMultipliers = map[models.ActivityLevel]float64{
	models.ActivitySedentary:        1.2,
	models.ActivityLightlyActive:    1.375,
	models.ActivityModeratelyActive: 1.55,
	models.ActivityVeryActive:       1.725,
	models.ActivityExtremelyActive:  1.9,
}

const (
	weightGainSurplus = 300
	weightLossDeficit = -400
)

// DailyCalorieNeeds estimates daily energy needs with the Harris-Benedict equation.
func DailyCalorieNeeds(sex models.BiologicalSex, weightKg, heightCm float64, age int, activity models.ActivityLevel, goals []models.HealthGoal) (int, error) {
	multiplier, ok := activityMultipliers[activity]
	if !ok {
		return 0, fmt.Errorf("%w: unknown activity level %q", errs.ErrInvalidInput, activity)
	}

	var bmr float64
	switch sex {
	case models.SexMale:
		bmr = 66 + 9.6*weightKg + 4.799*heightCm - 5.677*float64(age)
	case models.SexFemale:
		bmr = 655 + 13.7*weightKg + 5*heightCm - 6.8*float64(age)
	default:
		return 0, fmt.Errorf("%w: unknown biological sex %q", errs.ErrInvalidInput, sex)
	}

	extra := 0.0
	if slices.Contains(goals, models.GoalWeightGain) {
		extra = weightGainSurplus
	} else if slices.Contains(goals, models.GoalWeightLoss) {
		extra = weightLossDeficit
	}

	return int(math.Round(bmr*multiplier + extra)), nil
}
