package models

// HealthDetail is a health condition tag used on users and on product suitability lists.
type HealthDetail string

const (
	HealthNormal         HealthDetail = "NORMAL"
	HealthUnderweight    HealthDetail = "UNDERWEIGHT"
	HealthOverweight     HealthDetail = "OVERWEIGHT"
	HealthObese          HealthDetail = "OBESE"
	HealthDiabetes       HealthDetail = "DIABETES"
	HealthHypertension   HealthDetail = "HYPERTENSION"
	HealthCardiovascular HealthDetail = "CARDIOVASCULAR"
	HealthRespiratory    HealthDetail = "RESPIRATORY"
	HealthDigestive      HealthDetail = "DIGESTIVE"
	HealthAllergies      HealthDetail = "ALLERGIES"
	HealthThyroid        HealthDetail = "THYROID"
	HealthArthritis      HealthDetail = "ARTHRITIS"
)

var AllHealthDetails = []HealthDetail{
	HealthNormal, HealthUnderweight, HealthOverweight, HealthObese, HealthDiabetes,
	HealthHypertension, HealthCardiovascular, HealthRespiratory, HealthDigestive,
	HealthAllergies, HealthThyroid, HealthArthritis,
}

func (h HealthDetail) Valid() bool {
	for _, v := range AllHealthDetails {
		if v == h {
			return true
		}
	}
	return false
}

type BiologicalSex string

const (
	SexMale   BiologicalSex = "MALE"
	SexFemale BiologicalSex = "FEMALE"
)

func (s BiologicalSex) Valid() bool { return s == SexMale || s == SexFemale }

type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "SEDENTARY"
	ActivityLightlyActive    ActivityLevel = "LIGHTLY_ACTIVE"
	ActivityModeratelyActive ActivityLevel = "MODERATELY_ACTIVE"
	ActivityVeryActive       ActivityLevel = "VERY_ACTIVE"
	ActivityExtremelyActive  ActivityLevel = "EXTREMELY_ACTIVE"
)

type DietaryPreference string

const (
	DietEggitarian DietaryPreference = "EGGITARIAN"
	DietVegetarian DietaryPreference = "VEGETARIAN"
	DietVegan      DietaryPreference = "VEGAN"
)

func (d DietaryPreference) Valid() bool {
	return d == DietEggitarian || d == DietVegetarian || d == DietVegan
}

type HealthGoal string

const (
	GoalHealthBoost       HealthGoal = "HEALTH_BOOST"
	GoalWeightLoss        HealthGoal = "WEIGHT_LOSS"
	GoalWeightGain        HealthGoal = "WEIGHT_GAIN"
	GoalMuscleGain        HealthGoal = "MUSCLE_GAIN"
	GoalLessSugar         HealthGoal = "LESS_SUGAR"
	GoalCardioCare        HealthGoal = "CARDIO_CARE"
	GoalBetterSleep       HealthGoal = "BETTER_SLEEP"
	GoalStressReduction   HealthGoal = "STRESS_REDUCTION"
	GoalImprovedDigestion HealthGoal = "IMPROVED_DIGESTION"
	GoalIncreasedEnergy   HealthGoal = "INCREASED_ENERGY"
)

var AllHealthGoals = []HealthGoal{
	GoalHealthBoost, GoalWeightLoss, GoalWeightGain, GoalMuscleGain, GoalLessSugar,
	GoalCardioCare, GoalBetterSleep, GoalStressReduction, GoalImprovedDigestion, GoalIncreasedEnergy,
}

func (g HealthGoal) Valid() bool {
	for _, v := range AllHealthGoals {
		if v == g {
			return true
		}
	}
	return false
}

// Claim verification outcomes.
const (
	ClaimVerified   = "Verified"
	ClaimUnverified = "Unverified"
	ClaimMisleading = "Misleading"
)

func ValidClaimStatus(s string) bool {
	return s == ClaimVerified || s == ClaimUnverified || s == ClaimMisleading
}

// Recommendation types produced by consumption analysis.
const (
	RecommendationFoodSwap          = "Food Swap"
	RecommendationPortionAdjustment = "Portion Adjustment"
	RecommendationMealPlan          = "Meal Plan Recommendation"
	RecommendationNutrientIntake    = "Nutrient Intake Adjustment"
)

var AllRecommendationTypes = []string{
	RecommendationFoodSwap, RecommendationPortionAdjustment, RecommendationMealPlan, RecommendationNutrientIntake,
}

func ValidRecommendationType(s string) bool {
	for _, v := range AllRecommendationTypes {
		if v == s {
			return true
		}
	}
	return false
}
