// Package scoring derives product quality metrics from nutrition and
// ingredient composition. Everything here is pure.
package scoring

import (
	"math"

	"nutri-lens/config"
	"nutri-lens/models"
)

// Policy holds the daily reference values and blend weights.
type Policy struct {
	SaturatedFatCeiling float64
	TransFatCeiling     float64
	CholesterolCeiling  float64
	SodiumCeiling       float64
	AddedSugarsCeiling  float64

	ProteinTarget  float64
	FiberTarget    float64
	VitaminATarget float64
	VitaminCTarget float64
	CalciumTarget  float64
	IronTarget     float64

	DensityWeight    float64
	NegativeWeight   float64
	PositiveWeight   float64
	IngredientWeight float64

	// Exponent < 1 compresses the blended score toward the high end.
	Exponent float64
}

func DefaultPolicy() Policy {
	return Policy{
		SaturatedFatCeiling: 20,
		TransFatCeiling:     2,
		CholesterolCeiling:  300,
		SodiumCeiling:       2300,
		AddedSugarsCeiling:  50,

		ProteinTarget:  50,
		FiberTarget:    28,
		VitaminATarget: 100,
		VitaminCTarget: 100,
		CalciumTarget:  100,
		IronTarget:     100,

		DensityWeight:    0.2,
		NegativeWeight:   0.4,
		PositiveWeight:   0.2,
		IngredientWeight: 0.4,

		Exponent: 0.7,
	}
}

// PolicyFromConfig overlays non-zero config values on the default policy.
func PolicyFromConfig(c config.ScoringConfig) Policy {
	p := DefaultPolicy()
	set := func(dst *float64, v float64) {
		if v > 0 {
			*dst = v
		}
	}
	set(&p.SaturatedFatCeiling, c.SaturatedFatCeiling)
	set(&p.TransFatCeiling, c.TransFatCeiling)
	set(&p.CholesterolCeiling, c.CholesterolCeiling)
	set(&p.SodiumCeiling, c.SodiumCeiling)
	set(&p.AddedSugarsCeiling, c.AddedSugarsCeiling)
	set(&p.ProteinTarget, c.ProteinTarget)
	set(&p.FiberTarget, c.FiberTarget)
	set(&p.VitaminATarget, c.VitaminATarget)
	set(&p.VitaminCTarget, c.VitaminCTarget)
	set(&p.CalciumTarget, c.CalciumTarget)
	set(&p.IronTarget, c.IronTarget)
	set(&p.DensityWeight, c.DensityWeight)
	set(&p.NegativeWeight, c.NegativeWeight)
	set(&p.PositiveWeight, c.PositiveWeight)
	set(&p.IngredientWeight, c.IngredientWeight)
	set(&p.Exponent, c.Exponent)
	return p
}

// Scores is the full set of derived metrics for one product.
type Scores struct {
	NutritionDensity  float64
	Negative          float64
	Positive          float64
	IngredientQuality float64
	Health            float64
}

// val reads a nutrient amount; unknown, negative and non-finite values count as zero.
func val(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return 0
	}
	return *v
}

// NutrientDensity is beneficial nutrients per 100 calories; 0 when calories are unknown or not positive.
func (p Policy) NutrientDensity(n models.Nutrients) float64 {
	cal := val(n.Calories)
	if cal <= 0 {
		return 0
	}
	total := val(n.Protein) + val(n.DietaryFiber) + val(n.VitaminA) +
		val(n.VitaminC) + val(n.Calcium) + val(n.Iron)
	return total / cal * 100
}

// NegativeNutrientScore starts at 100 and loses the percentage of each daily ceiling consumed. Never below 0.
func (p Policy) NegativeNutrientScore(n models.Nutrients) float64 {
	used := ratio(val(n.SaturatedFat), p.SaturatedFatCeiling) +
		ratio(val(n.TransFat), p.TransFatCeiling) +
		ratio(val(n.Cholesterol), p.CholesterolCeiling) +
		ratio(val(n.Sodium), p.SodiumCeiling) +
		ratio(val(n.AddedSugars), p.AddedSugarsCeiling)
	return math.Max(0, 100-used)
}

// PositiveNutrientScore sums the percentage of each daily target met, capped at 100.
func (p Policy) PositiveNutrientScore(n models.Nutrients) float64 {
	met := ratio(val(n.Protein), p.ProteinTarget) +
		ratio(val(n.DietaryFiber), p.FiberTarget) +
		ratio(val(n.VitaminA), p.VitaminATarget) +
		ratio(val(n.VitaminC), p.VitaminCTarget) +
		ratio(val(n.Calcium), p.CalciumTarget) +
		ratio(val(n.Iron), p.IronTarget)
	return math.Min(met, 100)
}

// IngredientQualityScore rewards natural ingredients and penalizes processed ones at half weight.
func (p Policy) IngredientQualityScore(natural, processed int) float64 {
	if natural < 0 {
		natural = 0
	}
	if processed < 0 {
		processed = 0
	}
	total := float64(natural + processed)
	if total == 0 {
		return 0
	}
	s := float64(natural)/total*100 - float64(processed)/total*50
	return clamp(s, 0, 100)
}

// HealthScore blends the sub-scores, applies the exponent and rounds to one decimal.
// The result is always within [0, 100].
func (p Policy) HealthScore(n models.Nutrients, natural, processed int) float64 {
	return p.Score(n, natural, processed).Health
}

// Score computes every metric in one pass.
func (p Policy) Score(n models.Nutrients, natural, processed int) Scores {
	s := Scores{
		NutritionDensity:  p.NutrientDensity(n),
		Negative:          p.NegativeNutrientScore(n),
		Positive:          p.PositiveNutrientScore(n),
		IngredientQuality: p.IngredientQualityScore(natural, processed),
	}
	weighted := s.NutritionDensity*p.DensityWeight +
		s.Negative*p.NegativeWeight +
		s.Positive*p.PositiveWeight +
		s.IngredientQuality*p.IngredientWeight
	if math.IsNaN(weighted) {
		weighted = 0
	}
	weighted = clamp(weighted, 0, 100)
	s.Health = math.Round(math.Pow(weighted/100, p.Exponent)*100*10) / 10
	return s
}

func ratio(v, ref float64) float64 {
	if ref <= 0 {
		return 0
	}
	return v / ref * 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
