package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// NutrientKeys lists every nutrition field in wire order.
var NutrientKeys = []string{
	"calories", "total_fat", "saturated_fat", "trans_fat", "cholesterol", "sodium",
	"total_carbohydrate", "dietary_fiber", "total_sugars", "added_sugars", "protein",
	"vitamin_a", "vitamin_c", "calcium", "iron",
}

// Nutrients is one serving's nutrition panel. A nil field means the value
// is unknown; it is stored as null and never as zero.
type Nutrients struct {
	Calories          *float64 `bson:"calories" json:"calories"`
	TotalFat          *float64 `bson:"total_fat" json:"total_fat"`
	SaturatedFat      *float64 `bson:"saturated_fat" json:"saturated_fat"`
	TransFat          *float64 `bson:"trans_fat" json:"trans_fat"`
	Cholesterol       *float64 `bson:"cholesterol" json:"cholesterol"`
	Sodium            *float64 `bson:"sodium" json:"sodium"`
	TotalCarbohydrate *float64 `bson:"total_carbohydrate" json:"total_carbohydrate"`
	DietaryFiber      *float64 `bson:"dietary_fiber" json:"dietary_fiber"`
	TotalSugars       *float64 `bson:"total_sugars" json:"total_sugars"`
	AddedSugars       *float64 `bson:"added_sugars" json:"added_sugars"`
	Protein           *float64 `bson:"protein" json:"protein"`
	VitaminA          *float64 `bson:"vitamin_a" json:"vitamin_a"`
	VitaminC          *float64 `bson:"vitamin_c" json:"vitamin_c"`
	Calcium           *float64 `bson:"calcium" json:"calcium"`
	Iron              *float64 `bson:"iron" json:"iron"`
}

// NutritionalFacts is the 1:1 nutrition record of a product.
// Collection: nutritional_facts
type NutritionalFacts struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Nutrients `bson:",inline"`
}

// NutrientTotals accumulates nutrient amounts; unknown values count as zero.
type NutrientTotals struct {
	Calories          float64 `bson:"calories" json:"calories"`
	TotalFat          float64 `bson:"total_fat" json:"total_fat"`
	SaturatedFat      float64 `bson:"saturated_fat" json:"saturated_fat"`
	TransFat          float64 `bson:"trans_fat" json:"trans_fat"`
	Cholesterol       float64 `bson:"cholesterol" json:"cholesterol"`
	Sodium            float64 `bson:"sodium" json:"sodium"`
	TotalCarbohydrate float64 `bson:"total_carbohydrate" json:"total_carbohydrate"`
	DietaryFiber      float64 `bson:"dietary_fiber" json:"dietary_fiber"`
	TotalSugars       float64 `bson:"total_sugars" json:"total_sugars"`
	AddedSugars       float64 `bson:"added_sugars" json:"added_sugars"`
	Protein           float64 `bson:"protein" json:"protein"`
	VitaminA          float64 `bson:"vitamin_a" json:"vitamin_a"`
	VitaminC          float64 `bson:"vitamin_c" json:"vitamin_c"`
	Calcium           float64 `bson:"calcium" json:"calcium"`
	Iron              float64 `bson:"iron" json:"iron"`
}

// Add adds n scaled by quantity.
func (t *NutrientTotals) Add(n Nutrients, quantity float64) {
	add := func(dst *float64, v *float64) {
		if v != nil {
			*dst += *v * quantity
		}
	}
	add(&t.Calories, n.Calories)
	add(&t.TotalFat, n.TotalFat)
	add(&t.SaturatedFat, n.SaturatedFat)
	add(&t.TransFat, n.TransFat)
	add(&t.Cholesterol, n.Cholesterol)
	add(&t.Sodium, n.Sodium)
	add(&t.TotalCarbohydrate, n.TotalCarbohydrate)
	add(&t.DietaryFiber, n.DietaryFiber)
	add(&t.TotalSugars, n.TotalSugars)
	add(&t.AddedSugars, n.AddedSugars)
	add(&t.Protein, n.Protein)
	add(&t.VitaminA, n.VitaminA)
	add(&t.VitaminC, n.VitaminC)
	add(&t.Calcium, n.Calcium)
	add(&t.Iron, n.Iron)
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
