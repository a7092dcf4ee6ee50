// Package personalization serves per-user product overviews, generating each
// one at most once and reading it from storage afterwards.
package personalization

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutri-lens/config"
	"nutri-lens/errs"
	"nutri-lens/models"
)

type OverviewStore interface {
	FindOverview(ctx context.Context, userID, productID primitive.ObjectID) (*models.PersonalizedOverview, error)
	InsertOverview(ctx context.Context, o *models.PersonalizedOverview) error
}

type UserReader interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type ProductReader interface {
	FindProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindNutrition(ctx context.Context, productID primitive.ObjectID) (*models.NutritionalFacts, error)
	ListIngredients(ctx context.Context, productID primitive.ObjectID, limit int64) ([]models.OrderedIngredient, error)
	ListProductCategoryNames(ctx context.Context, productID primitive.ObjectID) ([]string, error)
}

type Engine struct {
	overviews    OverviewStore
	users        UserReader
	products     ProductReader
	personalizer Personalizer
}

func NewEngine(overviews OverviewStore, users UserReader, products ProductReader, personalizer Personalizer) *Engine {
	return &Engine{overviews: overviews, users: users, products: products, personalizer: personalizer}
}

// GetOverview returns the stored overview or generates and stores a new one.
// A failed or malformed generation yields (nil, nil); unknown user or product
// yields errs.ErrNotFound.
func (e *Engine) GetOverview(ctx context.Context, userID, productID primitive.ObjectID) (*models.PersonalizedOverview, error) {
	cached, err := e.overviews.FindOverview(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("find overview: %w", err)
	}
	if cached != nil {
		return cached, nil
	}

	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	product, err := e.productProfile(ctx, productID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	gen, err := e.personalizer.Personalize(ctx, ProfileOfUser(user), *product)
	if err != nil {
		config.WarnWithFields("personalized overview not generated", config.Fields{
			"user_id":    userID.Hex(),
			"product_id": productID.Hex(),
			"error":      err.Error(),
		})
		return nil, nil
	}

	o := &models.PersonalizedOverview{
		UserID:                   userID,
		ProductID:                productID,
		Overview:                 gen.Overview,
		MatchScore:               gen.MatchScore,
		SuitabilityReasons:       gen.SuitabilityReasons,
		SafeConsumptionGuideline: gen.SafeConsumptionGuideline,
		HealthGoalImpacts:        gen.HealthGoalImpacts,
		NutrientHighlights:       gen.NutrientHighlights,
		CreatedAt:                time.Now(),
	}
	if err := e.overviews.InsertOverview(ctx, o); err != nil {
		// a concurrent request stored one first; every caller gets that one
		if errors.Is(err, errs.ErrAlreadyExists) {
			stored, ferr := e.overviews.FindOverview(ctx, userID, productID)
			if ferr != nil {
				return nil, fmt.Errorf("find overview: %w", ferr)
			}
			if stored != nil {
				return stored, nil
			}
		}
		return nil, fmt.Errorf("%w: store overview: %v", errs.ErrPersistenceFailed, err)
	}

	config.InfoWithFields("personalized overview generated", config.Fields{
		"user_id":     userID.Hex(),
		"product_id":  productID.Hex(),
		"match_score": o.MatchScore,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return o, nil
}

func (e *Engine) productProfile(ctx context.Context, productID primitive.ObjectID) (*ProductProfile, error) {
	p, err := e.products.FindProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	profile := &ProductProfile{
		Name:             p.Name,
		Brand:            p.Brand,
		ServingSize:      p.ServingSize,
		ServingUnit:      p.ServingUnit,
		SuitableFor:      p.SuitableFor,
		NotSuitableFor:   p.NotSuitableFor,
		HealthScore:      p.HealthScore,
		NutritionDensity: p.NutritionDensity,
	}

	nutrition, err := e.products.FindNutrition(ctx, productID)
	switch {
	case err == nil:
		profile.NutritionalFacts = nutrition.Nutrients
	case !errors.Is(err, errs.ErrNotFound):
		return nil, err
	}

	ingredients, err := e.products.ListIngredients(ctx, productID, 0)
	if err != nil {
		return nil, err
	}
	for _, ing := range ingredients {
		profile.Ingredients = append(profile.Ingredients, ing.Ingredient.Name)
	}

	if profile.Categories, err = e.products.ListProductCategoryNames(ctx, productID); err != nil {
		return nil, err
	}
	return profile, nil
}
