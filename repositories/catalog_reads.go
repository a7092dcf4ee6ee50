package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"nutri-lens/errs"
	"nutri-lens/models"
)

// overviewIngredientLimit is how many leading ingredients the catalog card shows.
const overviewIngredientLimit = 5

func notFound(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %s", errs.ErrNotFound, what)
	}
	return err
}

// FindProductByID returns a product or errs.ErrNotFound.
func (r *CatalogRepository) FindProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if err := r.col(colProducts).FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, notFound(err, "product "+id.Hex())
	}
	return &p, nil
}

// ListProducts lists products newest first, optionally restricted to any of the given categories.
func (r *CatalogRepository) ListProducts(ctx context.Context, categories []string, limit, skip int64) ([]models.Product, error) {
	filter := bson.M{}
	if len(categories) > 0 {
		ids, err := r.productIDsInCategories(ctx, categories)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []models.Product{}, nil
		}
		filter["_id"] = bson.M{"$in": ids}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if skip > 0 {
		opts.SetSkip(skip)
	}
	cur, err := r.col(colProducts).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *CatalogRepository) productIDsInCategories(ctx context.Context, names []string) ([]primitive.ObjectID, error) {
	cur, err := r.col(string(KindCategory)).Find(ctx, bson.M{"name": bson.M{"$in": names}})
	if err != nil {
		return nil, err
	}
	var cats []models.NamedEntity
	if err := cur.All(ctx, &cats); err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		return nil, nil
	}
	catIDs := make([]primitive.ObjectID, 0, len(cats))
	for _, c := range cats {
		catIDs = append(catIDs, c.ID)
	}

	linkCur, err := r.col(colProductCategories).Find(ctx, bson.M{"target_id": bson.M{"$in": catIDs}})
	if err != nil {
		return nil, err
	}
	var links []models.ProductLink
	if err := linkCur.All(ctx, &links); err != nil {
		return nil, err
	}
	seen := map[primitive.ObjectID]bool{}
	ids := make([]primitive.ObjectID, 0, len(links))
	for _, l := range links {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}
	return ids, nil
}

// FindNutrition returns the nutrition record of a product or errs.ErrNotFound.
func (r *CatalogRepository) FindNutrition(ctx context.Context, productID primitive.ObjectID) (*models.NutritionalFacts, error) {
	var n models.NutritionalFacts
	if err := r.col(colNutritionalFacts).FindOne(ctx, bson.M{"product_id": productID}).Decode(&n); err != nil {
		return nil, notFound(err, "nutrition of "+productID.Hex())
	}
	return &n, nil
}

// ListIngredients returns a product's ingredients by ascending order_number.
// limit <= 0 returns all of them.
func (r *CatalogRepository) ListIngredients(ctx context.Context, productID primitive.ObjectID, limit int64) ([]models.OrderedIngredient, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order_number", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := r.col(colProductIngredients).Find(ctx, bson.M{"product_id": productID}, opts)
	if err != nil {
		return nil, err
	}
	var links []models.ProductIngredient
	if err := cur.All(ctx, &links); err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return []models.OrderedIngredient{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.IngredientID)
	}

	ingCur, err := r.col(string(KindIngredient)).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var ingredients []models.Ingredient
	if err := ingCur.All(ctx, &ingredients); err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Ingredient, len(ingredients))
	for _, ing := range ingredients {
		byID[ing.ID] = ing
	}

	effCur, err := r.col(colIngredientEffects).Find(ctx, bson.M{"ingredient_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var effects []models.IngredientEffect
	if err := effCur.All(ctx, &effects); err != nil {
		return nil, err
	}
	effectsByIngredient := map[primitive.ObjectID][]models.IngredientEffect{}
	for _, e := range effects {
		effectsByIngredient[e.IngredientID] = append(effectsByIngredient[e.IngredientID], e)
	}

	out := make([]models.OrderedIngredient, 0, len(links))
	for _, l := range links {
		effs := effectsByIngredient[l.IngredientID]
		if effs == nil {
			effs = []models.IngredientEffect{}
		}
		out = append(out, models.OrderedIngredient{
			OrderNumber: l.OrderNumber,
			Ingredient:  byID[l.IngredientID],
			Effects:     effs,
		})
	}
	return out, nil
}

// ListClaims returns a product's claims in insertion order.
func (r *CatalogRepository) ListClaims(ctx context.Context, productID primitive.ObjectID) ([]models.Claim, error) {
	cur, err := r.col(colProductClaims).Find(ctx, bson.M{"product_id": productID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	claims := []models.Claim{}
	if err := cur.All(ctx, &claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *CatalogRepository) ListAllergenNames(ctx context.Context, productID primitive.ObjectID) ([]string, error) {
	return r.linkedNames(ctx, colProductAllergens, KindAllergen, productID)
}

func (r *CatalogRepository) ListProductCategoryNames(ctx context.Context, productID primitive.ObjectID) ([]string, error) {
	return r.linkedNames(ctx, colProductCategories, KindCategory, productID)
}

func (r *CatalogRepository) linkedNames(ctx context.Context, linkCol string, kind NameKind, productID primitive.ObjectID) ([]string, error) {
	cur, err := r.col(linkCol).Find(ctx, bson.M{"product_id": productID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var links []models.ProductLink
	if err := cur.All(ctx, &links); err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return []string{}, nil
	}
	ids := make([]primitive.ObjectID, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.TargetID)
	}
	nameCur, err := r.col(string(kind)).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var rows []models.NamedEntity
	if err := nameCur.All(ctx, &rows); err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]string, len(rows))
	for _, row := range rows {
		byID[row.ID] = row.Name
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			names = append(names, n)
		}
	}
	return names, nil
}

// ProductOverview assembles the catalog card for one product.
func (r *CatalogRepository) ProductOverview(ctx context.Context, id primitive.ObjectID) (*models.ProductOverview, error) {
	p, err := r.FindProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	nutrition, err := r.FindNutrition(ctx, id)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}
	categories, err := r.ListProductCategoryNames(ctx, id)
	if err != nil {
		return nil, err
	}
	ingredients, err := r.ListIngredients(ctx, id, overviewIngredientLimit)
	if err != nil {
		return nil, err
	}
	return &models.ProductOverview{
		Product:     *p,
		Nutrition:   nutrition,
		Categories:  categories,
		Ingredients: ingredients,
	}, nil
}
