package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"nutri-lens/errs"
	"nutri-lens/models"
)

// NameKind selects a name-unique catalog collection.
type NameKind string

const (
	KindCategory   NameKind = "categories"
	KindAllergen   NameKind = "allergens"
	KindIngredient NameKind = "ingredients"
)

const (
	colProducts           = "products"
	colNutritionalFacts   = "nutritional_facts"
	colIngredientEffects  = "ingredient_effects"
	colProductIngredients = "product_ingredients"
	colProductClaims      = "product_claims"
	colProductCategories  = "product_categories"
	colProductAllergens   = "product_allergens"
)

// CatalogRepository is the only writer of the product graph.
type CatalogRepository struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewCatalogRepository(client *mongo.Client, db *mongo.Database) *CatalogRepository {
	return &CatalogRepository{client: client, db: db}
}

func (r *CatalogRepository) col(name string) *mongo.Collection { return r.db.Collection(name) }

// ExistsByVendorURLContaining reports whether any stored vendor URL contains url as a substring.
func (r *CatalogRepository) ExistsByVendorURLContaining(ctx context.Context, url string) (bool, error) {
	filter := bson.M{"vendor_url": primitive.Regex{Pattern: regexp.QuoteMeta(url)}}
	n, err := r.col(colProducts).CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListCategoryNames returns every known category name, alphabetically.
func (r *CatalogRepository) ListCategoryNames(ctx context.Context) ([]string, error) {
	cur, err := r.col(string(KindCategory)).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}).SetProjection(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	var rows []models.NamedEntity
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	return names, nil
}

// UpsertByName returns the id of the named row, creating it if absent.
func (r *CatalogRepository) UpsertByName(ctx context.Context, kind NameKind, name string) (primitive.ObjectID, error) {
	id, _, err := r.upsertName(ctx, kind, name, nil)
	return id, err
}

func (r *CatalogRepository) UpsertCategory(ctx context.Context, name string) error {
	_, err := r.UpsertByName(ctx, KindCategory, name)
	return err
}

// upsertName get-or-creates a row keyed by name. extra fields are only written on insert.
// created reports whether this call inserted the row.
func (r *CatalogRepository) upsertName(ctx context.Context, kind NameKind, name string, extra bson.M) (primitive.ObjectID, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return primitive.NilObjectID, false, fmt.Errorf("%w: empty %s name", errs.ErrInvalidInput, kind)
	}
	onInsert := bson.M{"name": name, "created_at": time.Now()}
	for k, v := range extra {
		onInsert[k] = v
	}
	res, err := r.col(string(kind)).UpdateOne(ctx,
		bson.M{"name": name},
		bson.M{"$setOnInsert": onInsert},
		options.Update().SetUpsert(true))
	if err != nil {
		return primitive.NilObjectID, false, err
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		return oid, true, nil
	}

	var row models.NamedEntity
	if err := r.col(string(kind)).FindOne(ctx, bson.M{"name": name}).Decode(&row); err != nil {
		return primitive.NilObjectID, false, err
	}
	return row.ID, false, nil
}

// CreateProductGraph writes the product and everything hanging off it in one
// transaction. Either the whole graph is visible afterwards or nothing is.
func (r *CatalogRepository) CreateProductGraph(ctx context.Context, g *models.ProductGraph) (primitive.ObjectID, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: start session: %v", errs.ErrPersistenceFailed, err)
	}
	defer session.EndSession(ctx)

	out, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return r.writeGraph(sc, g)
	})
	if err != nil {
		if errors.Is(err, errs.ErrDuplicateProduct) {
			return primitive.NilObjectID, err
		}
		return primitive.NilObjectID, fmt.Errorf("%w: %v", errs.ErrPersistenceFailed, err)
	}
	return out.(primitive.ObjectID), nil
}

func (r *CatalogRepository) writeGraph(ctx context.Context, g *models.ProductGraph) (primitive.ObjectID, error) {
	categoryIDs, err := r.upsertNames(ctx, KindCategory, g.Categories)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("categories: %w", err)
	}
	allergenIDs, err := r.upsertNames(ctx, KindAllergen, g.Allergens)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("allergens: %w", err)
	}

	ingredientIDs := make([]primitive.ObjectID, 0, len(g.Ingredients))
	for _, ing := range g.Ingredients {
		id, created, err := r.upsertName(ctx, KindIngredient, ing.Name, bson.M{
			"description":     ing.Description,
			"common_uses":     ing.CommonUses,
			"potential_risks": ing.PotentialRisks,
		})
		if err != nil {
			return primitive.NilObjectID, fmt.Errorf("ingredient %q: %w", ing.Name, err)
		}
		// effects belong to the ingredient, so they are only recorded the first time it is seen
		if created && len(ing.Effects) > 0 {
			docs := make([]interface{}, 0, len(ing.Effects))
			for _, e := range ing.Effects {
				docs = append(docs, models.IngredientEffect{
					IngredientID:       id,
					EffectType:         e.EffectType,
					Description:        e.Description,
					ScientificEvidence: e.ScientificEvidence,
					Severity:           e.Severity,
					Duration:           e.Duration,
				})
			}
			if _, err := r.col(colIngredientEffects).InsertMany(ctx, docs); err != nil {
				return primitive.NilObjectID, fmt.Errorf("ingredient effects: %w", err)
			}
		}
		ingredientIDs = append(ingredientIDs, id)
	}

	now := time.Now()
	p := g.Product
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := r.col(colProducts).InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, fmt.Errorf("%w: %s", errs.ErrDuplicateProduct, p.VendorProductURL)
		}
		return primitive.NilObjectID, fmt.Errorf("product: %w", err)
	}

	if _, err := r.col(colNutritionalFacts).InsertOne(ctx, models.NutritionalFacts{
		ProductID: p.ID,
		Nutrients: g.Nutrition,
	}); err != nil {
		return primitive.NilObjectID, fmt.Errorf("nutritional facts: %w", err)
	}

	if len(ingredientIDs) > 0 {
		docs := make([]interface{}, 0, len(ingredientIDs))
		for i, id := range ingredientIDs {
			docs = append(docs, models.ProductIngredient{
				ProductID:    p.ID,
				IngredientID: id,
				OrderNumber:  i + 1,
			})
		}
		if _, err := r.col(colProductIngredients).InsertMany(ctx, docs); err != nil {
			return primitive.NilObjectID, fmt.Errorf("product ingredients: %w", err)
		}
	}

	if len(g.Claims) > 0 {
		docs := make([]interface{}, 0, len(g.Claims))
		for _, c := range g.Claims {
			docs = append(docs, models.Claim{
				ProductID:          p.ID,
				Claim:              c.Claim,
				VerificationStatus: c.VerificationStatus,
				Explanation:        c.Explanation,
				Source:             c.Source,
			})
		}
		if _, err := r.col(colProductClaims).InsertMany(ctx, docs); err != nil {
			return primitive.NilObjectID, fmt.Errorf("claims: %w", err)
		}
	}

	if err := r.link(ctx, colProductAllergens, p.ID, allergenIDs); err != nil {
		return primitive.NilObjectID, fmt.Errorf("product allergens: %w", err)
	}
	if err := r.link(ctx, colProductCategories, p.ID, categoryIDs); err != nil {
		return primitive.NilObjectID, fmt.Errorf("product categories: %w", err)
	}

	return p.ID, nil
}

// upsertNames resolves names to ids, skipping blanks and repeats.
func (r *CatalogRepository) upsertNames(ctx context.Context, kind NameKind, names []string) ([]primitive.ObjectID, error) {
	seen := make(map[string]bool, len(names))
	ids := make([]primitive.ObjectID, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		id, _, err := r.upsertName(ctx, kind, n, nil)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *CatalogRepository) link(ctx context.Context, collection string, productID primitive.ObjectID, targets []primitive.ObjectID) error {
	if len(targets) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(targets))
	for _, t := range targets {
		docs = append(docs, models.ProductLink{ProductID: productID, TargetID: t})
	}
	_, err := r.col(collection).InsertMany(ctx, docs)
	return err
}
