package testsupport

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutri-lens/errs"
	"nutri-lens/models"
)

// Catalog is an in-memory product graph with the same uniqueness rules as Mongo.
type Catalog struct {
	mu sync.Mutex

	Products    map[primitive.ObjectID]models.Product
	Nutrition   map[primitive.ObjectID]models.Nutrients
	Ingredients map[string]models.Ingredient
	Effects     map[primitive.ObjectID][]models.IngredientEffect
	Links       map[primitive.ObjectID][]models.ProductIngredient
	Claims      map[primitive.ObjectID][]models.Claim
	Categories  []string
	Allergens   []string

	productCategories map[primitive.ObjectID][]string
	productAllergens  map[primitive.ObjectID][]string

	// FailWrite makes the next CreateProductGraph fail without writing.
	FailWrite error
	Writes    int
}

func NewCatalog(categories ...string) *Catalog {
	return &Catalog{
		Products:          map[primitive.ObjectID]models.Product{},
		Nutrition:         map[primitive.ObjectID]models.Nutrients{},
		Ingredients:       map[string]models.Ingredient{},
		Effects:           map[primitive.ObjectID][]models.IngredientEffect{},
		Links:             map[primitive.ObjectID][]models.ProductIngredient{},
		Claims:            map[primitive.ObjectID][]models.Claim{},
		Categories:        append([]string(nil), categories...),
		productCategories: map[primitive.ObjectID][]string{},
		productAllergens:  map[primitive.ObjectID][]string{},
	}
}

func (c *Catalog) ExistsByVendorURLContaining(ctx context.Context, url string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.Products {
		if strings.Contains(p.VendorProductURL, url) {
			return true, nil
		}
	}
	return false, nil
}

func (c *Catalog) ListCategoryNames(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := append([]string(nil), c.Categories...)
	sort.Strings(out)
	return out, nil
}

func (c *Catalog) UpsertCategory(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Categories = appendUnique(c.Categories, name)
	return nil
}

func appendUnique(list []string, name string) []string {
	for _, n := range list {
		if n == name {
			return list
		}
	}
	return append(list, name)
}

func (c *Catalog) CreateProductGraph(ctx context.Context, g *models.ProductGraph) (primitive.ObjectID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Writes++
	if c.FailWrite != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %v", errs.ErrPersistenceFailed, c.FailWrite)
	}
	for _, p := range c.Products {
		if p.VendorProductURL == g.Product.VendorProductURL {
			return primitive.NilObjectID, fmt.Errorf("%w: %s", errs.ErrDuplicateProduct, p.VendorProductURL)
		}
	}

	p := g.Product
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	c.Products[p.ID] = p
	c.Nutrition[p.ID] = g.Nutrition

	for i, ing := range g.Ingredients {
		row, ok := c.Ingredients[ing.Name]
		if !ok {
			row = models.Ingredient{
				ID:             primitive.NewObjectID(),
				Name:           ing.Name,
				Description:    ing.Description,
				CommonUses:     ing.CommonUses,
				PotentialRisks: ing.PotentialRisks,
			}
			c.Ingredients[ing.Name] = row
			for _, e := range ing.Effects {
				c.Effects[row.ID] = append(c.Effects[row.ID], models.IngredientEffect{
					ID:           primitive.NewObjectID(),
					IngredientID: row.ID,
					EffectType:   e.EffectType,
					Description:  e.Description,
				})
			}
		}
		c.Links[p.ID] = append(c.Links[p.ID], models.ProductIngredient{
			ProductID: p.ID, IngredientID: row.ID, OrderNumber: i + 1,
		})
	}
	for _, cl := range g.Claims {
		c.Claims[p.ID] = append(c.Claims[p.ID], models.Claim{
			ID: primitive.NewObjectID(), ProductID: p.ID, Claim: cl.Claim,
			VerificationStatus: cl.VerificationStatus, Explanation: cl.Explanation, Source: cl.Source,
		})
	}
	for _, name := range g.Categories {
		c.Categories = appendUnique(c.Categories, name)
		c.productCategories[p.ID] = appendUnique(c.productCategories[p.ID], name)
	}
	for _, name := range g.Allergens {
		c.Allergens = appendUnique(c.Allergens, name)
		c.productAllergens[p.ID] = appendUnique(c.productAllergens[p.ID], name)
	}
	return p.ID, nil
}

func (c *Catalog) FindProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.Products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", errs.ErrNotFound, id.Hex())
	}
	return &p, nil
}

func (c *Catalog) ListProducts(ctx context.Context, categories []string, limit, skip int64) ([]models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.Product
	for id, p := range c.Products {
		if len(categories) > 0 && !overlaps(c.productCategories[id], categories) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if skip >= int64(len(out)) {
		return []models.Product{}, nil
	}
	out = out[skip:]
	if limit > 0 && limit < int64(len(out)) {
		out = out[:limit]
	}
	return out, nil
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func (c *Catalog) FindNutrition(ctx context.Context, productID primitive.ObjectID) (*models.NutritionalFacts, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.Nutrition[productID]
	if !ok {
		return nil, fmt.Errorf("%w: nutrition of %s", errs.ErrNotFound, productID.Hex())
	}
	return &models.NutritionalFacts{ProductID: productID, Nutrients: n}, nil
}

func (c *Catalog) ListIngredients(ctx context.Context, productID primitive.ObjectID, limit int64) ([]models.OrderedIngredient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	links := append([]models.ProductIngredient(nil), c.Links[productID]...)
	sort.Slice(links, func(i, j int) bool { return links[i].OrderNumber < links[j].OrderNumber })
	if limit > 0 && int64(len(links)) > limit {
		links = links[:limit]
	}
	out := make([]models.OrderedIngredient, 0, len(links))
	for _, l := range links {
		for _, ing := range c.Ingredients {
			if ing.ID == l.IngredientID {
				out = append(out, models.OrderedIngredient{OrderNumber: l.OrderNumber, Ingredient: ing, Effects: c.Effects[ing.ID]})
				break
			}
		}
	}
	return out, nil
}

func (c *Catalog) ListClaims(ctx context.Context, productID primitive.ObjectID) ([]models.Claim, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Claim{}, c.Claims[productID]...), nil
}

func (c *Catalog) ListAllergenNames(ctx context.Context, productID primitive.ObjectID) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.productAllergens[productID]...), nil
}

func (c *Catalog) ListProductCategoryNames(ctx context.Context, productID primitive.ObjectID) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.productCategories[productID]...), nil
}

func (c *Catalog) ProductOverview(ctx context.Context, id primitive.ObjectID) (*models.ProductOverview, error) {
	p, err := c.FindProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	n, _ := c.FindNutrition(ctx, id)
	cats, _ := c.ListProductCategoryNames(ctx, id)
	ings, _ := c.ListIngredients(ctx, id, 5)
	return &models.ProductOverview{Product: *p, Nutrition: n, Categories: cats, Ingredients: ings}, nil
}

// ObjectStore keeps uploaded images in memory.
type ObjectStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string
	seq     int
}

func NewObjectStore() *ObjectStore {
	return &ObjectStore{Objects: map[string][]byte{}}
}

func (s *ObjectStore) Store(ctx context.Context, png []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	u := fmt.Sprintf("https://storage.googleapis.com/test-bucket/products/product-%d.png", s.seq)
	s.Objects[u] = png
	return u, nil
}

func (s *ObjectStore) Delete(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, url)
	s.Deleted = append(s.Deleted, url)
	return nil
}
