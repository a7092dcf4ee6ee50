// Package pipeline runs a product submission from vendor URL to stored catalog entry.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutri-lens/config"
	"nutri-lens/errs"
	"nutri-lens/ingest"
	"nutri-lens/llm"
	"nutri-lens/models"
	"nutri-lens/scoring"
	"nutri-lens/scraper"
	"nutri-lens/storage"
)

type Gate interface {
	Check(ctx context.Context, rawURL string) (ingest.Vendor, error)
}

type Acquirer interface {
	Acquire(ctx context.Context, pageURL string) (*scraper.Acquisition, error)
}

type Classifier interface {
	IsEdible(ctx context.Context, images []llm.Image) (bool, error)
}

type Extractor interface {
	Extract(ctx context.Context, images []llm.Image, categories []string) (*models.ExtractedProduct, error)
}

type CategoryLister interface {
	ListCategoryNames(ctx context.Context) ([]string, error)
}

type GraphWriter interface {
	CreateProductGraph(ctx context.Context, g *models.ProductGraph) (primitive.ObjectID, error)
}

type Pipeline struct {
	Gate       Gate
	Acquirer   Acquirer
	Classifier Classifier
	Extractor  Extractor
	Categories CategoryLister
	Store      storage.ObjectStore
	Writer     GraphWriter
	Policy     scoring.Policy
}

// Ingest runs every stage in order and returns the new product id.
// Nothing is written before the final transaction; a failure there removes
// the images uploaded for this submission.
func (p *Pipeline) Ingest(ctx context.Context, rawURL string) (primitive.ObjectID, error) {
	start := time.Now()
	fail := func(stage string, err error) (primitive.ObjectID, error) {
		config.WarnWithFields("product ingest failed", config.Fields{
			"url":         rawURL,
			"stage":       stage,
			"reason":      errs.Reason(err),
			"error":       err.Error(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return primitive.NilObjectID, err
	}

	vendor, err := p.Gate.Check(ctx, rawURL)
	if err != nil {
		return fail("gate", err)
	}

	acq, err := p.Acquirer.Acquire(ctx, rawURL)
	if err != nil {
		return fail("acquire", err)
	}

	edible, err := p.Classifier.IsEdible(ctx, acq.Images)
	if err != nil {
		return fail("classify", err)
	}
	if !edible {
		return fail("classify", fmt.Errorf("%w: %s", errs.ErrNotEdible, rawURL))
	}

	categories, err := p.Categories.ListCategoryNames(ctx)
	if err != nil {
		return fail("categories", fmt.Errorf("%w: list categories: %v", errs.ErrPersistenceFailed, err))
	}

	extracted, err := p.Extractor.Extract(ctx, acq.Images, categories)
	if err != nil {
		return fail("extract", err)
	}

	scores := p.Policy.Score(extracted.NutritionalFacts, extracted.NaturalIngredientCount, extracted.ProcessedIngredientCount)

	stored, err := p.storeImages(ctx, acq.Images)
	if err != nil {
		return fail("store_images", err)
	}

	graph := BuildGraph(extracted, scores, vendor.Name, rawURL, stored)
	id, err := p.Writer.CreateProductGraph(ctx, graph)
	if err != nil {
		p.discardImages(ctx, stored)
		return fail("persist", err)
	}

	config.InfoWithFields("product ingested", config.Fields{
		"product_id":   id.Hex(),
		"name":         graph.Product.Name,
		"vendor":       vendor.Name,
		"health_score": scores.Health,
		"image_count":  len(stored),
		"duration_ms":  time.Since(start).Milliseconds(),
	})
	return id, nil
}

func (p *Pipeline) storeImages(ctx context.Context, images []llm.Image) ([]string, error) {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		png, err := storage.TranscodePNG(img.Data)
		if err != nil {
			p.discardImages(ctx, urls)
			return nil, fmt.Errorf("%w: transcode image: %v", errs.ErrPersistenceFailed, err)
		}
		u, err := p.Store.Store(ctx, png)
		if err != nil {
			p.discardImages(ctx, urls)
			return nil, fmt.Errorf("%w: upload image: %v", errs.ErrPersistenceFailed, err)
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// discardImages is best-effort and survives a cancelled request context.
func (p *Pipeline) discardImages(ctx context.Context, urls []string) {
	if len(urls) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	for _, u := range urls {
		if err := p.Store.Delete(ctx, u); err != nil {
			config.Logger.Warnf("failed to delete orphaned image %s (ignored): %v", u, err)
		}
	}
}

// BuildGraph assembles the persisted record from an extraction and its scores.
func BuildGraph(e *models.ExtractedProduct, s scoring.Scores, vendorName, vendorURL string, imageURLs []string) *models.ProductGraph {
	return &models.ProductGraph{
		Product: models.Product{
			Name:                     e.Name,
			Brand:                    e.Brand,
			VendorName:               vendorName,
			VendorProductURL:         vendorURL,
			ImageURLs:                imageURLs,
			ServingSize:              e.ServingSize,
			ServingUnit:              e.ServingUnit,
			Summary:                  e.Summary,
			FunctionalBenefits:       e.FunctionalBenefits,
			SuitableFor:              e.SuitableFor,
			NotSuitableFor:           e.NotSuitableFor,
			NaturalIngredientCount:   e.NaturalIngredientCount,
			ProcessedIngredientCount: e.ProcessedIngredientCount,
			NutritionDensity:         s.NutritionDensity,
			HealthScore:              s.Health,
		},
		Nutrition:   e.NutritionalFacts,
		Ingredients: e.Ingredients,
		Claims:      e.Claims,
		Allergens:   e.Allergens,
		Categories:  e.Categories,
	}
}
