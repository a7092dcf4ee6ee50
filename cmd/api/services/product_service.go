package services

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutri-lens/cmd/api/dto"
	"nutri-lens/errs"
	"nutri-lens/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Catalog is the read side of the product graph.
type Catalog interface {
	FindProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	ListProducts(ctx context.Context, categories []string, limit, skip int64) ([]models.Product, error)
	FindNutrition(ctx context.Context, productID primitive.ObjectID) (*models.NutritionalFacts, error)
	ListIngredients(ctx context.Context, productID primitive.ObjectID, limit int64) ([]models.OrderedIngredient, error)
	ListClaims(ctx context.Context, productID primitive.ObjectID) ([]models.Claim, error)
	ListAllergenNames(ctx context.Context, productID primitive.ObjectID) ([]string, error)
	ListCategoryNames(ctx context.Context) ([]string, error)
	ProductOverview(ctx context.Context, id primitive.ObjectID) (*models.ProductOverview, error)
}

// Ingester runs the whole pipeline in-process.
type Ingester interface {
	Ingest(ctx context.Context, rawURL string) (primitive.ObjectID, error)
}

// IngestRequester gates a URL and queues it for the processor.
type IngestRequester interface {
	Request(ctx context.Context, rawURL, requestedBy string) (string, error)
}

type OverviewEngine interface {
	GetOverview(ctx context.Context, userID, productID primitive.ObjectID) (*models.PersonalizedOverview, error)
}

// ProductService serves the catalog and accepts new product URLs.
// With a requester set, submissions are queued instead of ingested inline.
type ProductService struct {
	catalog   Catalog
	ingester  Ingester
	requester IngestRequester
	overviews OverviewEngine
}

func NewProductService(catalog Catalog, ingester Ingester, requester IngestRequester, overviews OverviewEngine) *ProductService {
	return &ProductService{catalog: catalog, ingester: ingester, requester: requester, overviews: overviews}
}

type SubmitResult struct {
	ProductID primitive.ObjectID
	RequestID string
	Queued    bool
}

func (s *ProductService) Submit(ctx context.Context, rawURL string, userID primitive.ObjectID) (SubmitResult, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return SubmitResult{}, fmt.Errorf("%w: url is required", errs.ErrInvalidInput)
	}
	if s.requester != nil {
		id, err := s.requester.Request(ctx, rawURL, userID.Hex())
		if err != nil {
			return SubmitResult{}, err
		}
		return SubmitResult{RequestID: id, Queued: true}, nil
	}
	id, err := s.ingester.Ingest(ctx, rawURL)
	if err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{ProductID: id}, nil
}

type ListProductsInput struct {
	Page       int
	PageSize   int
	Categories []string
}

func (s *ProductService) List(ctx context.Context, in ListProductsInput) (*dto.Pagination[models.Product], error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.PageSize < 1 {
		in.PageSize = defaultPageSize
	}
	if in.PageSize > maxPageSize {
		in.PageSize = maxPageSize
	}

	products, err := s.catalog.ListProducts(ctx, in.Categories, int64(in.PageSize), int64((in.Page-1)*in.PageSize))
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return &dto.Pagination[models.Product]{Data: products, Page: in.Page, PageSize: in.PageSize}, nil
}

func (s *ProductService) Get(ctx context.Context, idStr string) (*models.Product, error) {
	id, err := ParseObjectID(idStr)
	if err != nil {
		return nil, err
	}
	return s.catalog.FindProductByID(ctx, id)
}

// Overview returns the catalog card of a product.
func (s *ProductService) Overview(ctx context.Context, idStr string) (*models.ProductOverview, error) {
	id, err := ParseObjectID(idStr)
	if err != nil {
		return nil, err
	}
	return s.catalog.ProductOverview(ctx, id)
}

// Personalized returns the caller's overview of a product. A nil overview
// with no error means generation failed and nothing was stored.
func (s *ProductService) Personalized(ctx context.Context, userID primitive.ObjectID, idStr string) (*models.PersonalizedOverview, error) {
	id, err := ParseObjectID(idStr)
	if err != nil {
		return nil, err
	}
	return s.overviews.GetOverview(ctx, userID, id)
}

func (s *ProductService) Nutrition(ctx context.Context, idStr string) (*models.NutritionalFacts, error) {
	id, err := s.existing(ctx, idStr)
	if err != nil {
		return nil, err
	}
	return s.catalog.FindNutrition(ctx, id)
}

func (s *ProductService) Ingredients(ctx context.Context, idStr string, limit int64) ([]models.OrderedIngredient, error) {
	id, err := s.existing(ctx, idStr)
	if err != nil {
		return nil, err
	}
	return s.catalog.ListIngredients(ctx, id, limit)
}

func (s *ProductService) Claims(ctx context.Context, idStr string) ([]models.Claim, error) {
	id, err := s.existing(ctx, idStr)
	if err != nil {
		return nil, err
	}
	return s.catalog.ListClaims(ctx, id)
}

func (s *ProductService) Allergens(ctx context.Context, idStr string) ([]string, error) {
	id, err := s.existing(ctx, idStr)
	if err != nil {
		return nil, err
	}
	return s.catalog.ListAllergenNames(ctx, id)
}

func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.catalog.ListCategoryNames(ctx)
}

// existing parses idStr and makes sure the product is there, so sub-resources
// of an unknown product are a 404 rather than an empty list.
func (s *ProductService) existing(ctx context.Context, idStr string) (primitive.ObjectID, error) {
	id, err := ParseObjectID(idStr)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if _, err := s.catalog.FindProductByID(ctx, id); err != nil {
		return primitive.NilObjectID, err
	}
	return id, nil
}

// ParseObjectID maps a malformed id to errs.ErrInvalidInput.
func ParseObjectID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: malformed id %q", errs.ErrInvalidInput, s)
	}
	return id, nil
}
