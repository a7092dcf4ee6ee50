package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutri-lens/cmd/api/dto"
	"nutri-lens/errs"
	"nutri-lens/models"
)

type ConsumptionStore interface {
	Insert(ctx context.Context, c *models.Consumption) error
}

type ProductLookup interface {
	FindProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

type ConsumptionService struct {
	users        UserStore
	products     ProductLookup
	consumptions ConsumptionStore
}

func NewConsumptionService(users UserStore, products ProductLookup, consumptions ConsumptionStore) *ConsumptionService {
	return &ConsumptionService{users: users, products: products, consumptions: consumptions}
}

// Log records a consumption event for an onboarded user and a known product.
func (s *ConsumptionService) Log(ctx context.Context, userID primitive.ObjectID, req dto.ConsumptionRequest) (*models.Consumption, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", errs.ErrInvalidInput)
	}
	productID, err := ParseObjectID(req.ProductID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.products.FindProductByID(ctx, productID); err != nil {
		return nil, err
	}

	c := &models.Consumption{
		UserID:    userID,
		ProductID: productID,
		Quantity:  req.Quantity,
		Duration:  req.Duration,
	}
	if err := s.consumptions.Insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
