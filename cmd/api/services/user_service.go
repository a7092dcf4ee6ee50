package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutri-lens/cmd/api/dto"
	"nutri-lens/errs"
	"nutri-lens/models"
	"nutri-lens/scoring"
)

type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Save(ctx context.Context, u *models.User) error
}

// UserService manages health profiles. Daily calorie needs are recomputed on every write.
type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

// Onboard creates the profile for id. An existing profile is errs.ErrAlreadyExists.
func (s *UserService) Onboard(ctx context.Context, id primitive.ObjectID, req dto.UserProfileRequest) (*models.User, error) {
	_, err := s.users.FindByID(ctx, id)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: user %s is already onboarded", errs.ErrAlreadyExists, id.Hex())
	case !errors.Is(err, errs.ErrNotFound):
		return nil, err
	}

	u := &models.User{ID: id}
	if err := apply(u, req); err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Update replaces the profile fields of an existing user.
func (s *UserService) Update(ctx context.Context, id primitive.ObjectID, req dto.UserProfileRequest) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(u, req); err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func apply(u *models.User, req dto.UserProfileRequest) error {
	if !req.BiologicalSex.Valid() {
		return fmt.Errorf("%w: biological_sex %q", errs.ErrInvalidInput, req.BiologicalSex)
	}
	if req.DietaryPreference != "" && !req.DietaryPreference.Valid() {
		return fmt.Errorf("%w: dietary_preference %q", errs.ErrInvalidInput, req.DietaryPreference)
	}
	for _, g := range req.HealthGoals {
		if !g.Valid() {
			return fmt.Errorf("%w: health goal %q", errs.ErrInvalidInput, g)
		}
	}
	for _, d := range req.HealthDetails {
		if !d.Valid() {
			return fmt.Errorf("%w: health detail %q", errs.ErrInvalidInput, d)
		}
	}

	calories, err := scoring.DailyCalorieNeeds(req.BiologicalSex, req.WeightKg, req.HeightCm, req.Age, req.ActivityLevel, req.HealthGoals)
	if err != nil {
		return err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		u.Name = name
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		u.Email = email
	}
	u.BiologicalSex = req.BiologicalSex
	u.Age = req.Age
	u.WeightKg = req.WeightKg
	u.HeightCm = req.HeightCm
	u.ActivityLevel = req.ActivityLevel
	u.DietaryPreference = req.DietaryPreference
	u.NutritionKnowledge = strings.TrimSpace(req.NutritionKnowledge)
	u.HealthGoals = req.HealthGoals
	u.HealthDetails = req.HealthDetails
	u.DailyCalorieNeeds = calories
	return nil
}
