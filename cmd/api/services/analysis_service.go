package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutri-lens/analyzer"
	"nutri-lens/models"
)

type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (analyzer.SweepResult, error)
}

type AnalysisReader interface {
	FindLatest(ctx context.Context, userID primitive.ObjectID) (*models.ConsumptionAnalysis, error)
}

// AnalysisService exposes stored analyses and the on-demand sweep.
type AnalysisService struct {
	sweeper  Sweeper
	analyses AnalysisReader
	now      func() time.Time
}

func NewAnalysisService(sweeper Sweeper, analyses AnalysisReader) *AnalysisService {
	return &AnalysisService{sweeper: sweeper, analyses: analyses, now: time.Now}
}

// RunSweep analyzes every user over the window containing the current time.
func (s *AnalysisService) RunSweep(ctx context.Context) (analyzer.SweepResult, error) {
	return s.sweeper.Sweep(ctx, s.now())
}

func (s *AnalysisService) Latest(ctx context.Context, userID primitive.ObjectID) (*models.ConsumptionAnalysis, error) {
	return s.analyses.FindLatest(ctx, userID)
}
