package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"nutri-lens/errs"
	"nutri-lens/models"
)

type AnalysisRepository struct {
	col *mongo.Collection
}

func NewAnalysisRepository(db *mongo.Database) *AnalysisRepository {
	return &AnalysisRepository{col: db.Collection("consumption_analyses")}
}

// UpsertByUserAndDate writes the analysis keyed by (user_id, report_date); reruns overwrite.
func (r *AnalysisRepository) UpsertByUserAndDate(ctx context.Context, a *models.ConsumptionAnalysis) error {
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	filter := bson.M{"user_id": a.UserID, "report_date": a.ReportDate}
	update := bson.M{
		"$setOnInsert": bson.M{"created_at": a.CreatedAt},
		"$set": bson.M{
			"window_start":     a.WindowStart,
			"window_end":       a.WindowEnd,
			"report":           a.Report,
			"analysis_summary": a.AnalysisSummary,
			"recommendations":  a.Recommendations,
			"updated_at":       a.UpdatedAt,
		},
	}
	res, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return err
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		a.ID = oid
	}
	return nil
}

// FindLatest returns the most recent analysis of a user or errs.ErrNotFound.
func (r *AnalysisRepository) FindLatest(ctx context.Context, userID primitive.ObjectID) (*models.ConsumptionAnalysis, error) {
	var a models.ConsumptionAnalysis
	err := r.col.FindOne(ctx, bson.M{"user_id": userID},
		options.FindOne().SetSort(bson.D{{Key: "report_date", Value: -1}})).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: analysis for %s", errs.ErrNotFound, userID.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
