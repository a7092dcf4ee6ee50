// Package analyzer turns a user's consumption log into a periodic report with advice.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"nutri-lens/config"
	"nutri-lens/errs"
	"nutri-lens/models"
)

type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ListIDs(ctx context.Context) ([]primitive.ObjectID, error)
}

type ConsumptionReader interface {
	ListInWindow(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]models.Consumption, error)
}

type ProductFacts interface {
	FindNutrition(ctx context.Context, productID primitive.ObjectID) (*models.NutritionalFacts, error)
	ListProductCategoryNames(ctx context.Context, productID primitive.ObjectID) ([]string, error)
}

type AnalysisWriter interface {
	UpsertByUserAndDate(ctx context.Context, a *models.ConsumptionAnalysis) error
}

type Analyzer struct {
	users        UserStore
	consumptions ConsumptionReader
	products     ProductFacts
	analyses     AnalysisWriter
	advisor      Advisor

	window      string
	loc         *time.Location
	concurrency int
}

func NewAnalyzer(users UserStore, consumptions ConsumptionReader, products ProductFacts, analyses AnalysisWriter, advisor Advisor, cfg config.AnalysisConfig) (*Analyzer, error) {
	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("analysis timezone: %w", err)
		}
		loc = l
	}
	if _, err := WindowFor(time.Now(), cfg.Window, loc); err != nil {
		return nil, err
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Analyzer{
		users:        users,
		consumptions: consumptions,
		products:     products,
		analyses:     analyses,
		advisor:      advisor,
		window:       cfg.Window,
		loc:          loc,
		concurrency:  concurrency,
	}, nil
}

// Location is the timezone windows are computed in.
func (a *Analyzer) Location() *time.Location { return a.loc }

// productInfo is what one report needs from a product.
type productInfo struct {
	nutrients  *models.Nutrients
	categories []string
}

// BuildReport aggregates the user's events in w. Events whose product has no
// calorie value are left out. It returns nil when no event qualifies.
func (a *Analyzer) BuildReport(ctx context.Context, userID primitive.ObjectID, w Window) (*models.ConsumptionReport, error) {
	events, err := a.consumptions.ListInWindow(ctx, userID, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("list consumptions: %w", err)
	}

	cache := map[primitive.ObjectID]productInfo{}
	report := &models.ConsumptionReport{ReportDate: w.ReportDate, MajorCategories: []string{}}
	seen := map[string]bool{}

	for _, ev := range events {
		info, ok := cache[ev.ProductID]
		if !ok {
			info, err = a.loadProduct(ctx, ev.ProductID)
			if err != nil {
				return nil, err
			}
			cache[ev.ProductID] = info
		}
		if info.nutrients == nil || info.nutrients.Calories == nil || *info.nutrients.Calories == 0 {
			continue
		}

		for _, c := range info.categories {
			if !seen[c] {
				seen[c] = true
				report.MajorCategories = append(report.MajorCategories, c)
			}
		}
		report.TotalNutrients.Add(*info.nutrients, ev.Quantity)
		report.TotalConsumedCalories += *info.nutrients.Calories * ev.Quantity
		report.TotalConsumedProducts++
	}

	if report.TotalConsumedProducts == 0 {
		return nil, nil
	}
	return report, nil
}

func (a *Analyzer) loadProduct(ctx context.Context, productID primitive.ObjectID) (productInfo, error) {
	var info productInfo
	facts, err := a.products.FindNutrition(ctx, productID)
	switch {
	case err == nil:
		info.nutrients = &facts.Nutrients
	case errors.Is(err, errs.ErrNotFound):
		return info, nil
	default:
		return info, fmt.Errorf("nutrition of %s: %w", productID.Hex(), err)
	}
	if info.categories, err = a.products.ListProductCategoryNames(ctx, productID); err != nil {
		return info, fmt.Errorf("categories of %s: %w", productID.Hex(), err)
	}
	return info, nil
}

// AnalyzeUser builds the report for the window containing now, asks the
// advisor about it and stores the result. A user with no qualifying events
// gets nothing: no model call and no stored row.
func (a *Analyzer) AnalyzeUser(ctx context.Context, userID primitive.ObjectID, now time.Time) (*models.ConsumptionAnalysis, error) {
	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	w, err := WindowFor(now, a.window, a.loc)
	if err != nil {
		return nil, err
	}

	report, err := a.BuildReport(ctx, userID, w)
	if err != nil || report == nil {
		return nil, err
	}

	advice, err := a.advisor.Advise(ctx, ProfileOf(user), *report)
	if err != nil {
		return nil, err
	}

	analysis := &models.ConsumptionAnalysis{
		UserID:          userID,
		ReportDate:      w.ReportDate,
		WindowStart:     w.Start,
		WindowEnd:       w.End,
		Report:          *report,
		AnalysisSummary: advice.AnalysisSummary,
		Recommendations: advice.Recommendations,
	}
	if err := a.analyses.UpsertByUserAndDate(ctx, analysis); err != nil {
		return nil, fmt.Errorf("%w: store analysis: %v", errs.ErrPersistenceFailed, err)
	}
	return analysis, nil
}

type SweepResult struct {
	Analyzed int `json:"analyzed"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// Sweep analyzes every user with bounded parallelism. One user's failure is
// logged and counted and never stops the others.
func (a *Analyzer) Sweep(ctx context.Context, now time.Time) (SweepResult, error) {
	ids, err := a.users.ListIDs(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list users: %w", err)
	}

	start := time.Now()
	var (
		mu  sync.Mutex
		res SweepResult
	)
	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			analysis, err := a.AnalyzeUser(ctx, id, now)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				res.Failed++
				config.ErrorWithFields("consumption analysis failed", config.Fields{
					"user_id": id.Hex(),
					"reason":  errs.Reason(err),
					"error":   err.Error(),
				})
			case analysis == nil:
				res.Skipped++
			default:
				res.Analyzed++
			}
			return nil
		})
	}
	_ = g.Wait()

	config.InfoWithFields("consumption sweep finished", config.Fields{
		"users":       len(ids),
		"analyzed":    res.Analyzed,
		"skipped":     res.Skipped,
		"failed":      res.Failed,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return res, nil
}
