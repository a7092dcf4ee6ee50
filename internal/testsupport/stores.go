package testsupport

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutri-lens/errs"
	"nutri-lens/models"
)

type overviewKey struct{ user, product primitive.ObjectID }

// Overviews stores personalized overviews keyed by (user, product).
type Overviews struct {
	mu      sync.Mutex
	rows    map[overviewKey]models.PersonalizedOverview
	Inserts int
	// BeforeInsert runs before each insert; tests use it to simulate a racing writer.
	BeforeInsert func(o *models.PersonalizedOverview)
}

func NewOverviews() *Overviews {
	return &Overviews{rows: map[overviewKey]models.PersonalizedOverview{}}
}

func (s *Overviews) FindOverview(ctx context.Context, userID, productID primitive.ObjectID) (*models.PersonalizedOverview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.rows[overviewKey{userID, productID}]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (s *Overviews) Put(o models.PersonalizedOverview) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	s.rows[overviewKey{o.UserID, o.ProductID}] = o
}

func (s *Overviews) InsertOverview(ctx context.Context, o *models.PersonalizedOverview) error {
	if s.BeforeInsert != nil {
		s.BeforeInsert(o)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Inserts++
	k := overviewKey{o.UserID, o.ProductID}
	if _, ok := s.rows[k]; ok {
		return fmt.Errorf("%w: overview", errs.ErrAlreadyExists)
	}
	o.ID = primitive.NewObjectID()
	s.rows[k] = *o
	return nil
}

func (s *Overviews) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// Users is an in-memory user profile store.
type Users struct {
	mu   sync.Mutex
	rows map[primitive.ObjectID]models.User
}

func NewUsers(users ...models.User) *Users {
	s := &Users{rows: map[primitive.ObjectID]models.User{}}
	for _, u := range users {
		s.rows[u.ID] = u
	}
	return s
}

func (s *Users) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", errs.ErrNotFound, id.Hex())
	}
	return &u, nil
}

func (s *Users) Save(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	s.rows[u.ID] = *u
	return nil
}

func (s *Users) ListIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]primitive.ObjectID, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Hex() < ids[j].Hex() })
	return ids, nil
}

// Consumptions is an in-memory consumption log.
type Consumptions struct {
	mu   sync.Mutex
	rows []models.Consumption
	// FailFor makes ListInWindow fail for one user.
	FailFor map[primitive.ObjectID]error
}

func NewConsumptions() *Consumptions {
	return &Consumptions{FailFor: map[primitive.ObjectID]error{}}
}

func (s *Consumptions) Insert(ctx context.Context, c *models.Consumption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	s.rows = append(s.rows, *c)
	return nil
}

// All returns every stored event in insertion order.
func (s *Consumptions) All() []models.Consumption {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Consumption(nil), s.rows...)
}

func (s *Consumptions) ListInWindow(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]models.Consumption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailFor[userID]; err != nil {
		return nil, err
	}
	var out []models.Consumption
	for _, c := range s.rows {
		if c.UserID == userID && !c.CreatedAt.Before(from) && c.CreatedAt.Before(to) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type analysisKey struct {
	user primitive.ObjectID
	date time.Time
}

// Analyses stores consumption analyses keyed by (user, report date).
type Analyses struct {
	mu   sync.Mutex
	rows map[analysisKey]models.ConsumptionAnalysis
}

func NewAnalyses() *Analyses {
	return &Analyses{rows: map[analysisKey]models.ConsumptionAnalysis{}}
}

func (s *Analyses) UpsertByUserAndDate(ctx context.Context, a *models.ConsumptionAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := analysisKey{a.UserID, a.ReportDate.UTC()}
	if prev, ok := s.rows[k]; ok {
		a.ID = prev.ID
		a.CreatedAt = prev.CreatedAt
	} else {
		a.ID = primitive.NewObjectID()
		a.CreatedAt = time.Now()
	}
	a.UpdatedAt = time.Now()
	s.rows[k] = *a
	return nil
}

func (s *Analyses) FindLatest(ctx context.Context, userID primitive.ObjectID) (*models.ConsumptionAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.ConsumptionAnalysis
	for k, a := range s.rows {
		if k.user != userID {
			continue
		}
		if latest == nil || a.ReportDate.After(latest.ReportDate) {
			a := a
			latest = &a
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("%w: analysis", errs.ErrNotFound)
	}
	return latest, nil
}

func (s *Analyses) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
