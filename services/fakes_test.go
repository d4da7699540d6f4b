package services

import (
	"context"
	"sort"
	"time"

	"github.com/pronoleague/pronostics/models"
	"github.com/pronoleague/pronostics/repositories"
)

// In-memory repository doubles. Maps are keyed by id; pointers returned
// are the stored values, which is fine for these tests.

type fakeUserRepo struct {
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
}

func (r *fakeUserRepo) add(u models.User) *models.User {
	u.ID = r.nextID
	r.nextID++
	r.users[u.ID] = &u
	return &u
}

func (r *fakeUserRepo) Create(_ context.Context, _ repositories.SQLExecutor, user *models.User) error {
	user.ID = r.nextID
	r.nextID++
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, _ repositories.SQLExecutor, username string) (*models.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, _ repositories.SQLExecutor, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := r.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, _ repositories.SQLExecutor) ([]models.User, error) {
	out := make([]models.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, *user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeSeasonRepo struct {
	seasons map[string]*models.Season
	nextID  int
}

func newFakeSeasonRepo() *fakeSeasonRepo {
	return &fakeSeasonRepo{seasons: make(map[string]*models.Season), nextID: 1}
}

func (r *fakeSeasonRepo) add(label string) *models.Season {
	season := &models.Season{ID: r.nextID, Label: label}
	r.nextID++
	r.seasons[label] = season
	return season
}

func (r *fakeSeasonRepo) GetOrCreateByLabel(_ context.Context, _ repositories.SQLExecutor, label string) (*models.Season, bool, error) {
	if season, ok := r.seasons[label]; ok {
		copied := *season
		return &copied, false, nil
	}
	season := r.add(label)
	copied := *season
	return &copied, true, nil
}

func (r *fakeSeasonRepo) GetByLabel(_ context.Context, label string) (*models.Season, error) {
	season, ok := r.seasons[label]
	if !ok {
		return nil, repositories.ErrSeasonNotFound
	}
	copied := *season
	return &copied, nil
}

func (r *fakeSeasonRepo) List(_ context.Context) ([]models.Season, error) {
	out := make([]models.Season, 0, len(r.seasons))
	for _, season := range r.seasons {
		out = append(out, *season)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label > out[j].Label })
	return out, nil
}

type fakeMatchRepo struct {
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match), nextID: 1}
}

func (r *fakeMatchRepo) add(m models.Match) *models.Match {
	m.ID = r.nextID
	r.nextID++
	r.matches[m.ID] = &m
	return &m
}

func (r *fakeMatchRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, match *models.Match) (repositories.UpsertOutcome, error) {
	match.ID = r.nextID
	r.nextID++
	stored := *match
	r.matches[match.ID] = &stored
	return repositories.UpsertCreated, nil
}

func (r *fakeMatchRepo) ListAll(_ context.Context, _ repositories.SQLExecutor) ([]models.Match, error) {
	out := make([]models.Match, 0, len(r.matches))
	for _, match := range r.matches {
		out = append(out, *match)
	}
	return out, nil
}

func (r *fakeMatchRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := r.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.matches, id)
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	match, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *match
	return &copied, nil
}

func (r *fakeMatchRepo) List(_ context.Context, _ string) ([]models.Match, error) {
	return r.ListAll(context.Background(), nil)
}

func (r *fakeMatchRepo) NextAfter(_ context.Context, t time.Time) (*models.Match, error) {
	var next *models.Match
	for _, match := range r.matches {
		if match.KickoffAt.Before(t) {
			continue
		}
		if next == nil || match.KickoffAt.Before(next.KickoffAt) {
			next = match
		}
	}
	if next == nil {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *next
	return &copied, nil
}

type fakePredictionRepo struct {
	predictions map[int]*models.Prediction
	matches     *fakeMatchRepo
	nextID      int
}

func newFakePredictionRepo(matches *fakeMatchRepo) *fakePredictionRepo {
	return &fakePredictionRepo{
		predictions: make(map[int]*models.Prediction),
		matches:     matches,
		nextID:      1,
	}
}

func (r *fakePredictionRepo) add(p models.Prediction) *models.Prediction {
	p.ID = r.nextID
	r.nextID++
	r.predictions[p.ID] = &p
	return &p
}

func (r *fakePredictionRepo) GetOrCreate(_ context.Context, userID, matchID int) (*models.Prediction, bool, error) {
	for _, p := range r.predictions {
		if p.UserID == userID && p.MatchID == matchID {
			copied := *p
			return &copied, false, nil
		}
	}
	p := &models.Prediction{ID: r.nextID, UserID: userID, MatchID: matchID}
	r.nextID++
	r.predictions[p.ID] = p
	copied := *p
	return &copied, true, nil
}

func (r *fakePredictionRepo) GetByUserAndMatch(_ context.Context, userID, matchID int) (*models.Prediction, error) {
	for _, p := range r.predictions {
		if p.UserID == userID && p.MatchID == matchID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repositories.ErrPredictionNotFound
}

func (r *fakePredictionRepo) UpdateScores(_ context.Context, p *models.Prediction) error {
	stored, ok := r.predictions[p.ID]
	if !ok {
		return repositories.ErrPredictionNotFound
	}
	stored.HomeScore = p.HomeScore
	stored.AwayScore = p.AwayScore
	stored.Points = p.Points
	return nil
}

func (r *fakePredictionRepo) joined(p *models.Prediction) models.Prediction {
	copied := *p
	if match, ok := r.matches.matches[p.MatchID]; ok {
		matchCopy := *match
		copied.Match = &matchCopy
	}
	return copied
}

func (r *fakePredictionRepo) ListByUser(_ context.Context, userID int) ([]models.Prediction, error) {
	var out []models.Prediction
	for _, p := range r.predictions {
		if p.UserID == userID {
			out = append(out, r.joined(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Match.KickoffAt.Before(out[j].Match.KickoffAt)
	})
	return out, nil
}

func (r *fakePredictionRepo) ListAll(_ context.Context) ([]models.Prediction, error) {
	var out []models.Prediction
	for _, p := range r.predictions {
		out = append(out, r.joined(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
