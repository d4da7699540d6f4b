package importer

import (
	"context"
	"sort"
	"time"

	"github.com/pronoleague/pronostics/models"
	"github.com/pronoleague/pronostics/repositories"
)

// In-memory repositories for importer tests. The exec argument is always
// nil here; the importers only open a real transaction when given a pool.

type fakeTeamRepo struct {
	teams  map[string]*models.Team
	nextID int
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[string]*models.Team)}
}

func (r *fakeTeamRepo) GetOrCreateByName(_ context.Context, _ repositories.SQLExecutor, name string) (*models.Team, bool, error) {
	if t, ok := r.teams[name]; ok {
		return t, false, nil
	}
	r.nextID++
	t := &models.Team{ID: r.nextID, Name: name}
	r.teams[name] = t
	return t, true, nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	for _, t := range r.teams {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) List(_ context.Context) ([]models.Team, error) {
	out := make([]models.Team, 0, len(r.teams))
	for _, t := range r.teams {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeTeamRepo) UpdateLogoKey(_ context.Context, id int, key *string) error {
	for _, t := range r.teams {
		if t.ID == id {
			t.LogoKey = key
			return nil
		}
	}
	return repositories.ErrTeamNotFound
}

type fakeSeasonRepo struct {
	seasons map[string]*models.Season
	nextID  int
}

func newFakeSeasonRepo() *fakeSeasonRepo {
	return &fakeSeasonRepo{seasons: make(map[string]*models.Season)}
}

func (r *fakeSeasonRepo) GetOrCreateByLabel(_ context.Context, _ repositories.SQLExecutor, label string) (*models.Season, bool, error) {
	if s, ok := r.seasons[label]; ok {
		return s, false, nil
	}
	r.nextID++
	s := &models.Season{ID: r.nextID, Label: label}
	r.seasons[label] = s
	return s, true, nil
}

func (r *fakeSeasonRepo) GetByLabel(_ context.Context, label string) (*models.Season, error) {
	if s, ok := r.seasons[label]; ok {
		return s, nil
	}
	return nil, repositories.ErrSeasonNotFound
}

func (r *fakeSeasonRepo) List(_ context.Context) ([]models.Season, error) {
	out := make([]models.Season, 0, len(r.seasons))
	for _, s := range r.seasons {
		out = append(out, *s)
	}
	return out, nil
}

type fakeMatchRepo struct {
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match)}
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (r *fakeMatchRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, match *models.Match) (repositories.UpsertOutcome, error) {
	for _, m := range r.matches {
		if m.HomeTeamID == match.HomeTeamID && m.AwayTeamID == match.AwayTeamID && m.KickoffAt.Equal(match.KickoffAt) {
			match.ID = m.ID
			if m.SeasonID == match.SeasonID && m.Round == match.Round &&
				intPtrEqual(m.HomeScore, match.HomeScore) && intPtrEqual(m.AwayScore, match.AwayScore) {
				return repositories.UpsertUnchanged, nil
			}
			m.SeasonID = match.SeasonID
			m.Round = match.Round
			m.HomeScore = match.HomeScore
			m.AwayScore = match.AwayScore
			return repositories.UpsertUpdated, nil
		}
	}
	r.nextID++
	match.ID = r.nextID
	stored := *match
	r.matches[match.ID] = &stored
	return repositories.UpsertCreated, nil
}

func (r *fakeMatchRepo) ListAll(_ context.Context, _ repositories.SQLExecutor) ([]models.Match, error) {
	out := make([]models.Match, 0, len(r.matches))
	for _, m := range r.matches {
		out = append(out, *m)
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
	if m, ok := r.matches[id]; ok {
		return m, nil
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) List(_ context.Context, _ string) ([]models.Match, error) {
	return r.ListAll(context.Background(), nil)
}

func (r *fakeMatchRepo) NextAfter(_ context.Context, t time.Time) (*models.Match, error) {
	var next *models.Match
	for _, m := range r.matches {
		if m.KickoffAt.Before(t) {
			continue
		}
		if next == nil || m.KickoffAt.Before(next.KickoffAt) {
			next = m
		}
	}
	if next == nil {
		return nil, repositories.ErrMatchNotFound
	}
	return next, nil
}

type fakeUserRepo struct {
	users  map[string]*models.User
	nextID int

	creates int
	updates int
	deletes int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, _ repositories.SQLExecutor, user *models.User) error {
	if _, ok := r.users[user.Username]; ok {
		return repositories.ErrUserUsernameConflict
	}
	r.nextID++
	user.ID = r.nextID
	stored := *user
	r.users[user.Username] = &stored
	r.creates++
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, _ repositories.SQLExecutor, username string) (*models.User, error) {
	if u, ok := r.users[username]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, _ repositories.SQLExecutor, user *models.User) error {
	for name, u := range r.users {
		if u.ID == user.ID {
			if name != user.Username {
				delete(r.users, name)
			}
			stored := *user
			r.users[user.Username] = &stored
			r.updates++
			return nil
		}
	}
	return repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	for name, u := range r.users {
		if u.ID == id {
			delete(r.users, name)
			r.deletes++
			return nil
		}
	}
	return repositories.ErrUserNotFound
}

func (r *fakeUserRepo) List(_ context.Context, _ repositories.SQLExecutor) ([]models.User, error) {
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}
