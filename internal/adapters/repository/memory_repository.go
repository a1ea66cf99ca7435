package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/habitquest/habitquest-engine/internal/core/domain"
)

// In-memory implementations of every port, used by the end-to-end tests and
// for running the API without Postgres. The completion store serializes
// everything behind one mutex, which gives the same "one completion attempt
// at a time per entity" guarantee the row lock gives in Postgres.

type InMemoryUserRepository struct {
	store map[string]*domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		store: make(map[string]*domain.User),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.store {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
		if user.Name != "" && u.Name == user.Name {
			return domain.ErrNameAlreadyExists
		}
	}

	clone := *user
	r.store[user.ID] = &clone
	return nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.store {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[user.ID]; !ok {
		return domain.ErrUserNotFound
	}

	for id, u := range r.store {
		if id == user.ID {
			continue
		}
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
		if user.Name != "" && u.Name == user.Name {
			return domain.ErrNameAlreadyExists
		}
	}

	clone := *user
	r.store[user.ID] = &clone
	return nil
}

func (r *InMemoryUserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.store, id)
	return nil
}

func (r *InMemoryUserRepository) UpdateLevel(ctx context.Context, id string, level int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.store[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Level = level
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryUserRepository) AddXP(ctx context.Context, id string, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.addXPLocked(id, delta)
}

func (r *InMemoryUserRepository) addXPLocked(id string, delta int) (int, error) {
	user, ok := r.store[id]
	if !ok {
		return 0, domain.ErrUserNotFound
	}
	user.XP += delta
	if user.XP < 0 {
		user.XP = 0
	}
	user.UpdatedAt = time.Now().UTC()
	return user.XP, nil
}

func (r *InMemoryUserRepository) ResetProgress(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.store[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.XP = 0
	user.Level = 1
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryUserRepository) Search(ctx context.Context, query string, limit int) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(query)
	var users []*domain.User
	for _, u := range r.store {
		if strings.Contains(strings.ToLower(u.Email), q) || strings.Contains(strings.ToLower(u.Name), q) {
			clone := *u
			users = append(users, &clone)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *InMemoryUserRepository) ListTopByXP(ctx context.Context, limit int) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var users []*domain.User
	for _, u := range r.store {
		clone := *u
		users = append(users, &clone)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].XP != users[j].XP {
			return users[i].XP > users[j].XP
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

type InMemoryHabitRepository struct {
	store map[string]*domain.Habit

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
	}
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *habit
	r.store[habit.ID] = &clone
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	clone := *habit
	return &clone, nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var habits []*domain.Habit
	for _, h := range r.store {
		if h.UserID == userID {
			clone := *h
			habits = append(habits, &clone)
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		return habits[i].CreatedAt.After(habits[j].CreatedAt)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[habit.ID]; !ok {
		return domain.ErrHabitNotFound
	}

	clone := *habit
	r.store[habit.ID] = &clone
	return nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrHabitNotFound
	}

	delete(r.store, id)
	return nil
}

type InMemoryChallengeRepository struct {
	store map[string]*domain.Challenge

	mu sync.RWMutex
}

func NewInMemoryChallengeRepository() *InMemoryChallengeRepository {
	return &InMemoryChallengeRepository{
		store: make(map[string]*domain.Challenge),
	}
}

func (r *InMemoryChallengeRepository) Create(ctx context.Context, challenge *domain.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *challenge
	r.store[challenge.ID] = &clone
	return nil
}

func (r *InMemoryChallengeRepository) GetByID(ctx context.Context, id string) (*domain.Challenge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	challenge, ok := r.store[id]
	if !ok {
		return nil, domain.ErrChallengeNotFound
	}
	clone := *challenge
	return &clone, nil
}

func (r *InMemoryChallengeRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Challenge, error) {
	return r.listFiltered(userID, "")
}

func (r *InMemoryChallengeRepository) ListByUserIDAndStatus(ctx context.Context, userID, status string) ([]*domain.Challenge, error) {
	return r.listFiltered(userID, status)
}

func (r *InMemoryChallengeRepository) listFiltered(userID, status string) ([]*domain.Challenge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var challenges []*domain.Challenge
	for _, c := range r.store {
		if c.UserID != userID {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		clone := *c
		challenges = append(challenges, &clone)
	}
	sort.Slice(challenges, func(i, j int) bool {
		return challenges[i].CreatedAt.After(challenges[j].CreatedAt)
	})
	return challenges, nil
}

type InMemoryCompletionRepository struct {
	completions []*domain.Completion

	mu sync.RWMutex
}

func NewInMemoryCompletionRepository() *InMemoryCompletionRepository {
	return &InMemoryCompletionRepository{}
}

func (r *InMemoryCompletionRepository) ListTimesByUser(ctx context.Context, userID, entityType string) ([]time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var times []time.Time
	for _, c := range r.completions {
		if c.UserID == userID && c.EntityType == entityType {
			times = append(times, c.CompletedAt)
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i].After(times[j]) })
	return times, nil
}

func (r *InMemoryCompletionRepository) CountByUser(ctx context.Context, userID, entityType string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, c := range r.completions {
		if c.UserID == userID && c.EntityType == entityType {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryCompletionRepository) CreateBatch(ctx context.Context, completions []*domain.Completion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.completions = append(r.completions, completions...)
	return nil
}

func (r *InMemoryCompletionRepository) append(c *domain.Completion) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions = append(r.completions, c)
}

func (r *InMemoryCompletionRepository) DeleteByUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.completions[:0]
	for _, c := range r.completions {
		if c.UserID != userID {
			kept = append(kept, c)
		}
	}
	r.completions = kept
	return nil
}

type InMemoryBadgeRepository struct {
	badges []*domain.Badge
	grants []*domain.UserBadge

	mu sync.RWMutex
}

func NewInMemoryBadgeRepository() *InMemoryBadgeRepository {
	return &InMemoryBadgeRepository{}
}

func (r *InMemoryBadgeRepository) List(ctx context.Context) ([]*domain.Badge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Badge, len(r.badges))
	for i, b := range r.badges {
		clone := *b
		out[i] = &clone
	}
	return out, nil
}

func (r *InMemoryBadgeRepository) GetByName(ctx context.Context, name string) (*domain.Badge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.badges {
		if b.Name == name {
			clone := *b
			return &clone, nil
		}
	}
	return nil, domain.ErrBadgeNotFound
}

func (r *InMemoryBadgeRepository) ListByUser(ctx context.Context, userID string) ([]*domain.UserBadge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var grants []*domain.UserBadge
	for _, g := range r.grants {
		if g.UserID == userID {
			clone := *g
			grants = append(grants, &clone)
		}
	}
	return grants, nil
}

func (r *InMemoryBadgeRepository) Seed(ctx context.Context, badges []domain.Badge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range badges {
		exists := false
		for _, b := range r.badges {
			if b.Name == badges[i].Name {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		b := badges[i]
		b.ID = uuid.NewString()
		b.CreatedAt = time.Now().UTC()
		r.badges = append(r.badges, &b)
	}
	return nil
}

func (r *InMemoryBadgeRepository) hasGrant(userID, badgeID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, g := range r.grants {
		if g.UserID == userID && g.BadgeID == badgeID {
			return true
		}
	}
	return false
}

func (r *InMemoryBadgeRepository) addGrant(userID, badgeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.grants = append(r.grants, &domain.UserBadge{
		ID:        uuid.NewString(),
		UserID:    userID,
		BadgeID:   badgeID,
		AwardedAt: time.Now().UTC(),
	})
}

type InMemoryFollowRepository struct {
	edges map[string]map[string]time.Time

	mu sync.RWMutex
}

func NewInMemoryFollowRepository() *InMemoryFollowRepository {
	return &InMemoryFollowRepository{
		edges: make(map[string]map[string]time.Time),
	}
}

func (r *InMemoryFollowRepository) Create(ctx context.Context, follow *domain.Follow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.edges[follow.FollowerID] == nil {
		r.edges[follow.FollowerID] = make(map[string]time.Time)
	}
	if _, ok := r.edges[follow.FollowerID][follow.FollowingID]; ok {
		return domain.ErrAlreadyFollowing
	}
	r.edges[follow.FollowerID][follow.FollowingID] = follow.CreatedAt
	return nil
}

func (r *InMemoryFollowRepository) Delete(ctx context.Context, followerID, followingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.edges[followerID][followingID]; !ok {
		return domain.ErrNotFollowing
	}
	delete(r.edges[followerID], followingID)
	return nil
}

func (r *InMemoryFollowRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.edges[followerID][followingID]
	return ok, nil
}

// InMemoryCompletionStore mirrors the Postgres store's semantics: one
// completion attempt runs at a time, and either everything lands (entity
// update, completion row, XP credit) or nothing does.
type InMemoryCompletionStore struct {
	users       *InMemoryUserRepository
	habits      *InMemoryHabitRepository
	challenges  *InMemoryChallengeRepository
	completions *InMemoryCompletionRepository
	badges      *InMemoryBadgeRepository

	mu sync.Mutex
}

func NewInMemoryCompletionStore(
	users *InMemoryUserRepository,
	habits *InMemoryHabitRepository,
	challenges *InMemoryChallengeRepository,
	completions *InMemoryCompletionRepository,
	badges *InMemoryBadgeRepository,
) *InMemoryCompletionStore {
	return &InMemoryCompletionStore{
		users:       users,
		habits:      habits,
		challenges:  challenges,
		completions: completions,
		badges:      badges,
	}
}

func (s *InMemoryCompletionStore) CompleteHabit(ctx context.Context, habitID, userID string, decide domain.HabitDecision) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return 0, err
	}
	if habit.UserID != userID {
		return 0, domain.ErrHabitNotFound
	}

	completion, err := decide(habit)
	if err != nil {
		return 0, err
	}

	if err := s.habits.Update(ctx, habit); err != nil {
		return 0, err
	}
	s.completions.append(completion)
	return s.users.AddXP(ctx, userID, completion.XPEarned)
}

func (s *InMemoryCompletionStore) CompleteChallenge(ctx context.Context, challengeID, userID string, decide domain.ChallengeDecision) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, err := s.challenges.GetByID(ctx, challengeID)
	if err != nil {
		return 0, err
	}
	if challenge.UserID != userID {
		return 0, domain.ErrChallengeNotFound
	}

	completion, err := decide(challenge)
	if err != nil {
		return 0, err
	}

	s.challenges.mu.Lock()
	clone := *challenge
	s.challenges.store[challenge.ID] = &clone
	s.challenges.mu.Unlock()

	s.completions.append(completion)
	return s.users.AddXP(ctx, userID, completion.XPEarned)
}

// ResetProgress zeroes the user and drops their completion history under the
// same mutex that guards completions, so no partial reset is observable.
func (s *InMemoryCompletionStore) ResetProgress(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.users.ResetProgress(ctx, userID); err != nil {
		return err
	}
	return s.completions.DeleteByUser(ctx, userID)
}

func (s *InMemoryCompletionStore) GrantBadge(ctx context.Context, userID string, badge *domain.Badge) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.badges.hasGrant(userID, badge.ID) {
		return false, nil
	}
	s.badges.addGrant(userID, badge.ID)
	if _, err := s.users.AddXP(ctx, userID, badge.XPBonus); err != nil {
		return false, err
	}
	return true, nil
}
