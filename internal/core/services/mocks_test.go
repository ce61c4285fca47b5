package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/grovelab/grove-engine/internal/core/domain"
	"github.com/grovelab/grove-engine/internal/core/services"
)

// fakeClock lets tests move through calendar days deterministically.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// passAtomic runs the function directly; the in-memory repos have no
// transactions to join.
type passAtomic struct {
	simulateError error
}

func (a *passAtomic) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if a.simulateError != nil {
		return a.simulateError
	}
	return fn(ctx)
}

type mockUserRepo struct {
	store         map[string]*domain.User
	simulateError error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{store: make(map[string]*domain.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	for _, u := range m.store {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	clone := *user
	m.store[user.ID] = &clone
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	for _, u := range m.store {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) UpdateWallet(ctx context.Context, user *domain.User) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	if _, ok := m.store[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	clone := *user
	m.store[user.ID] = &clone
	return nil
}

type mockHabitRepo struct {
	store         map[string]*domain.Habit
	simulateError error
}

func newMockHabitRepo() *mockHabitRepo {
	return &mockHabitRepo{store: make(map[string]*domain.Habit)}
}

func (m *mockHabitRepo) Create(ctx context.Context, habit *domain.Habit) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	clone := *habit
	m.store[habit.ID] = &clone
	return nil
}

func (m *mockHabitRepo) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	h, ok := m.store[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	clone := *h
	return &clone, nil
}

func (m *mockHabitRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	var list []*domain.Habit
	for _, h := range m.store {
		if h.UserID == userID {
			clone := *h
			list = append(list, &clone)
		}
	}
	return list, nil
}

func (m *mockHabitRepo) Update(ctx context.Context, habit *domain.Habit) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	if _, ok := m.store[habit.ID]; !ok {
		return domain.ErrHabitNotFound
	}
	clone := *habit
	m.store[habit.ID] = &clone
	return nil
}

func (m *mockHabitRepo) Delete(ctx context.Context, id string) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	if _, ok := m.store[id]; !ok {
		return domain.ErrHabitNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *mockHabitRepo) ClearMissionFlags(ctx context.Context, userID string) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	for _, h := range m.store {
		if h.UserID == userID {
			h.CompletedForMission = false
		}
	}
	return nil
}

type mockMissionRepo struct {
	store         map[string]*domain.DailyMission
	simulateError error
}

func newMockMissionRepo() *mockMissionRepo {
	return &mockMissionRepo{store: make(map[string]*domain.DailyMission)}
}

func (m *mockMissionRepo) CreateBatch(ctx context.Context, missions []*domain.DailyMission) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	for _, mission := range missions {
		clone := *mission
		m.store[mission.ID] = &clone
	}
	return nil
}

func (m *mockMissionRepo) GetByID(ctx context.Context, id string) (*domain.DailyMission, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	mission, ok := m.store[id]
	if !ok {
		return nil, domain.ErrMissionNotFound
	}
	clone := *mission
	return &clone, nil
}

func (m *mockMissionRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.DailyMission, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	var list []*domain.DailyMission
	for _, mission := range m.store {
		if mission.UserID == userID {
			clone := *mission
			list = append(list, &clone)
		}
	}
	return list, nil
}

func (m *mockMissionRepo) Update(ctx context.Context, mission *domain.DailyMission) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	if _, ok := m.store[mission.ID]; !ok {
		return domain.ErrMissionNotFound
	}
	clone := *mission
	m.store[mission.ID] = &clone
	return nil
}

func (m *mockMissionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	for id, mission := range m.store {
		if mission.UserID == userID {
			delete(m.store, id)
		}
	}
	return nil
}

type mockGardenRepo struct {
	store         map[string]*domain.PlantedFlower
	simulateError error
}

func newMockGardenRepo() *mockGardenRepo {
	return &mockGardenRepo{store: make(map[string]*domain.PlantedFlower)}
}

func (m *mockGardenRepo) Create(ctx context.Context, flower *domain.PlantedFlower) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	for _, f := range m.store {
		if f.UserID == flower.UserID && f.Position == flower.Position {
			return domain.ErrSlotOccupied
		}
	}
	clone := *flower
	m.store[flower.ID] = &clone
	return nil
}

func (m *mockGardenRepo) GetBySlot(ctx context.Context, userID string, position int) (*domain.PlantedFlower, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	for _, f := range m.store {
		if f.UserID == userID && f.Position == position {
			clone := *f
			return &clone, nil
		}
	}
	return nil, domain.ErrFlowerNotFound
}

func (m *mockGardenRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.PlantedFlower, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	var list []*domain.PlantedFlower
	for _, f := range m.store {
		if f.UserID == userID {
			clone := *f
			list = append(list, &clone)
		}
	}
	return list, nil
}

// testEnv wires every service against the in-memory repos with a seeded
// user, the way cmd/api wires the real thing.
type testEnv struct {
	users    *mockUserRepo
	habits   *mockHabitRepo
	missions *mockMissionRepo
	garden   *mockGardenRepo
	atomic   *passAtomic
	clock    *fakeClock

	habitSvc   *services.HabitService
	missionSvc *services.MissionService
	gardenSvc  *services.GardenService
	statsSvc   *services.StatsService

	userID string
}

func newTestEnv(now time.Time) *testEnv {
	env := &testEnv{
		users:    newMockUserRepo(),
		habits:   newMockHabitRepo(),
		missions: newMockMissionRepo(),
		garden:   newMockGardenRepo(),
		atomic:   &passAtomic{},
		clock:    newFakeClock(now),
	}

	user, _ := domain.NewUser("u1", "test@example.com")
	env.users.store[user.ID] = user
	env.userID = user.ID

	env.missionSvc = services.NewMissionService(env.missions, env.habits, env.users, env.atomic, env.clock)
	env.habitSvc = services.NewHabitService(env.habits, env.missions, env.missionSvc, env.atomic, env.clock)
	env.gardenSvc = services.NewGardenService(env.garden, env.users, env.atomic, env.clock)
	env.statsSvc = services.NewStatsService(env.habits, env.clock)

	return env
}
