package services

import (
	"context"
	"sync"
	"time"

	"paper_summaries_go_backend/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockQueryCache struct {
	mock.Mock
}

func (m *MockQueryCache) GetPage(ctx context.Context, query models.PaperQuery) (*models.PaperPage, string, bool) {
	args := m.Called(ctx, query)
	page, _ := args.Get(0).(*models.PaperPage)
	return page, args.String(1), args.Bool(2)
}

func (m *MockQueryCache) SetPage(ctx context.Context, key string, page *models.PaperPage) {
	m.Called(ctx, key, page)
}

func (m *MockQueryCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockPaperServiceDB struct {
	mock.Mock
}

func (m *MockPaperServiceDB) CreatePaperDB(ctx context.Context, paper *models.Paper) error {
	args := m.Called(ctx, paper)
	return args.Error(0)
}

func (m *MockPaperServiceDB) GetPaperDB(ctx context.Context, id string) (*models.Paper, error) {
	args := m.Called(ctx, id)
	paper, _ := args.Get(0).(*models.Paper)
	return paper, args.Error(1)
}

func (m *MockPaperServiceDB) UpdatePaperDB(ctx context.Context, paper *models.Paper) error {
	args := m.Called(ctx, paper)
	return args.Error(0)
}

func (m *MockPaperServiceDB) DeletePaperDB(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPaperServiceDB) FindPapersDB(ctx context.Context, filter PaperFilter, offset, limit int) ([]models.Paper, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	papers, _ := args.Get(0).([]models.Paper)
	return papers, args.Get(1).(int64), args.Error(2)
}

// fakeClock advances by one second on every reading.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func samplePaper(title string) models.Paper {
	return models.Paper{
		Title:           title,
		Authors:         []string{"Ada Lovelace", "Alan Turing"},
		PublicationDate: models.NewDate(2024, time.January, 15),
		Abstract:        "An abstract about " + title + ".",
		Category:        models.CategoryML,
		Summary: models.Summary{
			Problem:    "The problem.",
			Method:     "The method.",
			Dataset:    "The dataset.",
			KeyResults: "The results.",
			Takeaway:   "The takeaway.",
		},
	}
}

func newTestPaperService() (*PaperService, *InMemoryPaperServiceDB) {
	store := NewInMemoryPaperServiceDB()
	store.now = newFakeClock().Now
	return NewPaperService(store, nil, nil, MaxPageSize), store
}
