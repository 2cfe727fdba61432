package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"paper_summaries_go_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPaperAPI struct {
	mock.Mock
}

func (m *MockPaperAPI) ListPapers(ctx context.Context, query models.PaperQuery) (*models.PaperPage, error) {
	args := m.Called(ctx, query)
	page, _ := args.Get(0).(*models.PaperPage)
	return page, args.Error(1)
}

func (m *MockPaperAPI) GetPaper(ctx context.Context, id string) (*models.Paper, error) {
	args := m.Called(ctx, id)
	paper, _ := args.Get(0).(*models.Paper)
	return paper, args.Error(1)
}

func (m *MockPaperAPI) CreatePaper(ctx context.Context, paper models.Paper) (*models.Paper, error) {
	args := m.Called(ctx, paper)
	created, _ := args.Get(0).(*models.Paper)
	return created, args.Error(1)
}

func (m *MockPaperAPI) UpdatePaper(ctx context.Context, id string, patch models.PaperPatch) (*models.Paper, error) {
	args := m.Called(ctx, id, patch)
	updated, _ := args.Get(0).(*models.Paper)
	return updated, args.Error(1)
}

func (m *MockPaperAPI) DeletePaper(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func heldPaper(id, title string, category models.Category) models.Paper {
	return models.Paper{
		ID:              id,
		Title:           title,
		Authors:         []string{"Ada Lovelace"},
		PublicationDate: models.NewDate(2024, time.January, 15),
		Abstract:        "An abstract.",
		Category:        category,
		Summary:         models.Summary{Problem: "p", Method: "m", Dataset: "d", KeyResults: "k", Takeaway: "t"},
	}
}

func pageOf(papers ...models.Paper) *models.PaperPage {
	return &models.PaperPage{Papers: papers, TotalPages: 1, CurrentPage: 1, Total: int64(len(papers))}
}

func loadedStore(t *testing.T, papers ...models.Paper) (*PaperStore, *MockPaperAPI) {
	t.Helper()
	m := new(MockPaperAPI)
	store := NewPaperStore(m)
	m.On("ListPapers", mock.Anything, models.PaperQuery{}).Return(pageOf(papers...), nil).Once()
	require.NoError(t, store.Fetch(context.Background(), models.PaperQuery{}))
	return store, m
}

func TestFetchReplacesHeldPage(t *testing.T) {
	store, _ := loadedStore(t, heldPaper("1", "A Study", models.CategoryML))

	assert.Len(t, store.Papers(), 1)
	assert.False(t, store.Loading())
	assert.Empty(t, store.Err())
	assert.Equal(t, int64(1), store.PageInfo().Total)
}

func TestFetchFailureKeepsData(t *testing.T) {
	store, m := loadedStore(t, heldPaper("1", "A Study", models.CategoryML))

	query := models.PaperQuery{Page: 2}
	m.On("ListPapers", mock.Anything, query).Return(nil, errors.New("connection refused")).Once()
	err := store.Fetch(context.Background(), query)
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch papers", store.Err())
	assert.Len(t, store.Papers(), 1)

	m.On("ListPapers", mock.Anything, query).Return(nil, &APIError{StatusCode: http.StatusBadRequest, Message: "Error fetching papers"}).Once()
	require.Error(t, store.Fetch(context.Background(), query))
	assert.Equal(t, "Error fetching papers", store.Err(), "server message wins over the fallback")

	m.On("ListPapers", mock.Anything, query).Return(pageOf(), nil).Once()
	require.NoError(t, store.Fetch(context.Background(), query))
	assert.Empty(t, store.Err(), "success clears the error")
	assert.Empty(t, store.Papers())
}

// blockingListAPI holds each ListPapers call until its search term is released.
type blockingListAPI struct {
	MockPaperAPI
	started chan string
	release map[string]chan struct{}
}

func (b *blockingListAPI) ListPapers(ctx context.Context, query models.PaperQuery) (*models.PaperPage, error) {
	b.started <- query.Search
	<-b.release[query.Search]
	return pageOf(heldPaper(query.Search, query.Search, models.CategoryML)), nil
}

func TestFetchLatestQueryWins(t *testing.T) {
	fake := &blockingListAPI{
		started: make(chan string, 2),
		release: map[string]chan struct{}{
			"slow": make(chan struct{}),
			"fast": make(chan struct{}),
		},
	}
	close(fake.release["fast"])
	store := NewPaperStore(fake)

	slowDone := make(chan error, 1)
	go func() { slowDone <- store.Fetch(context.Background(), models.PaperQuery{Search: "slow"}) }()
	assert.Equal(t, "slow", <-fake.started)
	assert.True(t, store.Loading())

	require.NoError(t, store.Fetch(context.Background(), models.PaperQuery{Search: "fast"}))
	assert.Equal(t, "fast", <-fake.started)
	assert.True(t, store.Loading(), "slow fetch still in flight")

	close(fake.release["slow"])
	assert.ErrorIs(t, <-slowDone, ErrSuperseded)

	papers := store.Papers()
	require.Len(t, papers, 1)
	assert.Equal(t, "fast", papers[0].ID)
	assert.Equal(t, "fast", store.PageInfo().Query.Search)
	assert.False(t, store.Loading())
}

func TestSearchIgnoresShortTerms(t *testing.T) {
	store, m := loadedStore(t)

	fetched, err := store.Search(context.Background(), "ab")
	require.NoError(t, err)
	assert.False(t, fetched)

	m.On("ListPapers", mock.Anything, models.PaperQuery{Search: "abc", Page: 1}).Return(pageOf(), nil).Once()
	fetched, err = store.Search(context.Background(), " abc ")
	require.NoError(t, err)
	assert.True(t, fetched)

	m.On("ListPapers", mock.Anything, models.PaperQuery{Page: 1}).Return(pageOf(), nil).Once()
	fetched, err = store.Search(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, fetched, "clearing the search refetches")
	m.AssertExpectations(t)
}

func TestCreatePrependsPaper(t *testing.T) {
	store, m := loadedStore(t, heldPaper("1", "Older", models.CategoryML))

	candidate := studyPaper()
	created := heldPaper("2", "A Study", models.CategoryML)
	m.On("CreatePaper", mock.Anything, candidate).Return(&created, nil).Once()

	got, err := store.Create(context.Background(), candidate)
	require.NoError(t, err)
	assert.Equal(t, "2", got.ID)

	papers := store.Papers()
	require.Len(t, papers, 2)
	assert.Equal(t, "2", papers[0].ID)
	assert.Equal(t, int64(2), store.PageInfo().Total)
}

func TestCreateFailure(t *testing.T) {
	store, m := loadedStore(t, heldPaper("1", "Older", models.CategoryML))

	m.On("CreatePaper", mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Once()
	_, err := store.Create(context.Background(), studyPaper())
	require.Error(t, err)
	assert.Equal(t, "Failed to add paper", store.Err())
	assert.Len(t, store.Papers(), 1)

	store.ClearError()
	assert.Empty(t, store.Err())
}

func TestUpdateReplacesInPlace(t *testing.T) {
	store, m := loadedStore(t,
		heldPaper("1", "First", models.CategoryML),
		heldPaper("2", "Second", models.CategoryML),
		heldPaper("3", "Third", models.CategoryML),
	)

	title := "Second, revised"
	patch := models.PaperPatch{Title: &title}
	revised := heldPaper("2", title, models.CategoryML)
	m.On("UpdatePaper", mock.Anything, "2", patch).Return(&revised, nil).Once()

	_, err := store.Update(context.Background(), "2", patch)
	require.NoError(t, err)

	papers := store.Papers()
	require.Len(t, papers, 3)
	assert.Equal(t, title, papers[1].Title)

	m.On("UpdatePaper", mock.Anything, "9", patch).Return(nil, &APIError{StatusCode: http.StatusNotFound, Message: "Paper not found"}).Once()
	_, err = store.Update(context.Background(), "9", patch)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "Paper not found", store.Err())
}

func TestDeleteRemovesPaper(t *testing.T) {
	store, m := loadedStore(t, heldPaper("1", "First", models.CategoryML), heldPaper("2", "Second", models.CategoryML))

	m.On("DeletePaper", mock.Anything, "1").Return(nil).Once()
	require.NoError(t, store.Delete(context.Background(), "1"))
	papers := store.Papers()
	require.Len(t, papers, 1)
	assert.Equal(t, "2", papers[0].ID)
	assert.Equal(t, int64(1), store.PageInfo().Total)

	m.On("DeletePaper", mock.Anything, "2").Return(errors.New("reset by peer")).Once()
	require.Error(t, store.Delete(context.Background(), "2"))
	assert.Equal(t, "Failed to delete paper", store.Err())
	assert.Len(t, store.Papers(), 1)
}

func TestLookupAndGet(t *testing.T) {
	store, m := loadedStore(t, heldPaper("1", "Held", models.CategoryML))

	p, ok := store.Lookup("1")
	assert.True(t, ok)
	assert.Equal(t, "Held", p.Title)

	_, ok = store.Lookup("2")
	assert.False(t, ok, "lookup never goes to the server")

	remote := heldPaper("2", "Remote", models.CategoryCV)
	m.On("GetPaper", mock.Anything, "2").Return(&remote, nil).Once()
	got, err := store.Get(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "Remote", got.Title)

	got, err = store.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Held", got.Title)
	m.AssertNumberOfCalls(t, "GetPaper", 1)
}

func TestRefineNarrowsHeldPage(t *testing.T) {
	vision := heldPaper("2", "Vision Transformers", models.CategoryCV)
	vision.Summary.Method = "Patch embeddings."
	store, _ := loadedStore(t,
		heldPaper("1", "A Study", models.CategoryML),
		vision,
		heldPaper("3", "Language Study", models.CategoryNLP),
	)

	ids := func(papers []models.Paper) []string {
		out := []string{}
		for _, p := range papers {
			out = append(out, p.ID)
		}
		return out
	}

	assert.Equal(t, []string{"1", "2", "3"}, ids(store.Refine("", "")))
	assert.Equal(t, []string{"1", "3"}, ids(store.Refine("STUDY", "")))
	assert.Equal(t, []string{"2"}, ids(store.Refine("patch", "")))
	assert.Equal(t, []string{"3"}, ids(store.Refine("study", models.CategoryNLP)))
	assert.Equal(t, []string{}, ids(store.Refine("absent", "")))
}

func TestApplyEvent(t *testing.T) {
	store, _ := loadedStore(t, heldPaper("1", "First", models.CategoryML), heldPaper("2", "Second", models.CategoryML))

	renamed := heldPaper("1", "First, renamed", models.CategoryML)
	store.ApplyEvent(models.PaperEvent{Type: models.PaperUpdated, PaperID: "1", Paper: &renamed})
	assert.Equal(t, "First, renamed", store.Papers()[0].Title)

	other := heldPaper("9", "Elsewhere", models.CategoryML)
	store.ApplyEvent(models.PaperEvent{Type: models.PaperCreated, PaperID: "9", Paper: &other})
	store.ApplyEvent(models.PaperEvent{Type: models.PaperUpdated, PaperID: "9", Paper: &other})
	assert.Len(t, store.Papers(), 2, "papers outside the page are not inserted")

	store.ApplyEvent(models.PaperEvent{Type: models.PaperDeleted, PaperID: "2"})
	papers := store.Papers()
	require.Len(t, papers, 1)
	assert.Equal(t, "1", papers[0].ID)
}
