package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"paper_summaries_go_backend/internal/models"

	"github.com/rs/zerolog/log"
)

const (
	msgFetchPapers = "Failed to fetch papers"
	msgFetchPaper  = "Failed to fetch paper"
	msgAddPaper    = "Failed to add paper"
	msgUpdatePaper = "Failed to update paper"
	msgDeletePaper = "Failed to delete paper"

	// Search only queries the server for terms longer than this.
	minSearchLength = 2
)

// ErrSuperseded is returned by Fetch when a newer fetch was issued before
// this one completed. Its result was discarded.
var ErrSuperseded = errors.New("superseded by a newer fetch")

// PaperAPI is the subset of Client the store depends on.
type PaperAPI interface {
	ListPapers(ctx context.Context, query models.PaperQuery) (*models.PaperPage, error)
	GetPaper(ctx context.Context, id string) (*models.Paper, error)
	CreatePaper(ctx context.Context, paper models.Paper) (*models.Paper, error)
	UpdatePaper(ctx context.Context, id string, patch models.PaperPatch) (*models.Paper, error)
	DeletePaper(ctx context.Context, id string) error
}

type PageInfo struct {
	TotalPages  int
	CurrentPage int
	Total       int64
	Query       models.PaperQuery
}

// PaperStore holds the most recently fetched page of papers, whether a
// request is in flight, and the last failure message. It is safe for
// concurrent use.
type PaperStore struct {
	api PaperAPI

	latest atomic.Uint64

	mu      sync.RWMutex
	papers  []models.Paper
	page    PageInfo
	pending int
	errMsg  string
}

func NewPaperStore(api PaperAPI) *PaperStore {
	return &PaperStore{api: api}
}

func (s *PaperStore) begin() {
	s.mu.Lock()
	s.pending++
	s.mu.Unlock()
}

// end must be called with s.mu held.
func (s *PaperStore) end() {
	s.pending--
}

func (s *PaperStore) fail(err error, fallback string) {
	s.errMsg = messageFor(err, fallback)
}

func messageFor(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Fetch loads the page described by query and replaces the held page. When
// fetches overlap only the most recently issued one is applied.
func (s *PaperStore) Fetch(ctx context.Context, query models.PaperQuery) error {
	seq := s.latest.Add(1)
	s.begin()

	result, err := s.api.ListPapers(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.end()

	if seq != s.latest.Load() {
		log.Debug().Uint64("seq", seq).Msg("Discarding superseded paper fetch")
		return ErrSuperseded
	}
	if err != nil {
		s.fail(err, msgFetchPapers)
		return err
	}

	s.papers = append([]models.Paper(nil), result.Papers...)
	s.page = PageInfo{
		TotalPages:  result.TotalPages,
		CurrentPage: result.CurrentPage,
		Total:       result.Total,
		Query:       query,
	}
	s.errMsg = ""
	return nil
}

// Search refetches the first page for term, keeping the current category
// and page size. Terms of one or two characters are ignored and Search
// reports false.
func (s *PaperStore) Search(ctx context.Context, term string) (bool, error) {
	term = strings.TrimSpace(term)
	if term != "" && len([]rune(term)) <= minSearchLength {
		return false, nil
	}

	s.mu.RLock()
	query := s.page.Query
	s.mu.RUnlock()

	query.Search = term
	query.Page = 1
	return true, s.Fetch(ctx, query)
}

// Create adds a paper and prepends it to the held list.
func (s *PaperStore) Create(ctx context.Context, paper models.Paper) (*models.Paper, error) {
	s.begin()
	created, err := s.api.CreatePaper(ctx, paper)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.end()

	if err != nil {
		s.fail(err, msgAddPaper)
		return nil, err
	}
	s.papers = append([]models.Paper{*created}, s.papers...)
	s.page.Total++
	s.errMsg = ""
	return created, nil
}

// Update applies patch on the server and replaces the held copy in place.
func (s *PaperStore) Update(ctx context.Context, id string, patch models.PaperPatch) (*models.Paper, error) {
	s.begin()
	updated, err := s.api.UpdatePaper(ctx, id, patch)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.end()

	if err != nil {
		s.fail(err, msgUpdatePaper)
		return nil, err
	}
	s.replace(*updated)
	s.errMsg = ""
	return updated, nil
}

func (s *PaperStore) Delete(ctx context.Context, id string) error {
	s.begin()
	err := s.api.DeletePaper(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.end()

	if err != nil {
		s.fail(err, msgDeletePaper)
		return err
	}
	s.remove(id)
	s.errMsg = ""
	return nil
}

// Lookup searches only the held list. A paper outside the current page is
// reported missing even if it exists on the server.
func (s *PaperStore) Lookup(id string) (models.Paper, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.papers {
		if p.ID == id {
			return clonePaper(p), true
		}
	}
	return models.Paper{}, false
}

// Get returns the held copy when present and fetches by id otherwise.
func (s *PaperStore) Get(ctx context.Context, id string) (*models.Paper, error) {
	if p, ok := s.Lookup(id); ok {
		return &p, nil
	}

	s.begin()
	paper, err := s.api.GetPaper(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.end()

	if err != nil {
		s.fail(err, msgFetchPaper)
		return nil, err
	}
	return paper, nil
}

// Refine narrows the held page to papers whose text fields contain term
// (case-insensitive) and, when category is set, whose category matches.
// The result is always a subset of Papers.
func (s *PaperStore) Refine(term string, category models.Category) []models.Paper {
	term = strings.ToLower(strings.TrimSpace(term))

	s.mu.RLock()
	defer s.mu.RUnlock()

	refined := []models.Paper{}
	for _, p := range s.papers {
		if category != "" && p.Category != category {
			continue
		}
		if term != "" && !strings.Contains(refineText(p), term) {
			continue
		}
		refined = append(refined, clonePaper(p))
	}
	return refined
}

func refineText(p models.Paper) string {
	fields := []string{p.Title, strings.Join(p.Authors, " "), p.Abstract, p.Summary.Problem, p.Summary.Method, p.Summary.Takeaway}
	return strings.ToLower(strings.Join(fields, "\n"))
}

// ApplyEvent reconciles the held page with a change made elsewhere. Created
// papers are not inserted since page membership depends on the query.
func (s *PaperStore) ApplyEvent(event models.PaperEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch event.Type {
	case models.PaperUpdated:
		if event.Paper != nil {
			s.replace(*event.Paper)
		}
	case models.PaperDeleted:
		s.remove(event.PaperID)
	}
}

// replace must be called with s.mu held.
func (s *PaperStore) replace(paper models.Paper) {
	for i := range s.papers {
		if s.papers[i].ID == paper.ID {
			s.papers[i] = clonePaper(paper)
			return
		}
	}
}

// remove must be called with s.mu held.
func (s *PaperStore) remove(id string) {
	for i := range s.papers {
		if s.papers[i].ID == id {
			s.papers = append(s.papers[:i:i], s.papers[i+1:]...)
			if s.page.Total > 0 {
				s.page.Total--
			}
			return
		}
	}
}

func (s *PaperStore) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
}

func (s *PaperStore) Papers() []models.Paper {
	s.mu.RLock()
	defer s.mu.RUnlock()

	papers := make([]models.Paper, len(s.papers))
	for i, p := range s.papers {
		papers[i] = clonePaper(p)
	}
	return papers
}

func (s *PaperStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending > 0
}

// Err returns the last failure message, or "" if none is held.
func (s *PaperStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

func (s *PaperStore) PageInfo() PageInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

func clonePaper(p models.Paper) models.Paper {
	p.Authors = append([]string(nil), p.Authors...)
	return p
}
