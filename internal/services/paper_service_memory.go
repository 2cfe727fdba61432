package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"paper_summaries_go_backend/internal/models"

	"github.com/google/uuid"
)

type memoryRecord struct {
	paper models.Paper
	seq   uint64
}

// InMemoryPaperServiceDB keeps papers in process memory. It backs
// STORE_DRIVER=memory and the tests.
type InMemoryPaperServiceDB struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord
	nextSeq uint64
	now     func() time.Time
}

func NewInMemoryPaperServiceDB() *InMemoryPaperServiceDB {
	return &InMemoryPaperServiceDB{
		records: make(map[string]*memoryRecord),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *InMemoryPaperServiceDB) CreatePaperDB(ctx context.Context, paper *models.Paper) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	paper.ID = uuid.NewString()
	paper.CreatedAt = now
	paper.UpdatedAt = now

	s.nextSeq++
	s.records[paper.ID] = &memoryRecord{paper: clonePaper(*paper), seq: s.nextSeq}
	return nil
}

func (s *InMemoryPaperServiceDB) GetPaperDB(ctx context.Context, id string) (*models.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, ErrPaperNotFound
	}
	paper := clonePaper(record.paper)
	return &paper, nil
}

func (s *InMemoryPaperServiceDB) UpdatePaperDB(ctx context.Context, paper *models.Paper) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[paper.ID]
	if !ok {
		return ErrPaperNotFound
	}
	paper.CreatedAt = record.paper.CreatedAt
	paper.UpdatedAt = s.now()
	record.paper = clonePaper(*paper)
	return nil
}

func (s *InMemoryPaperServiceDB) DeletePaperDB(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrPaperNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *InMemoryPaperServiceDB) FindPapersDB(ctx context.Context, filter PaperFilter, offset, limit int) ([]models.Paper, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := parseSearch(filter.Search)
	var matched []*memoryRecord
	for _, record := range s.records {
		if filter.Category != "" && record.paper.Category != filter.Category {
			continue
		}
		if !query.IsEmpty() && !matchesSearch(record.paper, query) {
			continue
		}
		matched = append(matched, record)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.paper.CreatedAt.Equal(b.paper.CreatedAt) {
			return a.paper.CreatedAt.After(b.paper.CreatedAt)
		}
		return a.seq > b.seq
	})

	total := int64(len(matched))
	papers := []models.Paper{}
	for i := offset; i < len(matched) && len(papers) < limit; i++ {
		papers = append(papers, clonePaper(matched[i].paper))
	}
	return papers, total, nil
}

// searchableText joins the fields covered by the text index.
func searchableText(p models.Paper) string {
	parts := []string{p.Title, p.Abstract, p.Summary.Problem, p.Summary.Method, p.Summary.Takeaway}
	parts = append(parts, p.Authors...)
	return strings.Join(parts, " ")
}

func matchesSearch(p models.Paper, query searchQuery) bool {
	words := tokenize(searchableText(p))
	present := make(map[string]bool, len(words))
	for _, w := range words {
		present[w] = true
	}

	for _, excluded := range query.Excluded {
		if present[excluded] {
			return false
		}
	}

	joined := " " + strings.Join(words, " ") + " "
	for _, phrase := range query.Phrases {
		if !strings.Contains(joined, " "+phrase+" ") {
			return false
		}
	}

	if len(query.Terms) == 0 {
		return true
	}
	for _, term := range query.Terms {
		if present[term] {
			return true
		}
	}
	return false
}

func clonePaper(p models.Paper) models.Paper {
	p.Authors = append([]string(nil), p.Authors...)
	return p
}
