package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "paper_summaries_go_backend/internal/errors"
	"paper_summaries_go_backend/internal/models"
	"paper_summaries_go_backend/internal/utils/broker"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPageSize  = 10
	MaxPageSize      = 100
	PaperEventsTopic = "papers"
)

// PaperService validates input, runs list queries and commits mutations
// against a PaperServiceDB. Cache and broker are optional.
type PaperService struct {
	db            PaperServiceDB
	cache         QueryCache
	messageBroker *broker.Broker[models.PaperEvent]
	validate      *validator.Validate
	maxPageSize   int
}

func NewPaperService(db PaperServiceDB, cache QueryCache, messageBroker *broker.Broker[models.PaperEvent], maxPageSize int) *PaperService {
	if maxPageSize < 1 {
		maxPageSize = MaxPageSize
	}
	return &PaperService{
		db:            db,
		cache:         cache,
		messageBroker: messageBroker,
		validate:      newPaperValidator(),
		maxPageSize:   maxPageSize,
	}
}

// CreatePaper validates the candidate and stores it. Any ID or timestamps on
// the candidate are discarded.
func (s *PaperService) CreatePaper(ctx context.Context, candidate models.Paper) (*models.Paper, error) {
	paper := clonePaper(candidate)
	paper.ID = ""
	paper.CreatedAt = time.Time{}
	paper.UpdatedAt = time.Time{}

	normalizePaper(&paper)
	if err := s.validatePaper(&paper); err != nil {
		return nil, apperrors.NewInvalidInputError("Error creating paper", err)
	}

	if err := s.db.CreatePaperDB(ctx, &paper); err != nil {
		return nil, apperrors.NewUnavailableError("Error creating paper", err)
	}

	log.Info().Str("paperID", paper.ID).Str("category", string(paper.Category)).Msg("Paper created")
	s.afterMutation(ctx, models.PaperCreated, paper.ID, &paper)
	return &paper, nil
}

func (s *PaperService) GetPaper(ctx context.Context, id string) (*models.Paper, error) {
	paper, err := s.db.GetPaperDB(ctx, id)
	if err != nil {
		return nil, storeError("Error fetching paper", err)
	}
	return paper, nil
}

// UpdatePaper merges patch into the stored record and commits the merged
// record only if it passes validation.
func (s *PaperService) UpdatePaper(ctx context.Context, id string, patch models.PaperPatch) (*models.Paper, error) {
	paper, err := s.db.GetPaperDB(ctx, id)
	if err != nil {
		return nil, storeError("Error updating paper", err)
	}

	patch.Apply(paper)
	normalizePaper(paper)
	if err := s.validatePaper(paper); err != nil {
		return nil, apperrors.NewInvalidInputError("Error updating paper", err)
	}

	if err := s.db.UpdatePaperDB(ctx, paper); err != nil {
		return nil, storeError("Error updating paper", err)
	}

	log.Info().Str("paperID", paper.ID).Msg("Paper updated")
	s.afterMutation(ctx, models.PaperUpdated, paper.ID, paper)
	return paper, nil
}

func (s *PaperService) DeletePaper(ctx context.Context, id string) error {
	if err := s.db.DeletePaperDB(ctx, id); err != nil {
		return storeError("Error deleting paper", err)
	}

	log.Info().Str("paperID", id).Msg("Paper deleted")
	s.afterMutation(ctx, models.PaperDeleted, id, nil)
	return nil
}

// ListPapers returns one page of papers, newest first, matching the optional
// search text and category.
func (s *PaperService) ListPapers(ctx context.Context, query models.PaperQuery) (*models.PaperPage, error) {
	query, err := s.normalizeQuery(query)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("Error fetching papers", err)
	}

	var cacheKey string
	if s.cache != nil {
		page, key, ok := s.cache.GetPage(ctx, query)
		if ok {
			return page, nil
		}
		cacheKey = key
	}

	offset := (query.Page - 1) * query.Limit
	filter := PaperFilter{Search: query.Search, Category: query.Category}
	papers, total, err := s.db.FindPapersDB(ctx, filter, offset, query.Limit)
	if err != nil {
		return nil, apperrors.NewUnavailableError("Error fetching papers", err)
	}
	if papers == nil {
		papers = []models.Paper{}
	}

	page := &models.PaperPage{
		Papers:      papers,
		TotalPages:  totalPages(total, query.Limit),
		CurrentPage: query.Page,
		Total:       total,
	}
	if s.cache != nil && cacheKey != "" {
		s.cache.SetPage(ctx, cacheKey, page)
	}
	return page, nil
}

func (s *PaperService) normalizeQuery(query models.PaperQuery) (models.PaperQuery, error) {
	query.Search = strings.TrimSpace(query.Search)
	if parseSearch(query.Search).IsEmpty() {
		query.Search = ""
	}

	query.Category = models.Category(strings.TrimSpace(string(query.Category)))
	if query.Category != "" && !query.Category.Valid() {
		return query, fmt.Errorf("category must be one of %s (got %q)", categoryList(), query.Category)
	}

	if query.Page == 0 {
		query.Page = 1
	}
	if query.Page < 1 {
		return query, fmt.Errorf("page must be 1 or greater (got %d)", query.Page)
	}
	if query.Limit == 0 {
		query.Limit = DefaultPageSize
	}
	if query.Limit < 1 || query.Limit > s.maxPageSize {
		return query, fmt.Errorf("limit must be between 1 and %d (got %d)", s.maxPageSize, query.Limit)
	}
	return query, nil
}

func totalPages(total int64, limit int) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func (s *PaperService) afterMutation(ctx context.Context, eventType models.PaperEventType, id string, paper *models.Paper) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Str("paperID", id).Msg("Failed to invalidate query cache")
		}
	}
	if s.messageBroker != nil {
		event := models.PaperEvent{
			Type:      eventType,
			PaperID:   id,
			Timestamp: time.Now().UTC(),
		}
		if paper != nil {
			cp := clonePaper(*paper)
			event.Paper = &cp
		}
		s.messageBroker.Publish(PaperEventsTopic, event)
	}
}

func storeError(message string, err error) error {
	if errors.Is(err, ErrPaperNotFound) {
		return apperrors.NewNotFoundError("Paper not found")
	}
	return apperrors.NewUnavailableError(message, err)
}
