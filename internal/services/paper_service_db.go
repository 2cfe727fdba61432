package services

import (
	"context"
	"errors"
	"strings"

	"paper_summaries_go_backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaperSearchVector is the tsvector expression over the indexed fields. The
// GIN index created by database.InitDB uses the same expression.
const PaperSearchVector = `to_tsvector('english', coalesce(title, '') || ' ' || coalesce(abstract, '') || ' ' || coalesce(authors::text, '') || ' ' || coalesce(summary_problem, '') || ' ' || coalesce(summary_method, '') || ' ' || coalesce(summary_takeaway, ''))`

// DefaultPaperServiceDB implements PaperServiceDB on Postgres through GORM
type DefaultPaperServiceDB struct {
	db *gorm.DB
}

func NewPaperServiceDB(db *gorm.DB) *DefaultPaperServiceDB {
	return &DefaultPaperServiceDB{db: db}
}

func (s *DefaultPaperServiceDB) CreatePaperDB(ctx context.Context, paper *models.Paper) error {
	paper.ID = ""
	return s.db.WithContext(ctx).Create(paper).Error
}

func (s *DefaultPaperServiceDB) GetPaperDB(ctx context.Context, id string) (*models.Paper, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrPaperNotFound
	}
	var paper models.Paper
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&paper).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaperNotFound
	}
	if err != nil {
		return nil, err
	}
	return &paper, nil
}

// UpdatePaperDB replaces every column of the record in one transaction,
// keeping the stored created_at.
func (s *DefaultPaperServiceDB) UpdatePaperDB(ctx context.Context, paper *models.Paper) error {
	if _, err := uuid.Parse(paper.ID); err != nil {
		return ErrPaperNotFound
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Paper
		err := tx.Select("id", "created_at").Where("id = ?", paper.ID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaperNotFound
		}
		if err != nil {
			return err
		}
		paper.CreatedAt = existing.CreatedAt
		return tx.Save(paper).Error
	})
}

func (s *DefaultPaperServiceDB) DeletePaperDB(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrPaperNotFound
	}
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Paper{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaperNotFound
	}
	return nil
}

func (s *DefaultPaperServiceDB) FindPapersDB(ctx context.Context, filter PaperFilter, offset, limit int) ([]models.Paper, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Paper{}).Scopes(paperFilterScope(filter)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	papers := []models.Paper{}
	if int64(offset) >= total {
		return papers, total, nil
	}
	err := s.db.WithContext(ctx).
		Scopes(paperFilterScope(filter)).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&papers).Error
	if err != nil {
		return nil, 0, err
	}
	return papers, total, nil
}

// paperFilterScope translates a PaperFilter into WHERE clauses. Terms become
// an OR-ed to_tsquery; they are plain letters and digits after tokenize.
func paperFilterScope(filter PaperFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Category != "" {
			db = db.Where("category = ?", string(filter.Category))
		}
		query := parseSearch(filter.Search)
		if len(query.Terms) > 0 {
			db = db.Where(PaperSearchVector+" @@ to_tsquery('english', ?)", strings.Join(query.Terms, " | "))
		}
		for _, phrase := range query.Phrases {
			db = db.Where(PaperSearchVector+" @@ phraseto_tsquery('english', ?)", phrase)
		}
		for _, excluded := range query.Excluded {
			db = db.Where("NOT ("+PaperSearchVector+" @@ plainto_tsquery('english', ?))", excluded)
		}
		return db
	}
}
