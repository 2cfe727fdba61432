package models

import (
	"time"
)

type Category string

const (
	CategoryCV    Category = "CV"
	CategoryNLP   Category = "NLP"
	CategoryRL    Category = "RL"
	CategoryML    Category = "ML"
	CategoryAI    Category = "AI"
	CategoryOther Category = "Other"
)

// Categories lists every accepted category in display order.
var Categories = []Category{CategoryCV, CategoryNLP, CategoryRL, CategoryML, CategoryAI, CategoryOther}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Summary struct {
	Problem    string `json:"problem" validate:"required"`
	Method     string `json:"method" validate:"required"`
	Dataset    string `json:"dataset" validate:"required"`
	KeyResults string `json:"keyResults" validate:"required"`
	Takeaway   string `json:"takeaway" validate:"required"`
}

type Paper struct {
	ID              string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title           string    `json:"title" validate:"required"`
	Authors         []string  `json:"authors" gorm:"type:jsonb;serializer:json" validate:"required,min=1,dive,required"`
	PublicationDate Date      `json:"publicationDate" gorm:"type:date" validate:"required"`
	Abstract        string    `json:"abstract" validate:"required"`
	Category        Category  `json:"category" gorm:"type:varchar(16);index" validate:"required,category"`
	Summary         Summary   `json:"summary" gorm:"embedded;embeddedPrefix:summary_"`
	CreatedAt       time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// SummaryPatch carries the summary fields of a partial update. Nil fields are
// left untouched.
type SummaryPatch struct {
	Problem    *string `json:"problem,omitempty"`
	Method     *string `json:"method,omitempty"`
	Dataset    *string `json:"dataset,omitempty"`
	KeyResults *string `json:"keyResults,omitempty"`
	Takeaway   *string `json:"takeaway,omitempty"`
}

// PaperPatch is the body of a partial update.
type PaperPatch struct {
	Title           *string       `json:"title,omitempty"`
	Authors         []string      `json:"authors,omitempty"`
	PublicationDate *Date         `json:"publicationDate,omitempty"`
	Abstract        *string       `json:"abstract,omitempty"`
	Category        *Category     `json:"category,omitempty"`
	Summary         *SummaryPatch `json:"summary,omitempty"`
}

// Apply merges the patch into p. Authors replaces the whole list when present.
func (patch PaperPatch) Apply(p *Paper) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Authors != nil {
		p.Authors = append([]string(nil), patch.Authors...)
	}
	if patch.PublicationDate != nil {
		p.PublicationDate = *patch.PublicationDate
	}
	if patch.Abstract != nil {
		p.Abstract = *patch.Abstract
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if s := patch.Summary; s != nil {
		if s.Problem != nil {
			p.Summary.Problem = *s.Problem
		}
		if s.Method != nil {
			p.Summary.Method = *s.Method
		}
		if s.Dataset != nil {
			p.Summary.Dataset = *s.Dataset
		}
		if s.KeyResults != nil {
			p.Summary.KeyResults = *s.KeyResults
		}
		if s.Takeaway != nil {
			p.Summary.Takeaway = *s.Takeaway
		}
	}
}

type PaperQuery struct {
	Search   string
	Category Category
	Page     int
	Limit    int
}

type PaperPage struct {
	Papers      []Paper `json:"papers"`
	TotalPages  int     `json:"totalPages"`
	CurrentPage int     `json:"currentPage"`
	Total       int64   `json:"total"`
}

type PaperEventType string

const (
	PaperCreated PaperEventType = "paper.created"
	PaperUpdated PaperEventType = "paper.updated"
	PaperDeleted PaperEventType = "paper.deleted"
)

// PaperEvent describes a committed mutation. Paper is nil for deletions.
type PaperEvent struct {
	Type      PaperEventType `json:"type"`
	PaperID   string         `json:"paperId"`
	Paper     *Paper         `json:"paper,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
