package services

import (
	"context"
	"errors"

	"paper_summaries_go_backend/internal/models"
)

// ErrPaperNotFound is returned by every PaperServiceDB implementation when no
// record has the requested id.
var ErrPaperNotFound = errors.New("paper not found")

// PaperFilter is the store-level view of a list query. Search has already
// been checked for searchable tokens and Category for membership.
type PaperFilter struct {
	Search   string
	Category models.Category
}

// PaperServiceDB is the record store. Implementations assign ID, CreatedAt and
// UpdatedAt; callers never set them.
type PaperServiceDB interface {
	CreatePaperDB(ctx context.Context, paper *models.Paper) error
	GetPaperDB(ctx context.Context, id string) (*models.Paper, error)
	UpdatePaperDB(ctx context.Context, paper *models.Paper) error
	DeletePaperDB(ctx context.Context, id string) error
	FindPapersDB(ctx context.Context, filter PaperFilter, offset, limit int) ([]models.Paper, int64, error)
}

// QueryCache stores list results. Implementations are best effort: a miss or
// a backend failure both report ok == false. GetPage returns the key a miss
// should be filled under; the key is bound to the cache state at lookup time
// so a fill racing with Invalidate is never served. An empty key means the
// result must not be cached.
type QueryCache interface {
	GetPage(ctx context.Context, query models.PaperQuery) (page *models.PaperPage, key string, ok bool)
	SetPage(ctx context.Context, key string, page *models.PaperPage)
	Invalidate(ctx context.Context) error
}
