package services

import (
	"context"
	"strings"
	"testing"

	"paper_summaries_go_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dryRunDB builds statements without a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestPaperFilterScopeSQL(t *testing.T) {
	db := dryRunDB(t)

	stmt := db.Model(&models.Paper{}).
		Scopes(paperFilterScope(PaperFilter{
			Search:   `graph neural "attention is all" -vision`,
			Category: models.CategoryNLP,
		})).
		Order("created_at DESC").
		Find(&[]models.Paper{}).Statement

	sql := stmt.SQL.String()
	assert.True(t, strings.HasPrefix(sql, `SELECT * FROM "papers" WHERE category = $1`), sql)
	assert.Contains(t, sql, PaperSearchVector+" @@ to_tsquery('english', $2)")
	assert.Contains(t, sql, PaperSearchVector+" @@ phraseto_tsquery('english', $3)")
	assert.Contains(t, sql, "NOT ("+PaperSearchVector+" @@ plainto_tsquery('english', $4))")
	assert.Contains(t, sql, "ORDER BY created_at DESC")
	assert.Equal(t, []interface{}{"NLP", "graph | neural", "attention is all", "vision"}, stmt.Vars)
}

func TestPaperFilterScopeWithoutFilter(t *testing.T) {
	db := dryRunDB(t)

	stmt := db.Model(&models.Paper{}).Scopes(paperFilterScope(PaperFilter{})).Find(&[]models.Paper{}).Statement
	assert.Equal(t, `SELECT * FROM "papers"`, stmt.SQL.String())
	assert.Empty(t, stmt.Vars)
}

func TestPostgresStoreTreatsMalformedIDsAsMissing(t *testing.T) {
	store := NewPaperServiceDB(dryRunDB(t))
	ctx := context.Background()

	_, err := store.GetPaperDB(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrPaperNotFound)

	err = store.UpdatePaperDB(ctx, &models.Paper{ID: "42"})
	assert.ErrorIs(t, err, ErrPaperNotFound)

	err = store.DeletePaperDB(ctx, "")
	assert.ErrorIs(t, err, ErrPaperNotFound)
}
