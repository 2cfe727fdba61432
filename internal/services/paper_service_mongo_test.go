package services

import (
	"context"
	"testing"
	"time"

	"paper_summaries_go_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoPaperFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, mongoPaperFilter(PaperFilter{}))
	assert.Equal(t, bson.M{"category": "RL"}, mongoPaperFilter(PaperFilter{Category: models.CategoryRL}))
	assert.Equal(t, bson.M{
		"$text":    bson.M{"$search": `"deep q" -atari`},
		"category": "RL",
	}, mongoPaperFilter(PaperFilter{Search: `"deep q" -atari`, Category: models.CategoryRL}))
}

func TestPaperDocumentConversion(t *testing.T) {
	stamp := time.Date(2024, time.March, 1, 9, 30, 0, 123000000, time.UTC)
	paper := samplePaper("A Study")
	paper.CreatedAt = stamp
	paper.UpdatedAt = stamp

	doc := newPaperDocument(&paper)
	doc.ID = primitive.NewObjectID()

	assert.Equal(t, "ML", doc.Category)
	assert.Equal(t, "The takeaway.", doc.Summary.Takeaway)

	back := doc.toModel()
	assert.Equal(t, doc.ID.Hex(), back.ID)
	back.ID = ""
	assert.Equal(t, paper, back)
}

func TestMongoStoreTreatsMalformedIDsAsMissing(t *testing.T) {
	store := &MongoPaperServiceDB{now: time.Now}
	ctx := context.Background()

	_, err := store.GetPaperDB(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, ErrPaperNotFound)

	err = store.UpdatePaperDB(ctx, &models.Paper{ID: "123"})
	assert.ErrorIs(t, err, ErrPaperNotFound)

	err = store.DeletePaperDB(ctx, "zz")
	assert.ErrorIs(t, err, ErrPaperNotFound)
}
