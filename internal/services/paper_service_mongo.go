package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paper_summaries_go_backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const PapersCollection = "papers"

type summaryDocument struct {
	Problem    string `bson:"problem"`
	Method     string `bson:"method"`
	Dataset    string `bson:"dataset"`
	KeyResults string `bson:"keyResults"`
	Takeaway   string `bson:"takeaway"`
}

type paperDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Title           string             `bson:"title"`
	Authors         []string           `bson:"authors"`
	PublicationDate time.Time          `bson:"publicationDate"`
	Abstract        string             `bson:"abstract"`
	Category        string             `bson:"category"`
	Summary         summaryDocument    `bson:"summary"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func newPaperDocument(p *models.Paper) paperDocument {
	return paperDocument{
		Title:           p.Title,
		Authors:         p.Authors,
		PublicationDate: p.PublicationDate.Time,
		Abstract:        p.Abstract,
		Category:        string(p.Category),
		Summary: summaryDocument{
			Problem:    p.Summary.Problem,
			Method:     p.Summary.Method,
			Dataset:    p.Summary.Dataset,
			KeyResults: p.Summary.KeyResults,
			Takeaway:   p.Summary.Takeaway,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (d paperDocument) toModel() models.Paper {
	return models.Paper{
		ID:              d.ID.Hex(),
		Title:           d.Title,
		Authors:         d.Authors,
		PublicationDate: models.DateOf(d.PublicationDate.UTC()),
		Abstract:        d.Abstract,
		Category:        models.Category(d.Category),
		Summary: models.Summary{
			Problem:    d.Summary.Problem,
			Method:     d.Summary.Method,
			Dataset:    d.Summary.Dataset,
			KeyResults: d.Summary.KeyResults,
			Takeaway:   d.Summary.Takeaway,
		},
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// MongoPaperServiceDB implements PaperServiceDB on a MongoDB collection with a
// text index.
type MongoPaperServiceDB struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewMongoPaperServiceDB(db *mongo.Database) *MongoPaperServiceDB {
	return &MongoPaperServiceDB{
		collection: db.Collection(PapersCollection),
		// BSON dates carry milliseconds.
		now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// EnsureIndexes creates the text index and the filter/sort indexes.
func (s *MongoPaperServiceDB) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "abstract", Value: "text"},
				{Key: "authors", Value: "text"},
				{Key: "summary.problem", Value: "text"},
				{Key: "summary.method", Value: "text"},
				{Key: "summary.takeaway", Value: "text"},
			},
			Options: options.Index().SetName("papers_text"),
		},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create paper indexes: %w", err)
	}
	return nil
}

func (s *MongoPaperServiceDB) CreatePaperDB(ctx context.Context, paper *models.Paper) error {
	now := s.now()
	paper.CreatedAt = now
	paper.UpdatedAt = now

	doc := newPaperDocument(paper)
	doc.ID = primitive.NewObjectID()
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return err
	}
	paper.ID = doc.ID.Hex()
	return nil
}

func (s *MongoPaperServiceDB) GetPaperDB(ctx context.Context, id string) (*models.Paper, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPaperNotFound
	}
	var doc paperDocument
	err = s.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrPaperNotFound
	}
	if err != nil {
		return nil, err
	}
	paper := doc.toModel()
	return &paper, nil
}

// UpdatePaperDB replaces the document in a single write, keeping createdAt.
func (s *MongoPaperServiceDB) UpdatePaperDB(ctx context.Context, paper *models.Paper) error {
	objectID, err := primitive.ObjectIDFromHex(paper.ID)
	if err != nil {
		return ErrPaperNotFound
	}
	paper.UpdatedAt = s.now()
	doc := newPaperDocument(paper)

	replacement := bson.M{
		"$set": bson.M{
			"title":           doc.Title,
			"authors":         doc.Authors,
			"publicationDate": doc.PublicationDate,
			"abstract":        doc.Abstract,
			"category":        doc.Category,
			"summary":         doc.Summary,
			"updatedAt":       doc.UpdatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated paperDocument
	err = s.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, replacement, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrPaperNotFound
	}
	if err != nil {
		return err
	}
	*paper = updated.toModel()
	return nil
}

func (s *MongoPaperServiceDB) DeletePaperDB(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrPaperNotFound
	}
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrPaperNotFound
	}
	return nil
}

func (s *MongoPaperServiceDB) FindPapersDB(ctx context.Context, filter PaperFilter, offset, limit int) ([]models.Paper, int64, error) {
	query := mongoPaperFilter(filter)

	total, err := s.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	papers := []models.Paper{}
	if int64(offset) >= total {
		return papers, total, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := s.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc paperDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, err
		}
		papers = append(papers, doc.toModel())
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, err
	}
	return papers, total, nil
}

// mongoPaperFilter hands the raw search text to $text so MongoDB applies its
// own phrase, negation and stemming rules.
func mongoPaperFilter(filter PaperFilter) bson.M {
	query := bson.M{}
	if filter.Search != "" {
		query["$text"] = bson.M{"$search": filter.Search}
	}
	if filter.Category != "" {
		query["category"] = string(filter.Category)
	}
	return query
}
