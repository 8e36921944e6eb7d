package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"frontline/internal/database"
	"frontline/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// KnowledgeStore handles MongoDB CRUD for learned question/answer pairs
type KnowledgeStore struct {
	collection *mongo.Collection
}

// NewKnowledgeStore creates a new knowledge store
func NewKnowledgeStore(mongodb *database.MongoDB) *KnowledgeStore {
	return &KnowledgeStore{
		collection: mongodb.Collection(database.CollectionKnowledgeEntries),
	}
}

// Upsert writes an answer for a question, overwriting any previously learned
// answer for the same question text. This is the learning step - it is the
// only code path that makes the matcher improve over time.
func (s *KnowledgeStore) Upsert(ctx context.Context, question, answer string) error {
	now := time.Now()
	_, err := s.collection.UpdateOne(ctx,
		bson.M{"question": question},
		bson.M{
			"$set": bson.M{
				"answer":    answer,
				"updatedAt": now,
			},
			"$setOnInsert": bson.M{
				"question":  question,
				"createdAt": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert knowledge entry: %w", err)
	}
	return nil
}

// InsertIfAbsent stores a seed entry without touching a learned answer for
// the same question. Returns true when a new entry was created.
func (s *KnowledgeStore) InsertIfAbsent(ctx context.Context, question, answer string) (bool, error) {
	now := time.Now()
	res, err := s.collection.UpdateOne(ctx,
		bson.M{"question": question},
		bson.M{
			"$setOnInsert": bson.M{
				"question":  question,
				"answer":    answer,
				"createdAt": now,
				"updatedAt": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("failed to seed knowledge entry: %w", err)
	}
	return res.UpsertedCount > 0, nil
}

// FindExact looks up an entry whose question equals the given text,
// case-insensitively and ignoring surrounding whitespace.
// Returns (nil, nil) when no entry matches.
func (s *KnowledgeStore) FindExact(ctx context.Context, question string) (*models.KnowledgeEntry, error) {
	pattern := fmt.Sprintf("^%s$", regexp.QuoteMeta(strings.TrimSpace(question)))

	var entry models.KnowledgeEntry
	err := s.collection.FindOne(ctx, bson.M{
		"question": primitive.Regex{Pattern: pattern, Options: "i"},
	}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find knowledge entry: %w", err)
	}
	return &entry, nil
}

// All returns every knowledge entry in insertion order (createdAt ascending).
// The explicit sort keeps "first match wins" in the matcher deterministic.
func (s *KnowledgeStore) All(ctx context.Context) ([]models.KnowledgeEntry, error) {
	cursor, err := s.collection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.KnowledgeEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode knowledge entries: %w", err)
	}
	return entries, nil
}

// Count returns the number of learned entries.
func (s *KnowledgeStore) Count(ctx context.Context) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count knowledge entries: %w", err)
	}
	return count, nil
}
