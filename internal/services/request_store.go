package services

import (
	"context"
	"fmt"
	"time"

	"frontline/internal/database"
	"frontline/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RequestStore handles MongoDB CRUD for help requests
type RequestStore struct {
	collection *mongo.Collection
}

// NewRequestStore creates a new request store
func NewRequestStore(mongodb *database.MongoDB) *RequestStore {
	return &RequestStore{
		collection: mongodb.Collection(database.CollectionHelpRequests),
	}
}

// Create inserts a new help request. Status defaults to Pending.
func (s *RequestStore) Create(ctx context.Context, req *models.HelpRequest) error {
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	if req.Status == "" {
		req.Status = models.RequestStatusPending
	}

	result, err := s.collection.InsertOne(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create help request: %w", err)
	}

	req.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// GetByID retrieves a help request by ID. Returns (nil, nil) when no
// request has that ID.
func (s *RequestStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.HelpRequest, error) {
	var req models.HelpRequest
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get help request: %w", err)
	}
	return &req, nil
}

// List returns help requests newest-first, optionally filtered by status.
// An empty status returns every request.
func (s *RequestStore) List(ctx context.Context, status models.RequestStatus) ([]models.HelpRequest, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	cursor, err := s.collection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list help requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []models.HelpRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode help requests: %w", err)
	}
	return requests, nil
}

// MarkResolved transitions a request from Pending to Resolved, recording the
// supervisor's answer. The update filter requires status == Pending, so a
// concurrent sweep or duplicate resolve loses the race cleanly: the returned
// bool is false and the document is untouched.
func (s *RequestStore) MarkResolved(ctx context.Context, id primitive.ObjectID, answer string) (*models.HelpRequest, bool, error) {
	now := time.Now()

	var updated models.HelpRequest
	err := s.collection.FindOneAndUpdate(ctx,
		bson.M{
			"_id":    id,
			"status": models.RequestStatusPending,
		},
		bson.M{
			"$set": bson.M{
				"status":     models.RequestStatusResolved,
				"answer":     answer,
				"resolvedAt": now,
				"updatedAt":  now,
			},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to resolve help request: %w", err)
	}
	return &updated, true, nil
}

// ExpireOlderThan marks every Pending request created at or before cutoff as
// Unresolved in a single conditional UpdateMany. Answer and resolvedAt stay
// unset. Returns the number of requests affected.
func (s *RequestStore) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.collection.UpdateMany(ctx,
		bson.M{
			"status":    models.RequestStatusPending,
			"createdAt": bson.M{"$lte": cutoff},
		},
		bson.M{
			"$set": bson.M{
				"status":    models.RequestStatusUnresolved,
				"updatedAt": time.Now(),
			},
		},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale help requests: %w", err)
	}
	return result.ModifiedCount, nil
}

// CountByStatus returns the number of requests per lifecycle state.
func (s *RequestStore) CountByStatus(ctx context.Context) (map[models.RequestStatus]int64, error) {
	counts := make(map[models.RequestStatus]int64)
	for _, status := range []models.RequestStatus{
		models.RequestStatusPending,
		models.RequestStatusResolved,
		models.RequestStatusUnresolved,
	} {
		n, err := s.collection.CountDocuments(ctx, bson.M{"status": status})
		if err != nil {
			return nil, fmt.Errorf("failed to count %s requests: %w", status, err)
		}
		counts[status] = n
	}
	return counts, nil
}
