package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "github.com/phillip/events-console-go/models"
)

// MongoRecordStore implements RecordStore on a MongoDB collection.
type MongoRecordStore struct {
	col *mongo.Collection
}

func NewMongoRecordStore(client *mongo.Client, dbName, collection string) *MongoRecordStore {
	return &MongoRecordStore{col: client.Database(dbName).Collection(collection)}
}

func (s *MongoRecordStore) Create(ctx context.Context, event *models.Event) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}

	if _, err := s.col.InsertOne(ctx, event); err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	return event.ID.Hex(), nil
}

func (s *MongoRecordStore) Get(ctx context.Context, id string) (*models.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var event models.Event
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("find event %s: %w", id, err)
	}
	return &event, nil
}

func (s *MongoRecordStore) Update(ctx context.Context, id string, event *models.Event) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"program_type":       event.ProgramType,
		"title":              event.Title,
		"description":        event.Description,
		"partner":            event.Partner,
		"event_venue":        event.EventVenue,
		"event_date":         event.EventDate,
		"beneficiary_count":  event.BeneficiaryCount,
		"beneficiary_note":   event.BeneficiaryNote,
		"contribution_value": event.ContributionValue,
		"contribution_note":  event.ContributionNote,
		"main_image":         event.MainImage,
		"images":             event.Images,
		"updated_at":         time.Now(),
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": update})
	if err != nil {
		return fmt.Errorf("update event %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *MongoRecordStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *MongoRecordStore) ListOrdered(ctx context.Context, orderField string, descending bool) ([]models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	direction := 1
	if descending {
		direction = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: orderField, Value: direction}})

	cursor, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}
