package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Abuxar/alif-luxury/internal/domain"
)

const (
	ordersCollection = "orders"
	eventsCollection = "processed_events"
)

type mongoRepository struct {
	orders *mongo.Collection
	events *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		orders: db.Collection(ordersCollection),
		events: db.Collection(eventsCollection),
	}
}

// EnsureIndexes sets up the unique session index on orders. Processed events
// need no extra index: their _id is the event id.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(ordersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "session_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create session_id index: %w", err)
	}
	return nil
}

func (m *mongoRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}

	_, err := m.orders.InsertOne(ctx, order)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (m *mongoRepository) GetOrderBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	var order domain.Order
	err := m.orders.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (m *mongoRepository) MarkFulfilled(ctx context.Context, sessionID string) (*domain.Order, error) {
	now := time.Now()
	filter := bson.M{
		"session_id": sessionID,
		"status":     domain.OrderStatusPending,
	}
	update := bson.M{"$set": bson.M{
		"status":       domain.OrderStatusFulfilled,
		"fulfilled_at": now,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order domain.Order
	err := m.orders.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order)
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to mark order fulfilled: %w", err)
	}

	// No pending order matched: either it never existed or someone else
	// already fulfilled it. Distinguish the two for the caller.
	existing, getErr := m.GetOrderBySessionID(ctx, sessionID)
	if getErr != nil {
		return nil, getErr
	}
	if existing.Status == domain.OrderStatusFulfilled {
		return existing, ErrAlreadyFulfilled
	}
	return nil, ErrOrderNotFound
}

func (m *mongoRepository) RecordEvent(ctx context.Context, eventID, sessionID string) error {
	_, err := m.events.InsertOne(ctx, bson.M{
		"_id":         eventID,
		"session_id":  sessionID,
		"received_at": time.Now(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEvent
		}
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}
