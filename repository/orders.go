// Package repository persists orders, users and order idempotency keys.
package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-tote-store/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// OrderStore persists placed orders.
type OrderStore interface {
	Insert(ctx context.Context, order models.Order) error
	FindByID(ctx context.Context, id string) (models.Order, error)
	FindByOwner(ctx context.Context, ownerID string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id, status, trackingNumber, trackingURL string) (models.Order, error)
}

// MongoOrderStore keeps orders in the "orders" collection.
type MongoOrderStore struct {
	Collection *mongo.Collection
}

func NewMongoOrderStore(db *mongo.Database) *MongoOrderStore {
	return &MongoOrderStore{Collection: db.Collection("orders")}
}

func (s *MongoOrderStore) Insert(ctx context.Context, order models.Order) error {
	if _, err := s.Collection.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("insert order %s: %w", order.ID, err)
	}
	return nil
}

func (s *MongoOrderStore) FindByID(ctx context.Context, id string) (models.Order, error) {
	var order models.Order
	err := s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("find order %s: %w", id, err)
	}
	return order, nil
}

func (s *MongoOrderStore) FindByOwner(ctx context.Context, ownerID string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.Collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders for %s: %w", ownerID, err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders for %s: %w", ownerID, err)
	}
	return orders, nil
}

func (s *MongoOrderStore) UpdateStatus(ctx context.Context, id, status, trackingNumber, trackingURL string) (models.Order, error) {
	update := bson.M{
		"$set": bson.M{
			"status":          status,
			"tracking_number": trackingNumber,
			"tracking_url":    trackingURL,
			"updated_at":      time.Now().UTC(),
		},
	}
	result, err := s.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return models.Order{}, fmt.Errorf("update order %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return models.Order{}, ErrNotFound
	}
	return s.FindByID(ctx, id)
}

// MemoryOrderStore keeps orders in process, for local runs without MongoDB.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[string]models.Order
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[string]models.Order)}
}

func (s *MemoryOrderStore) Insert(ctx context.Context, order models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orders[order.ID]; exists {
		return fmt.Errorf("insert order %s: duplicate id", order.ID)
	}
	s.orders[order.ID] = order
	return nil
}

func (s *MemoryOrderStore) FindByID(ctx context.Context, id string) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	return order, nil
}

func (s *MemoryOrderStore) FindByOwner(ctx context.Context, ownerID string) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orders := []models.Order{}
	for _, o := range s.orders {
		if o.OwnerID != nil && *o.OwnerID == ownerID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (s *MemoryOrderStore) UpdateStatus(ctx context.Context, id, status, trackingNumber, trackingURL string) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	order.Status = status
	order.TrackingNumber = trackingNumber
	order.TrackingURL = trackingURL
	order.UpdatedAt = time.Now().UTC()
	s.orders[id] = order
	return order, nil
}
