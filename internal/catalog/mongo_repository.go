package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Abuxar/alif-luxury/internal/domain"
)

const productsCollection = "products"

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{collection: db.Collection(productsCollection)}
}

// productDoc is the raw document shape, including the legacy fields older
// admin tooling wrote. Normalization to domain.Product happens here and
// nowhere else.
type productDoc struct {
	ID              interface{} `bson:"_id"`
	Title           string      `bson:"title"`
	Name            string      `bson:"name"` // legacy alias for title
	SKU             string      `bson:"sku"`
	PriceMinorUnits int64       `bson:"price_minor_units"`
	InventoryCount  int         `bson:"inventory_count"`
	IsAvailable     bool        `bson:"is_available"`
	UpdatedAt       time.Time   `bson:"updated_at"`
}

func (d *productDoc) normalize() *domain.Product {
	title := d.Title
	if title == "" {
		title = d.Name
	}

	var id string
	switch v := d.ID.(type) {
	case primitive.ObjectID:
		id = v.Hex()
	case string:
		id = v
	default:
		id = fmt.Sprint(v)
	}

	return &domain.Product{
		ID:              id,
		Title:           title,
		SKU:             d.SKU,
		PriceMinorUnits: d.PriceMinorUnits,
		InventoryCount:  d.InventoryCount,
		IsAvailable:     d.IsAvailable,
		UpdatedAt:       d.UpdatedAt,
	}
}

// idFilter matches documents whose _id is either a hex ObjectID or a plain
// string. Both exist in the catalog; see productDoc.
func idFilter(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{oid, id}}}
	}
	return bson.M{"_id": id}
}

func (m *mongoRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var doc productDoc
	err := m.collection.FindOne(ctx, idFilter(id)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return doc.normalize(), nil
}

func (m *mongoRepository) GetProducts(ctx context.Context, ids []string) ([]domain.Product, error) {
	filters := bson.A{}
	for _, id := range ids {
		filters = append(filters, idFilter(id))
	}
	if len(filters) == 0 {
		return nil, nil
	}

	cursor, err := m.collection.Find(ctx, bson.M{"$or": filters})
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []domain.Product
	for cursor.Next(ctx) {
		var doc productDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		products = append(products, *doc.normalize())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return products, nil
}

func (m *mongoRepository) SaveProduct(ctx context.Context, product *domain.Product) error {
	product.UpdatedAt = time.Now()

	update := bson.M{"$set": bson.M{
		"title":             product.Title,
		"sku":               product.SKU,
		"price_minor_units": product.PriceMinorUnits,
		"inventory_count":   product.InventoryCount,
		"is_available":      product.IsAvailable,
		"updated_at":        product.UpdatedAt,
	}}

	result, err := m.collection.UpdateOne(ctx, idFilter(product.ID), update)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (m *mongoRepository) DecrementInventory(ctx context.Context, id string, quantity int) error {
	// Pipeline update so the clamp happens atomically inside the store.
	// Two concurrent decrements of the same product serialize on the
	// document instead of both reading the same pre-decrement count.
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"inventory_count": bson.M{"$max": bson.A{
				0,
				bson.M{"$subtract": bson.A{
					bson.M{"$ifNull": bson.A{"$inventory_count", 0}},
					quantity,
				}},
			}},
			"updated_at": "$$NOW",
		}}},
	}

	result, err := m.collection.UpdateOne(ctx, idFilter(id), update)
	if err != nil {
		return fmt.Errorf("failed to decrement inventory: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}
