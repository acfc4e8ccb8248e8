package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"street-bites/pkg/domain"
)

const (
	menuCollection     = "menu_items"
	offersCollection   = "offers"
	settingsCollection = "settings"
	ordersCollection   = "orders"
	countersCollection = "order_counters"
	loginCollection    = "login_requests"
)

// MongoRepository is the document-store backend. Records are keyed by
// their own "id" field, backed by a unique index.
type MongoRepository struct {
	db *mongo.Database
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{db: db}
}

func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		menuCollection: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
		offersCollection: {{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique}},
		ordersCollection: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		loginCollection: {{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique}},
	}
	for name, models := range indexes {
		if _, err := r.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", name, err)
		}
	}
	return nil
}

func (r *MongoRepository) ListMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "id", Value: 1}})
	cursor, err := r.db.Collection(menuCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	items := []domain.MenuItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoRepository) UpsertMenuItem(ctx context.Context, item domain.MenuItem) error {
	_, err := r.db.Collection(menuCollection).ReplaceOne(ctx,
		bson.M{"id": item.ID}, item, options.Replace().SetUpsert(true))
	return err
}

func (r *MongoRepository) DeleteMenuItem(ctx context.Context, id string) (int64, error) {
	result, err := r.db.Collection(menuCollection).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *MongoRepository) DeleteMenuItemsByCategory(ctx context.Context, category string) (int64, error) {
	result, err := r.db.Collection(menuCollection).DeleteMany(ctx, bson.M{"category": category})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *MongoRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return r.findOrders(ctx, bson.M{})
}

func (r *MongoRepository) ListOrdersSince(ctx context.Context, since time.Time) ([]domain.Order, error) {
	return r.findOrders(ctx, bson.M{"createdAt": bson.M{"$gte": since}})
}

func (r *MongoRepository) findOrders(ctx context.Context, filter bson.M) ([]domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "id", Value: -1}})
	cursor, err := r.db.Collection(ordersCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	orders := []domain.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *MongoRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	err := r.db.Collection(ordersCollection).FindOne(ctx, bson.M{"id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder takes the next daily number and then inserts the order. The
// two writes are not one transaction: standalone servers have none. The
// counter only moves forward, so a failed insert skips a number and never
// hands the same one to two orders.
func (r *MongoRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	var counter struct {
		Seq int `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.db.Collection(countersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": order.CreatedAt.Format("2006-01-02")},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return fmt.Errorf("next order number: %w", err)
	}
	order.OrderNumber = counter.Seq
	order.FormattedOrderID = domain.FormatOrderNumber(order.CreatedAt, counter.Seq)

	if _, err := r.db.Collection(ordersCollection).InsertOne(ctx, order); err != nil {
		return fmt.Errorf("insert order %s: %w", order.FormattedOrderID, err)
	}
	return nil
}

func (r *MongoRepository) UpdateOrderStatus(ctx context.Context, id string, current, next domain.OrderStatus) (bool, error) {
	result, err := r.db.Collection(ordersCollection).UpdateOne(ctx,
		bson.M{"id": id, "status": current},
		bson.M{"$set": bson.M{"status": next}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

func (r *MongoRepository) DeleteOrdersOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	filter := bson.M{}
	if !cutoff.IsZero() {
		filter = bson.M{"createdAt": bson.M{"$lt": cutoff}}
	}
	result, err := r.db.Collection(ordersCollection).DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *MongoRepository) GetLocation(ctx context.Context) (*domain.LocationData, error) {
	var doc struct {
		Location domain.LocationData `bson:"doc"`
	}
	err := r.db.Collection(settingsCollection).FindOne(ctx, bson.M{"_id": locationKey}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc.Location, nil
}

func (r *MongoRepository) SaveLocation(ctx context.Context, loc domain.LocationData) error {
	_, err := r.db.Collection(settingsCollection).UpdateOne(ctx,
		bson.M{"_id": locationKey},
		bson.M{"$set": bson.M{"doc": loc, "updatedAt": time.Now()}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *MongoRepository) ListOffers(ctx context.Context) ([]domain.SpecialOffer, error) {
	cursor, err := r.db.Collection(offersCollection).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	offers := []domain.SpecialOffer{}
	if err := cursor.All(ctx, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *MongoRepository) UpsertOffer(ctx context.Context, offer domain.SpecialOffer) error {
	_, err := r.db.Collection(offersCollection).ReplaceOne(ctx,
		bson.M{"id": offer.ID}, offer, options.Replace().SetUpsert(true))
	return err
}

func (r *MongoRepository) DeleteOffer(ctx context.Context, id string) (int64, error) {
	result, err := r.db.Collection(offersCollection).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *MongoRepository) CreateLoginRequest(ctx context.Context, req *domain.LoginRequest) error {
	_, err := r.db.Collection(loginCollection).InsertOne(ctx, req)
	return err
}

func (r *MongoRepository) GetLoginRequest(ctx context.Context, id string) (*domain.LoginRequest, error) {
	var req domain.LoginRequest
	err := r.db.Collection(loginCollection).FindOne(ctx, bson.M{"id": id}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *MongoRepository) SetLoginRequestStatus(ctx context.Context, id string, current, next domain.LoginStatus) (bool, error) {
	result, err := r.db.Collection(loginCollection).UpdateOne(ctx,
		bson.M{"id": id, "status": current},
		bson.M{"$set": bson.M{"status": next}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

func (r *MongoRepository) IncrementLoginAttempts(ctx context.Context, id string) (int, error) {
	var req domain.LoginRequest
	err := r.db.Collection(loginCollection).FindOneAndUpdate(ctx,
		bson.M{"id": id},
		bson.M{"$inc": bson.M{"attempts": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return req.Attempts, nil
}

// SeedCatalog replaces the menu and offers with bulk writes. Standalone
// servers have no multi-document transactions, so a failure part way
// leaves the catalog partially seeded; seeding again repairs it.
func (r *MongoRepository) SeedCatalog(ctx context.Context, catalog domain.Catalog) error {
	menu := r.db.Collection(menuCollection)
	if _, err := menu.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear menu: %w", err)
	}
	if len(catalog.Menu) > 0 {
		models := make([]mongo.WriteModel, 0, len(catalog.Menu))
		for _, item := range catalog.Menu {
			models = append(models, mongo.NewReplaceOneModel().
				SetFilter(bson.M{"id": item.ID}).SetReplacement(item).SetUpsert(true))
		}
		if _, err := menu.BulkWrite(ctx, models); err != nil {
			return fmt.Errorf("seed menu: %w", err)
		}
	}

	offers := r.db.Collection(offersCollection)
	if _, err := offers.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear offers: %w", err)
	}
	if len(catalog.Offers) > 0 {
		models := make([]mongo.WriteModel, 0, len(catalog.Offers))
		for _, offer := range catalog.Offers {
			models = append(models, mongo.NewReplaceOneModel().
				SetFilter(bson.M{"id": offer.ID}).SetReplacement(offer).SetUpsert(true))
		}
		if _, err := offers.BulkWrite(ctx, models); err != nil {
			return fmt.Errorf("seed offers: %w", err)
		}
	}

	return r.SaveLocation(ctx, catalog.Location)
}
