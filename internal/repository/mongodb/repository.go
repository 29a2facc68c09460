package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/repository"
)

const (
	stocksCollection = "stocks"
	salesCollection  = "sales"
)

// MongoDBRepository implements repository.Store with one collection per table.
// Transactions need a replica set or sharded deployment.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewMongoDBRepository connects to uri and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}, nil
}

// WithinTx runs fn inside a multi-document transaction.
func (r *MongoDBRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start mongodb session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	tx := &mongoTx{db: r.db}
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, tx)
	}, txnOpts)
	return err
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

type mongoTx struct {
	db *mongo.Database
}

func (t *mongoTx) FindStock(ctx context.Context, name string) (models.StockItem, bool, error) {
	var item models.StockItem
	err := t.db.Collection(stocksCollection).FindOne(ctx, bson.M{"_id": name}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.StockItem{}, false, nil
	}
	if err != nil {
		return models.StockItem{}, false, fmt.Errorf("find stock %s: %w", name, err)
	}
	return item, true, nil
}

func (t *mongoTx) ListStocks(ctx context.Context) ([]models.StockItem, error) {
	cursor, err := t.db.Collection(stocksCollection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.StockItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode stocks: %w", err)
	}
	return items, nil
}

func (t *mongoTx) InsertStock(ctx context.Context, item models.StockItem) error {
	_, err := t.db.Collection(stocksCollection).InsertOne(ctx, item)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("insert stock %s: %w", item.Name, repository.ErrDuplicateKey)
	}
	if err != nil {
		return fmt.Errorf("insert stock %s: %w", item.Name, err)
	}
	return nil
}

func (t *mongoTx) UpdateStock(ctx context.Context, item models.StockItem) error {
	res, err := t.db.Collection(stocksCollection).UpdateByID(ctx, item.Name, bson.M{"$set": bson.M{"amount": item.Amount}})
	if err != nil {
		return fmt.Errorf("update stock %s: %w", item.Name, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update stock %s: %w", item.Name, repository.ErrNotFound)
	}
	return nil
}

func (t *mongoTx) DeleteAllStocks(ctx context.Context) error {
	if _, err := t.db.Collection(stocksCollection).DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("delete stocks: %w", err)
	}
	return nil
}

func (t *mongoTx) GetOrCreateLedger(ctx context.Context, key string) (models.SalesLedger, bool, error) {
	res, err := t.db.Collection(salesCollection).UpdateByID(ctx, key,
		bson.M{"$setOnInsert": bson.M{"total": 0.0}},
		options.Update().SetUpsert(true))
	if err != nil {
		return models.SalesLedger{}, false, fmt.Errorf("upsert ledger %s: %w", key, err)
	}

	var ledger models.SalesLedger
	if err := t.db.Collection(salesCollection).FindOne(ctx, bson.M{"_id": key}).Decode(&ledger); err != nil {
		return models.SalesLedger{}, false, fmt.Errorf("find ledger %s: %w", key, err)
	}
	return ledger, res.UpsertedCount > 0, nil
}

func (t *mongoTx) UpdateLedger(ctx context.Context, ledger models.SalesLedger) error {
	res, err := t.db.Collection(salesCollection).UpdateByID(ctx, ledger.Name, bson.M{"$set": bson.M{"total": ledger.Total}})
	if err != nil {
		return fmt.Errorf("update ledger %s: %w", ledger.Name, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update ledger %s: %w", ledger.Name, repository.ErrNotFound)
	}
	return nil
}

func (t *mongoTx) DeleteAllLedgers(ctx context.Context) error {
	if _, err := t.db.Collection(salesCollection).DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("delete ledgers: %w", err)
	}
	return nil
}
