package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tzbot/internal/zone"
	"tzbot/pkg/dateutil"
	"tzbot/pkg/logx"
)

type mongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	log    logx.Logger
}

type zoneDoc struct {
	Name      string    `bson:"name"`
	Act       int       `bson:"act"`
	Time      time.Time `bson:"time"`
	Announced bool      `bson:"announced"`
}

func docFromRecord(rec zone.Record) zoneDoc {
	return zoneDoc{Name: rec.Name, Act: rec.Act, Time: rec.Time, Announced: rec.Announced}
}

func (d zoneDoc) record() zone.Record {
	return zone.Record{Name: d.Name, Act: d.Act, Time: d.Time, Announced: d.Announced}
}

func openMongo(ctx context.Context, cfg Config, log logx.Logger) (Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	coll := client.Database(cfg.Database).Collection(cfg.Collection)

	// The composite key must be unique so SetIfAbsent stays race-safe even
	// across processes.
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}, {Key: "time", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo index: %w", err)
	}

	log.Debug("mongo store opened",
		logx.String("database", cfg.Database), logx.String("collection", cfg.Collection))
	return &mongoStore{client: client, coll: coll, log: log}, nil
}

func keyFilter(rec zone.Record) bson.M {
	return bson.M{"name": rec.Name, "time": rec.Time}
}

func (s *mongoStore) GetByTime(ctx context.Context, t time.Time) (*zone.Record, error) {
	t = dateutil.RoundDownHalfHour(t)
	var doc zoneDoc
	err := s.coll.FindOne(ctx, bson.M{"time": t}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec := doc.record()
	return &rec, nil
}

func (s *mongoStore) Upsert(ctx context.Context, rec zone.Record) error {
	_, err := s.coll.UpdateOne(ctx, keyFilter(rec),
		bson.M{"$set": docFromRecord(rec)}, options.Update().SetUpsert(true))
	return err
}

func (s *mongoStore) SetIfAbsent(ctx context.Context, rec zone.Record) (bool, error) {
	_, err := s.coll.InsertOne(ctx, docFromRecord(rec))
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *mongoStore) Update(ctx context.Context, rec zone.Record) error {
	_, err := s.coll.UpdateOne(ctx, keyFilter(rec), bson.M{"$set": docFromRecord(rec)})
	return err
}

func (s *mongoStore) ListUnannounced(ctx context.Context) ([]zone.Record, error) {
	cur, err := s.coll.Find(ctx, bson.M{"announced": false})
	if err != nil {
		return nil, err
	}
	var docs []zoneDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	recs := make([]zone.Record, 0, len(docs))
	for _, d := range docs {
		recs = append(recs, d.record())
	}
	return recs, nil
}

func (s *mongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
