package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"time"

	kerrors "github.com/PolarWolf314/dotenvpull/internal/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	secretsCollection = "encrypted_data"
	sharesCollection  = "share_data"
	shareTTLIndex     = "share_ttl"

	mongoServerSelectionTimeout = 5 * time.Second
)

// secretDocument keeps encrypted_content as base64 text so existing
// deployments' collections stay readable.
type secretDocument struct {
	ProjectID        string `bson:"project_id"`
	EncryptedContent string `bson:"encrypted_content"`
	AccessKey        string `bson:"access_key"`
}

type shareDocument struct {
	ProjectID        string    `bson:"project_id"`
	ShareCode        string    `bson:"share_code"`
	EncryptedContent string    `bson:"encrypted_content"`
	CreatedAt        time.Time `bson:"created_at"`
}

// MongoStore persists records in MongoDB. Uniqueness of project ids is
// enforced by unique indexes, and Consume uses FindOneAndDelete.
type MongoStore struct {
	client   *mongo.Client
	secrets  *mongo.Collection
	shares   *mongo.Collection
	shareTTL time.Duration
	now      func() time.Time
}

func NewMongoStore(ctx context.Context, cfg Config) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerSelectionTimeout(mongoServerSelectionTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, storageError("connecting to mongo", err)
	}

	db := client.Database(cfg.MongoDatabase)
	ms := &MongoStore{
		client:   client,
		secrets:  db.Collection(secretsCollection),
		shares:   db.Collection(sharesCollection),
		shareTTL: cfg.ShareTTL,
		now:      cfg.clock(),
	}

	if err := ms.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	if err := ms.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return ms, nil
}

func (ms *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := ms.secrets.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "project_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "access_key", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return storageError("creating secret indexes", err)
	}

	_, err = ms.shares.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "project_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return storageError("creating share indexes", err)
	}

	return ms.ensureShareTTLIndex(ctx)
}

// ensureShareTTLIndex makes the TTL index on created_at match shareTTL. An
// index left by a run with another TTL is dropped first, and no TTL index is
// kept when shareTTL is zero.
func (ms *MongoStore) ensureShareTTLIndex(ctx context.Context) error {
	indexes := ms.shares.Indexes()
	specs, err := indexes.ListSpecifications(ctx)
	if err != nil {
		return storageError("listing share indexes", err)
	}

	want := ttlSeconds(ms.shareTTL)
	for _, spec := range specs {
		if spec.ExpireAfterSeconds == nil {
			continue
		}
		if ms.shareTTL > 0 && spec.Name == shareTTLIndex && *spec.ExpireAfterSeconds == want {
			return nil
		}
		if _, err := indexes.DropOne(ctx, spec.Name); err != nil {
			return storageError("dropping share TTL index", err)
		}
	}

	if ms.shareTTL <= 0 {
		return nil
	}

	// The TTL monitor only sweeps periodically; reads also filter on created_at.
	_, err = indexes.CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: 1}},
		Options: options.Index().SetName(shareTTLIndex).SetExpireAfterSeconds(want),
	})
	if err != nil {
		return storageError("creating share TTL index", err)
	}
	return nil
}

// ttlSeconds converts a TTL to whole seconds, rounding up so that a positive
// TTL never becomes an immediate expiry.
func ttlSeconds(ttl time.Duration) int32 {
	if ttl <= 0 {
		return 0
	}
	secs := (ttl + time.Second - 1) / time.Second
	if secs > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(secs)
}

func (ms *MongoStore) Create(ctx context.Context, projectID string, ciphertext []byte) (string, error) {
	if err := requireArgs("create", projectID); err != nil {
		return "", err
	}

	accessKey := NewAccessKey()
	_, err := ms.secrets.InsertOne(ctx, secretDocument{
		ProjectID:        projectID,
		EncryptedContent: base64.StdEncoding.EncodeToString(ciphertext),
		AccessKey:        accessKey,
	})
	if mongo.IsDuplicateKeyError(err) {
		return "", kerrors.ErrConflict
	}
	if err != nil {
		return "", storageError("create", err)
	}
	return accessKey, nil
}

func (ms *MongoStore) Read(ctx context.Context, accessKey string) ([]byte, error) {
	if err := requireArgs("read", accessKey); err != nil {
		return nil, err
	}

	var doc secretDocument
	err := ms.secrets.FindOne(ctx, bson.M{"access_key": accessKey}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, kerrors.ErrNotFound
	}
	if err != nil {
		return nil, storageError("read", err)
	}
	return decodeContent(doc.EncryptedContent)
}

func (ms *MongoStore) Update(ctx context.Context, accessKey string, ciphertext []byte) error {
	if err := requireArgs("update", accessKey); err != nil {
		return err
	}

	res, err := ms.secrets.UpdateOne(ctx,
		bson.M{"access_key": accessKey},
		bson.M{"$set": bson.M{"encrypted_content": base64.StdEncoding.EncodeToString(ciphertext)}},
	)
	if err != nil {
		return storageError("update", err)
	}
	if res.MatchedCount == 0 {
		return kerrors.ErrNotFound
	}
	return nil
}

func (ms *MongoStore) Delete(ctx context.Context, accessKey string) error {
	if err := requireArgs("delete", accessKey); err != nil {
		return err
	}

	res, err := ms.secrets.DeleteOne(ctx, bson.M{"access_key": accessKey})
	if err != nil {
		return storageError("delete", err)
	}
	if res.DeletedCount == 0 {
		return kerrors.ErrNotFound
	}
	return nil
}

func (ms *MongoStore) Publish(ctx context.Context, projectID, shareCode string, ciphertext []byte) error {
	if err := requireArgs("publish", projectID, shareCode); err != nil {
		return err
	}

	now := ms.now().UTC()
	if ms.shareTTL > 0 {
		_, err := ms.shares.DeleteMany(ctx, bson.M{
			"project_id": projectID,
			"created_at": bson.M{"$lte": now.Add(-ms.shareTTL)},
		})
		if err != nil {
			return storageError("purging expired shares", err)
		}
	}

	_, err := ms.shares.InsertOne(ctx, shareDocument{
		ProjectID:        projectID,
		ShareCode:        shareCode,
		EncryptedContent: base64.StdEncoding.EncodeToString(ciphertext),
		CreatedAt:        now,
	})
	if mongo.IsDuplicateKeyError(err) {
		return kerrors.ErrConflict
	}
	if err != nil {
		return storageError("publish", err)
	}
	return nil
}

func (ms *MongoStore) Consume(ctx context.Context, projectID, shareCode string) ([]byte, error) {
	if err := requireArgs("consume", projectID, shareCode); err != nil {
		return nil, err
	}

	filter := bson.M{"project_id": projectID, "share_code": shareCode}
	if ms.shareTTL > 0 {
		filter["created_at"] = bson.M{"$gt": ms.now().UTC().Add(-ms.shareTTL)}
	}

	var doc shareDocument
	err := ms.shares.FindOneAndDelete(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, kerrors.ErrNotFound
	}
	if err != nil {
		return nil, storageError("consume", err)
	}
	return decodeContent(doc.EncryptedContent)
}

func (ms *MongoStore) Ping(ctx context.Context) error {
	if err := ms.client.Ping(ctx, readpref.Primary()); err != nil {
		return storageError("ping", err)
	}
	return nil
}

func (ms *MongoStore) Close(ctx context.Context) error {
	return ms.client.Disconnect(ctx)
}

func (ms *MongoStore) Type() Type { return TypeMongo }

func decodeContent(encoded string) ([]byte, error) {
	content, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("stored content is not valid base64: %w", err)
	}
	return content, nil
}
