package otp

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	pkgmongo "github.com/edutrack/institute/pkg/mongo"
)

const Collection = "otps"

var ErrInvalidUserID = errors.New("otp: invalid user id")

type MongoLedger struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ Ledger = (*MongoLedger)(nil)

func NewMongoLedger(db *mongo.Database) *MongoLedger {
	return &MongoLedger{coll: db.Collection(Collection), now: time.Now}
}

// EnsureIndexes creates the TTL index on expiresAt and the latest-lookup
// index.
func (l *MongoLedger) EnsureIndexes(ctx context.Context) error {
	return pkgmongo.EnsureIndexes(ctx, l.coll,
		mongo.IndexModel{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "type", Value: 1}, {Key: "createdAt", Value: -1}}},
	)
}

func (l *MongoLedger) Create(ctx context.Context, c *Code) error {
	if c.ID.IsZero() {
		c.ID = bson.NewObjectID()
	}
	_, err := l.coll.InsertOne(ctx, c)
	return pkgmongo.Err(err)
}

func (l *MongoLedger) Latest(ctx context.Context, userID string, p Purpose) (*Code, error) {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errors.Join(ErrInvalidUserID, pkgmongo.ErrNotFound)
	}
	var c Code
	err = l.coll.FindOne(ctx,
		bson.M{"userId": uid, "type": p, "consumed": false},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}),
	).Decode(&c)
	if err != nil {
		return nil, pkgmongo.Err(err)
	}
	return &c, nil
}

func (l *MongoLedger) Consume(ctx context.Context, id bson.ObjectID) error {
	res, err := l.coll.UpdateOne(ctx,
		bson.M{"_id": id, "consumed": false},
		bson.M{"$set": bson.M{"consumed": true, "updatedAt": l.now().UTC()}},
	)
	if err != nil {
		return pkgmongo.Err(err)
	}
	if res.MatchedCount == 0 {
		return pkgmongo.Err(mongo.ErrNoDocuments)
	}
	return nil
}

func (l *MongoLedger) DeleteForUser(ctx context.Context, userID string) error {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return errors.Join(ErrInvalidUserID, pkgmongo.ErrNotFound)
	}
	_, err = l.coll.DeleteMany(ctx, bson.M{"userId": uid})
	return pkgmongo.Err(err)
}
