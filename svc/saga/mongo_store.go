package saga

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	pkgmongo "github.com/edutrack/institute/pkg/mongo"
)

const Collection = "registration_intents"

const maxErrorLen = 512

type MongoStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ Store = (*MongoStore)(nil)

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(Collection), now: time.Now}
}

func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	return pkgmongo.EnsureIndexes(ctx, s.coll,
		mongo.IndexModel{Keys: bson.D{{Key: "state", Value: 1}, {Key: "updatedAt", Value: 1}}},
	)
}

func (s *MongoStore) Begin(ctx context.Context, email string, userID bson.ObjectID) (*Intent, error) {
	now := s.now().UTC()
	in := &Intent{
		ID:        bson.NewObjectID(),
		UserID:    userID,
		Email:     email,
		State:     StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.coll.InsertOne(ctx, in); err != nil {
		return nil, pkgmongo.Err(err)
	}
	return in, nil
}

func (s *MongoStore) Complete(ctx context.Context, id bson.ObjectID) error {
	return s.updatePending(ctx, id, bson.M{"$set": bson.M{"state": StateCompleted}})
}

func (s *MongoStore) MarkCompensated(ctx context.Context, id bson.ObjectID) error {
	return s.updatePending(ctx, id, bson.M{"$set": bson.M{"state": StateCompensated}})
}

func (s *MongoStore) RecordFailure(ctx context.Context, id bson.ObjectID, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	if len(msg) > maxErrorLen {
		msg = msg[:maxErrorLen]
	}
	return s.updatePending(ctx, id, bson.M{
		"$inc": bson.M{"attempts": 1},
		"$set": bson.M{"lastError": msg},
	})
}

func (s *MongoStore) Stale(ctx context.Context, cutoff time.Time, limit int) ([]Intent, error) {
	cur, err := s.coll.Find(ctx,
		bson.M{"state": StatePending, "updatedAt": bson.M{"$lt": cutoff.UTC()}},
		options.Find().SetSort(bson.D{{Key: "updatedAt", Value: 1}}).SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, pkgmongo.Err(err)
	}
	var out []Intent
	if err := cur.All(ctx, &out); err != nil {
		return nil, pkgmongo.Err(err)
	}
	return out, nil
}

func (s *MongoStore) updatePending(ctx context.Context, id bson.ObjectID, update bson.M) error {
	set, _ := update["$set"].(bson.M)
	if set == nil {
		set = bson.M{}
		update["$set"] = set
	}
	set["updatedAt"] = s.now().UTC()

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id, "state": StatePending}, update)
	if err != nil {
		return pkgmongo.Err(err)
	}
	if res.MatchedCount == 0 {
		return errors.Join(ErrNotPending, pkgmongo.ErrNotFound)
	}
	return nil
}
