package credential

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	pkgmongo "github.com/edutrack/institute/pkg/mongo"
)

const Collection = "users"

// MongoStore implements Store on the users collection.
type MongoStore struct {
	coll   *mongo.Collection
	hasher Hasher
	now    func() time.Time
}

var _ Store = (*MongoStore)(nil)

func NewMongoStore(db *mongo.Database, hasher Hasher) *MongoStore {
	return &MongoStore{coll: db.Collection(Collection), hasher: hasher, now: time.Now}
}

// EnsureIndexes creates unique(email), unique sparse(phone) and the
// (status, updatedAt) listing index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	return pkgmongo.EnsureIndexes(ctx, s.coll,
		mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		mongo.IndexModel{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}, {Key: "updatedAt", Value: -1}}},
	)
}

func (s *MongoStore) Create(ctx context.Context, u *User, password string) error {
	now := s.now().UTC()
	if _, err := ApplyPassword(u, password, s.hasher, now); err != nil {
		return err
	}
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Status == "" {
		u.Status = StatusActive
	}
	if u.RefreshTokens == nil {
		u.RefreshTokens = []string{}
	}

	_, err := s.coll.InsertOne(ctx, u)
	var dup *pkgmongo.DuplicateKeyError
	if errors.As(pkgmongo.Err(err), &dup) && dup.Has("email") && s.purgeDeleted(ctx, u.Email) {
		_, err = s.coll.InsertOne(ctx, u)
	}
	return pkgmongo.Err(err)
}

// purgeDeleted removes a soft-deleted record holding email so a rolled-back
// registration does not reserve the address forever.
func (s *MongoStore) purgeDeleted(ctx context.Context, email string) bool {
	res, err := s.coll.DeleteOne(ctx, bson.M{"email": email, "status": StatusDeleted})
	return err == nil && res.DeletedCount > 0
}

func (s *MongoStore) ByID(ctx context.Context, id string) (*User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) ByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, bson.M{"email": email, "status": bson.M{"$ne": StatusDeleted}})
}

func (s *MongoStore) ByRefreshToken(ctx context.Context, token string) (*User, error) {
	return s.findOne(ctx, bson.M{"refreshToken": token, "status": bson.M{"$ne": StatusDeleted}})
}

func (s *MongoStore) IncrementFailedLogins(ctx context.Context, id string) (int, error) {
	oid, err := objectID(id)
	if err != nil {
		return 0, err
	}
	var u User
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"failedLoginAttempts": 1}, "$set": bson.M{"updatedAt": s.now().UTC()}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"failedLoginAttempts": 1}),
	).Decode(&u)
	if err != nil {
		return 0, pkgmongo.Err(err)
	}
	return u.FailedLoginAttempts, nil
}

func (s *MongoStore) SetLockout(ctx context.Context, id string, until time.Time) error {
	return s.updateByID(ctx, id, bson.M{"$set": bson.M{"lockoutUntil": until.UTC()}})
}

func (s *MongoStore) RecordLogin(ctx context.Context, id string, at time.Time) error {
	return s.updateByID(ctx, id, bson.M{"$set": bson.M{
		"failedLoginAttempts": 0,
		"lockoutUntil":        nil,
		"lastLoginAt":         at.UTC(),
	}})
}

func (s *MongoStore) SaveSessions(ctx context.Context, id string, tokens []string) error {
	if tokens == nil {
		tokens = []string{}
	}
	return s.updateByID(ctx, id, bson.M{"$set": bson.M{"refreshToken": tokens}})
}

func (s *MongoStore) RemoveSession(ctx context.Context, id, token string) error {
	return s.updateByID(ctx, id, bson.M{"$pull": bson.M{"refreshToken": token}})
}

func (s *MongoStore) MarkEmailVerified(ctx context.Context, id string, at time.Time) error {
	return s.updateByID(ctx, id, bson.M{"$set": bson.M{
		"isVerified":      true,
		"emailVerifiedAt": at.UTC(),
	}})
}

// UpdatePassword also tags the account with the EMAIL provider, so an
// OAuth-only account that completes a reset can log in with the password.
func (s *MongoStore) UpdatePassword(ctx context.Context, id, password string, at time.Time) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	return s.updateByID(ctx, id, bson.M{
		"$set":      bson.M{"password": hash, "passwordChangedAt": at.UTC()},
		"$addToSet": bson.M{"provider": ProviderEmail},
	})
}

func (s *MongoStore) RevokePassword(ctx context.Context, id string, at time.Time) error {
	return s.updateByID(ctx, id, bson.M{
		"$set":   bson.M{"refreshToken": []string{}, "passwordChangedAt": at.UTC()},
		"$unset": bson.M{"password": ""},
		"$pull":  bson.M{"provider": ProviderEmail},
	})
}

func (s *MongoStore) AddProvider(ctx context.Context, id string, p Provider) error {
	return s.updateByID(ctx, id, bson.M{"$addToSet": bson.M{"provider": p}})
}

func (s *MongoStore) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	set := bson.M{"updatedAt": s.now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.Avatar != nil {
		set["avatar"] = *upd.Avatar
	}

	var u User
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return nil, pkgmongo.Err(err)
	}
	return &u, nil
}

func (s *MongoStore) SoftDelete(ctx context.Context, id string, at time.Time) error {
	return s.updateByID(ctx, id, bson.M{"$set": bson.M{
		"status":       StatusDeleted,
		"deletedAt":    at.UTC(),
		"refreshToken": []string{},
	}})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var u User
	if err := s.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, pkgmongo.Err(err)
	}
	return &u, nil
}

// updateByID stamps updatedAt and reports ErrNotFound when nothing matched.
func (s *MongoStore) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	set, _ := update["$set"].(bson.M)
	if set == nil {
		set = bson.M{}
		update["$set"] = set
	}
	set["updatedAt"] = s.now().UTC()

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return pkgmongo.Err(err)
	}
	if res.MatchedCount == 0 {
		return pkgmongo.Err(mongo.ErrNoDocuments)
	}
	return nil
}

func objectID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.NilObjectID, errors.Join(ErrInvalidID, pkgmongo.ErrNotFound)
	}
	return oid, nil
}
