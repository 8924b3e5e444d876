package database

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/devcode-backend/internal/apperr"
	"github.com/AnshRaj112/devcode-backend/internal/models"
)

// UsersCollection is the collection holding User documents.
const UsersCollection = "users"

// MongoUserStore is the production UserStore.
type MongoUserStore struct {
	col *mongo.Collection
	now func() time.Time
}

// NewMongoUserStore returns a store backed by the users collection of db.
func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{
		col: db.Collection(UsersCollection),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// EnsureUserIndexes configures indexes for the users collection.
// Called on startup and by the migrate command.
func EnsureUserIndexes(ctx context.Context, db *mongo.Database) error {
	col := db.Collection(UsersCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
	}

	for _, m := range indexes {
		if _, err := col.Indexes().CreateOne(ctx, m); err != nil {
			return apperr.Storage("ensure_user_indexes", err)
		}
	}
	return nil
}

func (s *MongoUserStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	u := prepareNew(user, s.now())
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}

	if _, err := s.col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.New(apperr.CodeConflict, "User already exists !")
		}
		return nil, apperr.Storage("create_user", err)
	}
	return u, nil
}

func (s *MongoUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.New(apperr.CodeNotFound, "User does not exist !")
	}
	return s.findOne(ctx, bson.M{"_id": oid}, "get_user_by_id")
}

func (s *MongoUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email}, "get_user_by_email")
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M, operation string) (*models.User, error) {
	var u models.User
	if err := s.col.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.New(apperr.CodeNotFound, "User does not exist !")
		}
		return nil, apperr.Storage(operation, err)
	}
	return &u, nil
}

func (s *MongoUserStore) Update(ctx context.Context, id string, mutate func(u *models.User) error) (*models.User, error) {
	var result *models.User

	err := retry.Do(ctx, updateBackoff(), func(ctx context.Context) error {
		current, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}

		next := current.Clone()
		if err := mutate(next); err != nil {
			return err
		}
		next.Version = current.Version + 1
		next.UpdatedAt = s.now()

		filter := bson.M{"_id": current.ID, "version": current.Version}
		if current.Version == 0 {
			// documents written before versioning carry no field
			filter["version"] = bson.M{"$in": bson.A{0, nil}}
		}

		res, err := s.col.ReplaceOne(ctx, filter, next)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return apperr.New(apperr.CodeConflict, "User already exists !")
			}
			return apperr.Storage("update_user", err)
		}
		if res.MatchedCount == 0 {
			return retry.RetryableError(errVersionConflict)
		}

		result = next
		return nil
	})
	if err != nil {
		if errors.Is(err, errVersionConflict) {
			return nil, apperr.Storage("update_user", err)
		}
		return nil, err
	}
	return result, nil
}

func (s *MongoUserStore) Ping(ctx context.Context) error {
	if err := s.col.Database().Client().Ping(ctx, nil); err != nil {
		return apperr.Storage("ping", err)
	}
	return nil
}
