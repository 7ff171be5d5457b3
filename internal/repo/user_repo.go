package repo

import (
	"context"
	"time"

	dom "github.com/MeoAhihi/fashion-shop-api/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Fullname     *string
	Email        *string
	PasswordHash *string
}

// UserRepo provides user persistence. Misses surface as mongo.ErrNoDocuments.
type UserRepo interface {
	FindByEmail(ctx context.Context, email string) (dom.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (dom.User, error)
	EmailTaken(ctx context.Context, email string, except primitive.ObjectID) (bool, error)
	List(ctx context.Context) ([]dom.User, error)
	Insert(ctx context.Context, u dom.User) (dom.User, error)
	Update(ctx context.Context, id primitive.ObjectID, patch UserUpdate, updatedAt time.Time) (dom.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MongoUserRepo implements UserRepo on a MongoDB collection.
type MongoUserRepo struct {
	col *mongo.Collection
}

// NewMongoUserRepo returns a new MongoUserRepo.
func NewMongoUserRepo(col *mongo.Collection) *MongoUserRepo {
	return &MongoUserRepo{col: col}
}

// FindByEmail returns the user with the given (already normalized) email.
func (r *MongoUserRepo) FindByEmail(ctx context.Context, email string) (dom.User, error) {
	var u dom.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	return u, err
}

// FindByID returns the user with the given id.
func (r *MongoUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (dom.User, error) {
	var u dom.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	return u, err
}

// EmailTaken reports whether any user other than except holds the email.
// Pass primitive.NilObjectID to check against all users.
func (r *MongoUserRepo) EmailTaken(ctx context.Context, email string, except primitive.ObjectID) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"email": email, "_id": bson.M{"$ne": except}})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns all users, newest first.
func (r *MongoUserRepo) List(ctx context.Context) ([]dom.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var list []dom.User
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Insert stores a new user and returns it with the generated id.
func (r *MongoUserRepo) Insert(ctx context.Context, u dom.User) (dom.User, error) {
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		return dom.User{}, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return u, nil
}

// Update applies the non-nil fields of patch plus updatedAt and returns the
// updated document.
func (r *MongoUserRepo) Update(ctx context.Context, id primitive.ObjectID, patch UserUpdate, updatedAt time.Time) (dom.User, error) {
	set := bson.M{"updatedAt": updatedAt}
	if patch.Fullname != nil {
		set["fullname"] = *patch.Fullname
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.PasswordHash != nil {
		set["passwordHash"] = *patch.PasswordHash
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u dom.User
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u)
	return u, err
}

// Delete permanently removes the user. Returns mongo.ErrNoDocuments if no
// user matched.
func (r *MongoUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
