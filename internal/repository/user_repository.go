package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cse-hub/crs-api/internal/models"
	appErrors "github.com/cse-hub/crs-api/pkg/errors"
)

// UserRepository handles persistence of user documents.
type UserRepository struct {
	store
	collection *mongo.Collection
}

// NewUserRepository constructs the repository. queryTimeout bounds each
// operation when positive; observer may be nil.
func NewUserRepository(db *mongo.Database, queryTimeout time.Duration, observer StoreObserver) *UserRepository {
	return &UserRepository{
		store:      store{timeout: queryTimeout, observer: observer},
		collection: db.Collection("users"),
	}
}

// FindByEmail returns the user keyed by email. mongo.ErrNoDocuments is
// passed through for the caller to translate.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()
	defer r.observe("users.findByEmail", time.Now())

	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateName replaces the user's display name.
func (r *UserRepository) UpdateName(ctx context.Context, email, name string) error {
	ctx, cancel := r.opContext(ctx)
	defer cancel()
	defer r.observe("users.updateName", time.Now())

	res, err := r.collection.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"name": name}})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrWriteNotAcknowledged.Code, appErrors.ErrWriteNotAcknowledged.Status, "update user name")
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// FindByClassRole returns all users holding the role in the exact
// (course, section) pair.
func (r *UserRepository) FindByClassRole(ctx context.Context, class models.Class, role models.Role) ([]models.User, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()
	defer r.observe("users.findByClassRole", time.Now())

	filter := bson.M{
		"enrollment": bson.M{
			"$elemMatch": bson.M{
				"course.code": class.Course.Code,
				"course.term": class.Course.Term,
				"section":     class.Section,
				"role":        role,
			},
		},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
