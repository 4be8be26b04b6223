package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cse-hub/crs-api/internal/models"
	appErrors "github.com/cse-hub/crs-api/pkg/errors"
)

// RequestRepository handles persistence of request documents.
type RequestRepository struct {
	store
	collection *mongo.Collection
}

// NewRequestRepository constructs the repository. queryTimeout bounds each
// operation when positive; observer may be nil.
func NewRequestRepository(db *mongo.Database, queryTimeout time.Duration, observer StoreObserver) *RequestRepository {
	return &RequestRepository{
		store:      store{timeout: queryTimeout, observer: observer},
		collection: db.Collection("requests"),
	}
}

// NewID generates a fresh request identifier.
func (r *RequestRepository) NewID() string {
	return uuid.NewString()
}

// Insert persists a new request document.
func (r *RequestRepository) Insert(ctx context.Context, request *models.Request) error {
	ctx, cancel := r.opContext(ctx)
	defer cancel()
	defer r.observe("requests.insert", time.Now())

	if _, err := r.collection.InsertOne(ctx, request); err != nil {
		return appErrors.Wrap(err, appErrors.ErrWriteNotAcknowledged.Code, appErrors.ErrWriteNotAcknowledged.Status, "insert request")
	}
	return nil
}

// FindByID returns the request with the given id.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*models.Request, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()
	defer r.observe("requests.findByID", time.Now())

	var request models.Request
	if err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&request); err != nil {
		return nil, err
	}
	return &request, nil
}

// FindByRequester returns all requests created by the user.
func (r *RequestRepository) FindByRequester(ctx context.Context, email string) ([]models.Request, error) {
	defer r.observe("requests.findByRequester", time.Now())
	return r.findAll(ctx, bson.M{"from": email})
}

// FindByClasses returns all requests targeting any of the given classes.
// Callers must not pass an empty slice; an empty disjunction is rejected by
// the store, and an empty class set means an empty result anyway.
func (r *RequestRepository) FindByClasses(ctx context.Context, classes []models.Class) ([]models.Request, error) {
	defer r.observe("requests.findByClasses", time.Now())
	arms := make([]bson.M, len(classes))
	for i, class := range classes {
		arms[i] = bson.M{
			"class.course.code": class.Course.Code,
			"class.course.term": class.Course.Term,
			"class.section":     class.Section,
		}
	}
	return r.findAll(ctx, bson.M{"$or": arms})
}

// AttachResponse sets the response field if and only if it is still absent,
// in a single conditional update. It returns false when no open request
// matched, which the caller resolves to either not-found or already-resolved.
func (r *RequestRepository) AttachResponse(ctx context.Context, id string, response *models.Response) (bool, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()
	defer r.observe("requests.attachResponse", time.Now())

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"id": id, "response": nil},
		bson.M{"$set": bson.M{"response": response}},
	)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrWriteNotAcknowledged.Code, appErrors.ErrWriteNotAcknowledged.Status, "attach response to request "+id)
	}
	return res.MatchedCount > 0, nil
}

func (r *RequestRepository) findAll(ctx context.Context, filter bson.M) ([]models.Request, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var requests []models.Request
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}
