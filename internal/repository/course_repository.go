package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cse-hub/crs-api/internal/models"
	appErrors "github.com/cse-hub/crs-api/pkg/errors"
)

// CourseRepository handles persistence of course documents.
type CourseRepository struct {
	store
	collection *mongo.Collection
}

// NewCourseRepository constructs the repository. queryTimeout bounds each
// operation when positive; observer may be nil.
func NewCourseRepository(db *mongo.Database, queryTimeout time.Duration, observer StoreObserver) *CourseRepository {
	return &CourseRepository{
		store:      store{timeout: queryTimeout, observer: observer},
		collection: db.Collection("courses"),
	}
}

func courseFilter(id models.CourseID) bson.M {
	// filter on the two key fields only, in case the caller carries extras
	return bson.M{"code": id.Code, "term": id.Term}
}

// FindByID returns the course keyed by (code, term).
func (r *CourseRepository) FindByID(ctx context.Context, id models.CourseID) (*models.Course, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()
	defer r.observe("courses.findByID", time.Now())

	var course models.Course
	if err := r.collection.FindOne(ctx, courseFilter(id)).Decode(&course); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByIDs returns the courses matching any of the given keys. Callers must
// not pass an empty slice; the disjunctive filter requires at least one arm.
func (r *CourseRepository) FindByIDs(ctx context.Context, ids []models.CourseID) ([]models.Course, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()
	defer r.observe("courses.findByIDs", time.Now())

	arms := make([]bson.M, len(ids))
	for i, id := range ids {
		arms[i] = courseFilter(id)
	}
	cursor, err := r.collection.Find(ctx, bson.M{"$or": arms})
	if err != nil {
		return nil, err
	}
	var courses []models.Course
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// ReplaceSections replaces the full sections map of the course.
func (r *CourseRepository) ReplaceSections(ctx context.Context, id models.CourseID, sections map[string]models.Section) error {
	defer r.observe("courses.replaceSections", time.Now())
	return r.replaceField(ctx, id, "sections", sections)
}

// ReplaceEffectiveRequestTypes replaces the full request-type toggle map.
func (r *CourseRepository) ReplaceEffectiveRequestTypes(ctx context.Context, id models.CourseID, types map[string]bool) error {
	defer r.observe("courses.replaceEffectiveRequestTypes", time.Now())
	return r.replaceField(ctx, id, "effectiveRequestTypes", types)
}

func (r *CourseRepository) replaceField(ctx context.Context, id models.CourseID, field string, value interface{}) error {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, courseFilter(id), bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrWriteNotAcknowledged.Code, appErrors.ErrWriteNotAcknowledged.Status, "update course "+id.String())
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
