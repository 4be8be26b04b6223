package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cse-hub/crs-api/internal/models"
	appErrors "github.com/cse-hub/crs-api/pkg/errors"
)

type userReader interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id models.CourseID) (*models.Course, error)
}

type requestReader interface {
	FindByID(ctx context.Context, id string) (*models.Request, error)
}

// resolver loads entities by key and converts a missing document into the
// typed not-found failure for that entity kind. No policy, read-only.
type resolver struct {
	users    userReader
	courses  courseReader
	requests requestReader
}

func (r resolver) requireUser(ctx context.Context, email string) (*models.User, error) {
	user, err := r.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.Clone(appErrors.ErrUserNotFound, fmt.Sprintf("user %s not found", email))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

func (r resolver) requireCourse(ctx context.Context, id models.CourseID) (*models.Course, error) {
	course, err := r.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.Clone(appErrors.ErrCourseNotFound, fmt.Sprintf("course %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

func (r resolver) requireRequest(ctx context.Context, id string) (*models.Request, error) {
	request, err := r.requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.Clone(appErrors.ErrRequestNotFound, fmt.Sprintf("request %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	return request, nil
}
