package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/cse-hub/crs-api/internal/models"
	"github.com/cse-hub/crs-api/internal/permission"
	appErrors "github.com/cse-hub/crs-api/pkg/errors"
)

type courseRepository interface {
	FindByIDs(ctx context.Context, ids []models.CourseID) ([]models.Course, error)
	ReplaceSections(ctx context.Context, id models.CourseID, sections map[string]models.Section) error
	ReplaceEffectiveRequestTypes(ctx context.Context, id models.CourseID, types map[string]bool) error
}

type courseInvalidator interface {
	Invalidate(ctx context.Context, id models.CourseID)
}

// CourseService exposes reads and instructor-gated mutations on courses.
type CourseService struct {
	resolver
	repo       courseRepository
	invalidate courseInvalidator
	logger     *zap.Logger
}

// NewCourseService constructs CourseService. reader is consulted for point
// lookups and may be a cache in front of repo; invalidate may be nil.
func NewCourseService(repo courseRepository, reader courseReader, users userReader, invalidate courseInvalidator, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		resolver:   resolver{users: users, courses: reader},
		repo:       repo,
		invalidate: invalidate,
		logger:     logger,
	}
}

// GetCourse returns the course, visible to anyone enrolled in it in any role.
func (s *CourseService) GetCourse(ctx context.Context, viewer string, id models.CourseID) (*models.Course, error) {
	user, err := s.requireUser(ctx, viewer)
	if err != nil {
		return nil, err
	}
	if err := permission.AssertInCourse(user, id, "accessing course information"); err != nil {
		return nil, err
	}
	return s.requireCourse(ctx, id)
}

// GetCoursesFromEnrollment returns every course referenced by the viewer's
// enrollment, deduplicated by course key. An empty enrollment yields an
// empty list without touching the course collection.
func (s *CourseService) GetCoursesFromEnrollment(ctx context.Context, viewer string) ([]models.Course, error) {
	user, err := s.requireUser(ctx, viewer)
	if err != nil {
		return nil, err
	}
	ids := user.CourseIDs()
	if len(ids) == 0 {
		return []models.Course{}, nil
	}
	courses, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// UpdateSections replaces the full sections map, instructor-only.
func (s *CourseService) UpdateSections(ctx context.Context, actor string, id models.CourseID, sections map[string]models.Section) error {
	user, err := s.requireUser(ctx, actor)
	if err != nil {
		return err
	}
	if err := permission.AssertCourseInstructor(user, id, "updating course sections"); err != nil {
		return err
	}
	if err := s.repo.ReplaceSections(ctx, id, sections); err != nil {
		return s.translateWrite(err, id)
	}
	s.afterCourseWrite(ctx, id)
	return nil
}

// SetEffectiveRequestTypes replaces the request-type toggle map, instructor-only.
func (s *CourseService) SetEffectiveRequestTypes(ctx context.Context, actor string, id models.CourseID, types map[string]bool) error {
	user, err := s.requireUser(ctx, actor)
	if err != nil {
		return err
	}
	if err := permission.AssertCourseInstructor(user, id, "updating effective request types"); err != nil {
		return err
	}
	if err := s.repo.ReplaceEffectiveRequestTypes(ctx, id, types); err != nil {
		return s.translateWrite(err, id)
	}
	s.afterCourseWrite(ctx, id)
	return nil
}

func (s *CourseService) translateWrite(err error, id models.CourseID) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return appErrors.Clone(appErrors.ErrCourseNotFound, fmt.Sprintf("course %s not found", id))
	}
	return err
}

func (s *CourseService) afterCourseWrite(ctx context.Context, id models.CourseID) {
	if s.invalidate != nil {
		s.invalidate.Invalidate(ctx, id)
	}
}
