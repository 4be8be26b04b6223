package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/cse-hub/crs-api/internal/models"
	"github.com/cse-hub/crs-api/internal/permission"
	appErrors "github.com/cse-hub/crs-api/pkg/errors"
)

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateName(ctx context.Context, email, name string) error
	FindByClassRole(ctx context.Context, class models.Class, role models.Role) ([]models.User, error)
}

// UserService exposes the user directory: point reads, the self rename, and
// class membership listings with asymmetric visibility.
type UserService struct {
	resolver
	repo   userRepository
	logger *zap.Logger
}

// NewUserService constructs UserService.
func NewUserService(repo userRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		resolver: resolver{users: repo},
		repo:     repo,
		logger:   logger,
	}
}

// GetUser returns the user keyed by email.
func (s *UserService) GetUser(ctx context.Context, email string) (*models.User, error) {
	return s.requireUser(ctx, email)
}

// UpdateUserName renames the user. No guard at this layer: the transport
// authenticates the acting identity and only permits renaming oneself.
func (s *UserService) UpdateUserName(ctx context.Context, email, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return appErrors.Clone(appErrors.ErrValidation, "name must not be empty")
	}
	if err := s.repo.UpdateName(ctx, email, name); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return appErrors.Clone(appErrors.ErrUserNotFound, fmt.Sprintf("user %s not found", email))
		}
		return err
	}
	return nil
}

// ListClassMembers returns every user enrolled in the class with the role.
// For internal use only: callers must have already authorized the access.
func (s *UserService) ListClassMembers(ctx context.Context, class models.Class, role models.Role) ([]models.User, error) {
	users, err := s.repo.FindByClassRole(ctx, class, role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class members")
	}
	return users, nil
}

// GetUsersFromClass returns class members of the given role, guarded
// asymmetrically: any member of the class may see its staff, but only staff
// may see its students.
func (s *UserService) GetUsersFromClass(ctx context.Context, viewer string, class models.Class, role models.Role) ([]models.User, error) {
	user, err := s.requireUser(ctx, viewer)
	if err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown role %q", role))
	}

	if role == models.RoleStudent {
		err = permission.AssertClassRole(user, class,
			[]models.Role{models.RoleInstructor, models.RoleTA},
			fmt.Sprintf("viewing students in class %s", class))
	} else {
		err = permission.AssertClassRole(user, class,
			[]models.Role{models.RoleStudent, models.RoleInstructor, models.RoleTA},
			fmt.Sprintf("viewing instructors/TAs in class %s", class))
	}
	if err != nil {
		return nil, err
	}

	return s.ListClassMembers(ctx, class, role)
}
