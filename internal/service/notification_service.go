package service

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/cse-hub/crs-api/internal/models"
	appErrors "github.com/cse-hub/crs-api/pkg/errors"
)

// Notifier is the post-mutation notification hook. Implementations are
// invoked only after the mutation succeeded; a notification failure never
// rolls anything back.
type Notifier interface {
	NotifyNewRequest(ctx context.Context, request *models.Request) error
	NotifyNewResponse(ctx context.Context, request *models.Request) error
}

type classMemberLister interface {
	ListClassMembers(ctx context.Context, class models.Class, role models.Role) ([]models.User, error)
	GetUser(ctx context.Context, email string) (*models.User, error)
}

// NotificationService resolves the audience for request events and emits a
// structured delivery record per event. Actual mail transport is a
// deployment concern behind this type.
type NotificationService struct {
	users   classMemberLister
	baseURL string
	logger  *zap.Logger
}

// NewNotificationService constructs NotificationService.
func NewNotificationService(users classMemberLister, baseURL string, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{users: users, baseURL: baseURL, logger: logger}
}

// NotifyNewRequest notifies the responsible instructors, copying the
// requester.
func (s *NotificationService) NotifyNewRequest(ctx context.Context, request *models.Request) error {
	instructors, err := s.users.ListClassMembers(ctx, request.Class, models.RoleInstructor)
	if err != nil {
		return err
	}
	student, err := s.users.GetUser(ctx, request.From)
	if err != nil {
		return err
	}

	s.logger.Info("notification dispatched",
		zap.String("event", "new_request"),
		zap.String("request_id", request.ID),
		zap.Strings("to", emails(instructors)),
		zap.Strings("cc", []string{student.Email}),
		zap.String("request_link", s.link("/request/", request.ID)),
		zap.String("response_link", s.link("/response/", request.ID)),
	)
	return nil
}

// NotifyNewResponse notifies the requester, copying the class staff. The
// request must carry its response already.
func (s *NotificationService) NotifyNewResponse(ctx context.Context, request *models.Request) error {
	if !request.Resolved() {
		return appErrors.Clone(appErrors.ErrResponseNotFound,
			fmt.Sprintf("request %s does not have a response yet", request.ID))
	}

	instructors, err := s.users.ListClassMembers(ctx, request.Class, models.RoleInstructor)
	if err != nil {
		return err
	}
	tas, err := s.users.ListClassMembers(ctx, request.Class, models.RoleTA)
	if err != nil {
		return err
	}
	student, err := s.users.GetUser(ctx, request.From)
	if err != nil {
		return err
	}

	s.logger.Info("notification dispatched",
		zap.String("event", "new_response"),
		zap.String("request_id", request.ID),
		zap.Strings("to", []string{student.Email}),
		zap.Strings("cc", append(emails(instructors), emails(tas)...)),
		zap.String("decision", string(request.Response.Decision)),
		zap.String("response_link", s.link("/response/", request.ID)),
	)
	return nil
}

func (s *NotificationService) link(prefix, id string) string {
	u, err := url.JoinPath(s.baseURL, prefix, id)
	if err != nil {
		return s.baseURL
	}
	return u
}

func emails(users []models.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.Email
	}
	return out
}
