package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cse-hub/crs-api/internal/models"
	"github.com/cse-hub/crs-api/internal/permission"
	appErrors "github.com/cse-hub/crs-api/pkg/errors"
)

type requestRepository interface {
	NewID() string
	Insert(ctx context.Context, request *models.Request) error
	FindByID(ctx context.Context, id string) (*models.Request, error)
	FindByRequester(ctx context.Context, email string) ([]models.Request, error)
	FindByClasses(ctx context.Context, classes []models.Class) ([]models.Request, error)
	AttachResponse(ctx context.Context, id string, response *models.Response) (bool, error)
}

// CreateRequestInput is the payload for a new request.
type CreateRequestInput struct {
	Class    models.Class           `json:"class" validate:"required"`
	Type     models.RequestType     `json:"type" validate:"required"`
	Metadata map[string]interface{} `json:"metadata"`
	Details  models.RequestDetails  `json:"details" validate:"required"`
}

// CreateResponseInput is the payload for attaching a response.
type CreateResponseInput struct {
	Decision models.Decision `json:"decision" validate:"required"`
	Remarks  string          `json:"remarks"`
}

// RequestService owns the request lifecycle: student-gated creation,
// requester-or-staff reads, role-scoped listings, and the single open to
// resolved transition.
type RequestService struct {
	resolver
	repo      requestRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewRequestService constructs RequestService.
func NewRequestService(repo requestRepository, users userReader, courses courseReader, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		resolver:  resolver{users: users, courses: courses, requests: repo},
		repo:      repo,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateRequest persists a new open request on behalf of the student and
// returns its id. The requester must hold student standing in the exact
// class, and the class must resolve to a real course section.
func (s *RequestService) CreateRequest(ctx context.Context, from string, input CreateRequestInput) (string, error) {
	if err := s.validateRequestInput(input); err != nil {
		return "", err
	}

	user, err := s.requireUser(ctx, from)
	if err != nil {
		return "", err
	}
	if err := permission.AssertClassRole(user, input.Class, []models.Role{models.RoleStudent}, "create request"); err != nil {
		return "", err
	}

	course, err := s.requireCourse(ctx, input.Class.Course)
	if err != nil {
		return "", err
	}
	if !course.HasSection(input.Class.Section) {
		return "", appErrors.Clone(appErrors.ErrSectionNotFound,
			fmt.Sprintf("section %s not found in course %s", input.Class.Section, input.Class.Course))
	}

	request := &models.Request{
		ID:        s.repo.NewID(),
		From:      from,
		Class:     input.Class,
		Type:      input.Type,
		Metadata:  input.Metadata,
		Details:   input.Details,
		Timestamp: s.now().UTC(),
		Response:  nil,
	}
	if err := s.repo.Insert(ctx, request); err != nil {
		return "", err
	}

	s.logger.Info("request created",
		zap.String("request_id", request.ID),
		zap.String("from", from),
		zap.String("class", input.Class.String()),
		zap.String("type", string(input.Type)),
	)
	return request.ID, nil
}

// GetRequest returns the request, visible to its requester and to
// instructors or TAs of its class.
func (s *RequestService) GetRequest(ctx context.Context, viewer, id string) (*models.Request, error) {
	user, err := s.requireUser(ctx, viewer)
	if err != nil {
		return nil, err
	}
	request, err := s.requireRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.From != viewer {
		err := permission.AssertClassRole(user, request.Class,
			[]models.Role{models.RoleInstructor, models.RoleTA},
			fmt.Sprintf("view request %s", id))
		if err != nil {
			return nil, err
		}
	}
	return request, nil
}

// GetRequestsAs lists requests visible to the viewer acting in the given
// role. As a student this is the viewer's own requests; as instructor or TA
// it is every request targeting a class the viewer holds that exact role in.
// A viewer with no enrollment of the role gets an empty list without a
// store round trip.
func (s *RequestService) GetRequestsAs(ctx context.Context, viewer string, role models.Role) ([]models.Request, error) {
	user, err := s.requireUser(ctx, viewer)
	if err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown role %q", role))
	}

	if role == models.RoleStudent {
		requests, err := s.repo.FindByRequester(ctx, viewer)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
		}
		return requests, nil
	}

	classes := user.ClassesWithRole(role)
	if len(classes) == 0 {
		return []models.Request{}, nil
	}
	requests, err := s.repo.FindByClasses(ctx, classes)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return requests, nil
}

// CreateResponse attaches the response to an open request in a single
// conditional write. Under concurrent attempts on the same request exactly
// one succeeds; the rest observe the resolved state and fail with the
// conflict error, leaving the first response untouched.
func (s *RequestService) CreateResponse(ctx context.Context, responder, requestID string, input CreateResponseInput) error {
	if !input.Decision.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown decision %q", input.Decision))
	}

	user, err := s.requireUser(ctx, responder)
	if err != nil {
		return err
	}
	request, err := s.requireRequest(ctx, requestID)
	if err != nil {
		return err
	}
	err = permission.AssertClassRole(user, request.Class,
		[]models.Role{models.RoleInstructor},
		fmt.Sprintf("create response for request %s", requestID))
	if err != nil {
		return err
	}
	if request.Resolved() {
		return appErrors.Clone(appErrors.ErrResponseExists, fmt.Sprintf("request %s already has a response", requestID))
	}

	response := &models.Response{
		From:      responder,
		Timestamp: s.now().UTC(),
		Decision:  input.Decision,
		Remarks:   input.Remarks,
	}
	matched, err := s.repo.AttachResponse(ctx, requestID, response)
	if err != nil {
		return err
	}
	if !matched {
		// lost the race or the request vanished; re-fetch to tell apart
		current, err := s.requireRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if current.Resolved() {
			return appErrors.Clone(appErrors.ErrResponseExists, fmt.Sprintf("request %s already has a response", requestID))
		}
		return appErrors.Clone(appErrors.ErrWriteNotAcknowledged, fmt.Sprintf("failed to attach response to request %s", requestID))
	}

	s.logger.Info("response attached",
		zap.String("request_id", requestID),
		zap.String("from", responder),
		zap.String("decision", string(input.Decision)),
	)
	return nil
}

func (s *RequestService) validateRequestInput(input CreateRequestInput) error {
	if err := s.validator.Struct(input); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}
	if !input.Type.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown request type %q", input.Type))
	}
	if input.Details.Reason == "" {
		return appErrors.Clone(appErrors.ErrValidation, "a brief explanation for the request is required")
	}
	if len(input.Details.Proof) > models.MaxProofFiles {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d supporting documents are allowed", models.MaxProofFiles))
	}
	for _, proof := range input.Details.Proof {
		if proof.Size > models.MaxProofFileSize {
			return appErrors.Clone(appErrors.ErrValidation, "at most 2 MiB per file is allowed")
		}
	}
	return nil
}
