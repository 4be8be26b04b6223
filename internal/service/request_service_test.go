package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cse-hub/crs-api/internal/models"
	appErrors "github.com/cse-hub/crs-api/pkg/errors"
)

func newRequestService(t *testing.T) (*RequestService, *mockRequestRepo) {
	t.Helper()
	repo := newMockRequestRepo()
	svc := NewRequestService(repo, newMockUserRepo(), newMockCourseRepo(), nil, nil)
	return svc, repo
}

func TestCreateRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("student in the class creates an open request", func(t *testing.T) {
		svc, repo := newRequestService(t)
		fixed := time.Date(2024, 9, 30, 12, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return fixed }

		id, err := svc.CreateRequest(ctx, "alice@university.edu", requestInit(classL1))
		require.NoError(t, err)
		require.NotEmpty(t, id)

		stored, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "alice@university.edu", stored.From)
		assert.Equal(t, classL1, stored.Class)
		assert.Equal(t, models.RequestSwapSection, stored.Type)
		assert.Equal(t, fixed, stored.Timestamp)
		assert.Nil(t, stored.Response)
		assert.False(t, stored.Resolved())
	})

	t.Run("student of another section is denied", func(t *testing.T) {
		svc, repo := newRequestService(t)

		// Bob is enrolled in L2, not L1.
		_, err := svc.CreateRequest(ctx, "bob@university.edu", requestInit(classL1))
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrClassPermission))
		assert.Empty(t, repo.requests)
	})

	t.Run("instructor may not create a request", func(t *testing.T) {
		svc, _ := newRequestService(t)

		_, err := svc.CreateRequest(ctx, "ivan@university.edu", requestInit(classL1))
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrClassPermission))
		assert.Contains(t, err.Error(), "the role student")
	})

	t.Run("unknown requester", func(t *testing.T) {
		svc, _ := newRequestService(t)

		_, err := svc.CreateRequest(ctx, "ghost@university.edu", requestInit(classL1))
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrUserNotFound))
		assert.False(t, errors.Is(err, appErrors.ErrClassPermission))
	})

	t.Run("section missing on the course", func(t *testing.T) {
		svc, _ := newRequestService(t)
		repo := newMockUserRepo()
		// Enroll Alice in a section the course document no longer carries.
		u := repo.users["alice@university.edu"]
		u.Enrollment = append(u.Enrollment, models.Enrollment{Course: cs101, Section: "L9", Role: models.RoleStudent})
		repo.users["alice@university.edu"] = u
		svc = NewRequestService(newMockRequestRepo(), repo, newMockCourseRepo(), nil, nil)

		_, err := svc.CreateRequest(ctx, "alice@university.edu", requestInit(models.Class{Course: cs101, Section: "L9"}))
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrSectionNotFound))
	})

	t.Run("invalid payloads", func(t *testing.T) {
		svc, _ := newRequestService(t)

		badType := requestInit(classL1)
		badType.Type = "Regrade"
		_, err := svc.CreateRequest(ctx, "alice@university.edu", badType)
		assert.True(t, errors.Is(err, appErrors.ErrValidation))

		noReason := requestInit(classL1)
		noReason.Details = models.RequestDetails{Proof: []models.Proof{{Name: "doc.pdf", Size: 10}}}
		_, err = svc.CreateRequest(ctx, "alice@university.edu", noReason)
		assert.True(t, errors.Is(err, appErrors.ErrValidation))

		tooMany := requestInit(classL1)
		for i := 0; i <= models.MaxProofFiles; i++ {
			tooMany.Details.Proof = append(tooMany.Details.Proof, models.Proof{Name: "doc.pdf", Size: 10})
		}
		_, err = svc.CreateRequest(ctx, "alice@university.edu", tooMany)
		assert.True(t, errors.Is(err, appErrors.ErrValidation))

		tooBig := requestInit(classL1)
		tooBig.Details.Proof = []models.Proof{{Name: "doc.pdf", Size: models.MaxProofFileSize + 1}}
		_, err = svc.CreateRequest(ctx, "alice@university.edu", tooBig)
		assert.True(t, errors.Is(err, appErrors.ErrValidation))
	})
}

func TestGetRequest(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*RequestService, string) {
		t.Helper()
		svc, _ := newRequestService(t)
		id, err := svc.CreateRequest(ctx, "alice@university.edu", requestInit(classL1))
		require.NoError(t, err)
		return svc, id
	}

	t.Run("requester sees the own request", func(t *testing.T) {
		svc, id := seed(t)
		req, err := svc.GetRequest(ctx, "alice@university.edu", id)
		require.NoError(t, err)
		assert.Equal(t, id, req.ID)
	})

	t.Run("instructor of the class sees it", func(t *testing.T) {
		svc, id := seed(t)
		_, err := svc.GetRequest(ctx, "ivan@university.edu", id)
		assert.NoError(t, err)
	})

	t.Run("ta of the class sees it", func(t *testing.T) {
		svc, id := seed(t)
		_, err := svc.GetRequest(ctx, "tara@university.edu", id)
		assert.NoError(t, err)
	})

	t.Run("student of a different section is denied", func(t *testing.T) {
		svc, id := seed(t)
		_, err := svc.GetRequest(ctx, "bob@university.edu", id)
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrClassPermission))
	})

	t.Run("unknown request id", func(t *testing.T) {
		svc, _ := seed(t)
		_, err := svc.GetRequest(ctx, "alice@university.edu", "req-missing")
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrRequestNotFound))
	})

	t.Run("unknown viewer fails before the permission check", func(t *testing.T) {
		svc, id := seed(t)
		_, err := svc.GetRequest(ctx, "ghost@university.edu", id)
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrUserNotFound))
	})
}

func TestGetRequestsAs(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRequestService(t)

	aliceID, err := svc.CreateRequest(ctx, "alice@university.edu", requestInit(classL1))
	require.NoError(t, err)
	bobID, err := svc.CreateRequest(ctx, "bob@university.edu", requestInit(classL2))
	require.NoError(t, err)

	t.Run("student sees only own requests", func(t *testing.T) {
		requests, err := svc.GetRequestsAs(ctx, "alice@university.edu", models.RoleStudent)
		require.NoError(t, err)
		require.Len(t, requests, 1)
		assert.Equal(t, aliceID, requests[0].ID)
	})

	t.Run("instructor sees requests of taught classes only", func(t *testing.T) {
		// Ivan teaches L1 and LA1; Bob's request targets L2.
		requests, err := svc.GetRequestsAs(ctx, "ivan@university.edu", models.RoleInstructor)
		require.NoError(t, err)
		require.Len(t, requests, 1)
		assert.Equal(t, aliceID, requests[0].ID)
	})

	t.Run("ta listing is scoped to ta classes", func(t *testing.T) {
		requests, err := svc.GetRequestsAs(ctx, "tara@university.edu", models.RoleTA)
		require.NoError(t, err)
		require.Len(t, requests, 1)
		assert.Equal(t, aliceID, requests[0].ID)
	})

	t.Run("student role of a mixed enrollment excludes staffed classes", func(t *testing.T) {
		// Tara is also a student in CS350 R1 but has filed nothing.
		requests, err := svc.GetRequestsAs(ctx, "tara@university.edu", models.RoleStudent)
		require.NoError(t, err)
		assert.Empty(t, requests)
	})

	t.Run("no enrollment in the role yields empty without a store query", func(t *testing.T) {
		requests, err := svc.GetRequestsAs(ctx, "rita@university.edu", models.RoleInstructor)
		require.NoError(t, err)
		assert.Equal(t, []models.Request{}, requests)
	})

	t.Run("listings do not leak across requesters", func(t *testing.T) {
		requests, err := svc.GetRequestsAs(ctx, "bob@university.edu", models.RoleStudent)
		require.NoError(t, err)
		require.Len(t, requests, 1)
		assert.Equal(t, bobID, requests[0].ID)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := svc.GetRequestsAs(ctx, "alice@university.edu", "dean")
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrValidation))
	})
}

func TestCreateResponse(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*RequestService, *mockRequestRepo, string) {
		t.Helper()
		svc, repo := newRequestService(t)
		id, err := svc.CreateRequest(ctx, "alice@university.edu", requestInit(classL1))
		require.NoError(t, err)
		return svc, repo, id
	}
	approve := CreateResponseInput{Decision: models.DecisionApprove, Remarks: "moved to L2"}

	t.Run("class instructor resolves the request", func(t *testing.T) {
		svc, repo, id := seed(t)
		fixed := time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return fixed }

		require.NoError(t, svc.CreateResponse(ctx, "ivan@university.edu", id, approve))

		stored, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		require.True(t, stored.Resolved())
		assert.Equal(t, "ivan@university.edu", stored.Response.From)
		assert.Equal(t, models.DecisionApprove, stored.Response.Decision)
		assert.Equal(t, "moved to L2", stored.Response.Remarks)
		assert.Equal(t, fixed, stored.Response.Timestamp)
	})

	t.Run("ta may not respond", func(t *testing.T) {
		svc, _, id := seed(t)
		err := svc.CreateResponse(ctx, "tara@university.edu", id, approve)
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrClassPermission))
		assert.Contains(t, err.Error(), "the role instructor")
	})

	t.Run("requester may not respond to the own request", func(t *testing.T) {
		svc, _, id := seed(t)
		err := svc.CreateResponse(ctx, "alice@university.edu", id, approve)
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrClassPermission))
	})

	t.Run("second response conflicts and leaves the first untouched", func(t *testing.T) {
		svc, repo, id := seed(t)
		require.NoError(t, svc.CreateResponse(ctx, "ivan@university.edu", id, approve))

		err := svc.CreateResponse(ctx, "irene@university.edu", id,
			CreateResponseInput{Decision: models.DecisionReject, Remarks: "overruled"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrResponseExists))

		stored, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "ivan@university.edu", stored.Response.From)
		assert.Equal(t, models.DecisionApprove, stored.Response.Decision)
		assert.Equal(t, "moved to L2", stored.Response.Remarks)
	})

	t.Run("losing the race maps to the conflict error", func(t *testing.T) {
		svc, repo, id := seed(t)

		// Resolve behind the service's back after its fast-path read would
		// have seen the request open.
		winner := &models.Response{From: "irene@university.edu", Timestamp: time.Now().UTC(), Decision: models.DecisionReject}
		matched, err := repo.AttachResponse(ctx, id, winner)
		require.NoError(t, err)
		require.True(t, matched)

		err = svc.CreateResponse(ctx, "ivan@university.edu", id, approve)
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrResponseExists))
	})

	t.Run("unknown request", func(t *testing.T) {
		svc, _, _ := seed(t)
		err := svc.CreateResponse(ctx, "ivan@university.edu", "req-missing", approve)
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrRequestNotFound))
	})

	t.Run("invalid decision", func(t *testing.T) {
		svc, _, id := seed(t)
		err := svc.CreateResponse(ctx, "ivan@university.edu", id, CreateResponseInput{Decision: "Defer"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrValidation))
	})
}

// TestCreateResponseConcurrent drives many instructors at the same open
// request. Exactly one write must land; everyone else gets the conflict
// error and the winning response is never overwritten.
func TestCreateResponseConcurrent(t *testing.T) {
	ctx := context.Background()
	svc, repo := newRequestService(t)

	id, err := svc.CreateRequest(ctx, "alice@university.edu", requestInit(classL1))
	require.NoError(t, err)

	const attempts = 32
	responders := []string{"ivan@university.edu", "irene@university.edu"}

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.CreateResponse(ctx, responders[i%len(responders)], id, CreateResponseInput{
				Decision: models.DecisionApprove,
				Remarks:  responders[i%len(responders)],
			})
		}(i)
	}
	wg.Wait()

	var won, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, appErrors.ErrResponseExists):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, attempts-1, conflicted)

	stored, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	require.True(t, stored.Resolved())
	// The stored remarks identify the writer; it must be the one that saw nil.
	assert.True(t, strings.HasSuffix(stored.Response.Remarks, "@university.edu"))
	assert.Equal(t, stored.Response.From, stored.Response.Remarks)
}
