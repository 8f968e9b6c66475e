package requirement_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-diligince/internal/domain"
	"go-diligince/internal/requirement"
	requirementerrors "go-diligince/internal/requirement/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRequirementService struct {
	requirement.Service
	ListFn        func(ctx context.Context, caller domain.Caller, filter requirement.ListFilter) ([]requirement.RequirementResponse, error)
	GetFn         func(ctx context.Context, caller domain.Caller, id string) (requirement.RequirementResponse, error)
	SubmitFn      func(ctx context.Context, caller domain.Caller, id string, steps []string) (requirement.RequirementResponse, error)
	ApproveStepFn func(ctx context.Context, caller domain.Caller, id, comments string) (requirement.RequirementResponse, error)
	RejectFn      func(ctx context.Context, caller domain.Caller, id, reason string) (requirement.RequirementResponse, error)
}

func (f *fakeRequirementService) List(ctx context.Context, caller domain.Caller, filter requirement.ListFilter) ([]requirement.RequirementResponse, error) {
	return f.ListFn(ctx, caller, filter)
}
func (f *fakeRequirementService) Get(ctx context.Context, caller domain.Caller, id string) (requirement.RequirementResponse, error) {
	return f.GetFn(ctx, caller, id)
}
func (f *fakeRequirementService) Submit(ctx context.Context, caller domain.Caller, id string, steps []string) (requirement.RequirementResponse, error) {
	return f.SubmitFn(ctx, caller, id, steps)
}
func (f *fakeRequirementService) ApproveStep(ctx context.Context, caller domain.Caller, id, comments string) (requirement.RequirementResponse, error) {
	return f.ApproveStepFn(ctx, caller, id, comments)
}
func (f *fakeRequirementService) Reject(ctx context.Context, caller domain.Caller, id, reason string) (requirement.RequirementResponse, error) {
	return f.RejectFn(ctx, caller, id, reason)
}

func newRequirementRouter(svc requirement.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := requirement.NewHandler(svc)
	_, r := gin.CreateTestContext(httptest.NewRecorder())
	r.Use(func(c *gin.Context) {
		c.Set("company_id", "company-1")
		c.Set("user_id", "actor-1")
		c.Set("role", "buyer")
		c.Next()
	})
	r.GET("/requirements", h.GetAll)
	r.GET("/requirements/:id", h.GetByID)
	r.POST("/requirements/:id/submit", h.Submit)
	r.POST("/requirements/:id/approve", h.ApproveStep)
	r.POST("/requirements/:id/reject", h.Reject)
	return r
}

func TestRequirementHandler_GetAll(t *testing.T) {
	svc := &fakeRequirementService{
		ListFn: func(ctx context.Context, caller domain.Caller, filter requirement.ListFilter) ([]requirement.RequirementResponse, error) {
			assert.Equal(t, domain.Caller{UserID: "actor-1", CompanyID: "company-1", SystemRole: "buyer"}, caller)
			assert.Equal(t, requirement.StatusPendingApproval, filter.Status)
			return []requirement.RequirementResponse{{ID: "1"}, {ID: "2"}, {ID: "3"}}, nil
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/requirements?status=pending_approval&page=2&page_size=2", nil)
	newRequirementRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []requirement.RequirementResponse `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "3", body.Data[0].ID)
	assert.Equal(t, 3, body.Meta.Total)
}

func TestRequirementHandler_GetByID_NotFound(t *testing.T) {
	svc := &fakeRequirementService{
		GetFn: func(ctx context.Context, caller domain.Caller, id string) (requirement.RequirementResponse, error) {
			return requirement.RequirementResponse{}, requirementerrors.ErrRequirementNotFound
		},
	}

	w := httptest.NewRecorder()
	newRequirementRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/requirements/r-1", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequirementHandler_Submit(t *testing.T) {
	var gotSteps []string
	svc := &fakeRequirementService{
		SubmitFn: func(ctx context.Context, caller domain.Caller, id string, steps []string) (requirement.RequirementResponse, error) {
			gotSteps = steps
			return requirement.RequirementResponse{ID: id, Status: requirement.StatusPendingApproval}, nil
		},
	}
	r := newRequirementRouter(svc)

	t.Run("custom steps", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/requirements/r-1/submit", strings.NewReader(`{"steps":["Legal","Finance"]}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"Legal", "Finance"}, gotSteps)
	})

	t.Run("empty body uses defaults", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/requirements/r-1/submit", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, gotSteps)
	})
}

func TestRequirementHandler_ApproveStep_PassesCaller(t *testing.T) {
	svc := &fakeRequirementService{
		ApproveStepFn: func(ctx context.Context, caller domain.Caller, id, comments string) (requirement.RequirementResponse, error) {
			assert.Equal(t, "actor-1", caller.UserID)
			assert.Equal(t, "company-1", caller.CompanyID)
			assert.Equal(t, "buyer", caller.SystemRole)
			assert.Equal(t, "looks fine", comments)
			return requirement.RequirementResponse{ID: id, Status: requirement.StatusApproved}, nil
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/requirements/r-1/approve", strings.NewReader(`{"comments":"looks fine"}`))
	req.Header.Set("Content-Type", "application/json")
	newRequirementRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), requirement.StatusApproved)
}

func TestRequirementHandler_ApproveStep_Draft(t *testing.T) {
	svc := &fakeRequirementService{
		ApproveStepFn: func(ctx context.Context, caller domain.Caller, id, comments string) (requirement.RequirementResponse, error) {
			return requirement.RequirementResponse{}, requirementerrors.ErrNotPendingApproval
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/requirements/r-1/approve", nil)
	newRequirementRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_STATE")
}

func TestRequirementHandler_Reject_Validation(t *testing.T) {
	svc := &fakeRequirementService{
		RejectFn: func(ctx context.Context, caller domain.Caller, id, reason string) (requirement.RequirementResponse, error) {
			t.Fatal("service must not be called")
			return requirement.RequirementResponse{}, nil
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/requirements/r-1/reject", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	newRequirementRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
