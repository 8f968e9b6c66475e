package user_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-diligince/internal/domain"
	"go-diligince/internal/user"
	usererrors "go-diligince/internal/user/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserService struct {
	GetAllFn         func(ctx context.Context, companyID string) ([]user.UserResponse, error)
	GetByIDFn        func(ctx context.Context, companyID, id string) (user.UserResponse, error)
	CreateFn         func(ctx context.Context, companyID, actorID string, req user.CreateUserRequest) (user.UserResponse, error)
	ToggleStatusFn   func(ctx context.Context, companyID, actorID, id string, isActive bool) error
	ChangePasswordFn func(ctx context.Context, companyID, id, current, new string) error
}

func (f *fakeUserService) GetAll(ctx context.Context, cid string) ([]user.UserResponse, error) {
	return f.GetAllFn(ctx, cid)
}
func (f *fakeUserService) GetByID(ctx context.Context, cid, id string) (user.UserResponse, error) {
	return f.GetByIDFn(ctx, cid, id)
}
func (f *fakeUserService) Create(ctx context.Context, cid, actorID string, req user.CreateUserRequest) (user.UserResponse, error) {
	return f.CreateFn(ctx, cid, actorID, req)
}
func (f *fakeUserService) ToggleStatus(ctx context.Context, cid, actorID, id string, isActive bool) error {
	return f.ToggleStatusFn(ctx, cid, actorID, id, isActive)
}
func (f *fakeUserService) ChangePassword(ctx context.Context, cid, id, current, new string) error {
	return f.ChangePasswordFn(ctx, cid, id, current, new)
}
func (f *fakeUserService) ApplyChanges(ctx context.Context, tx *sql.Tx, cid, actorID, id string, cs domain.ChangeSet, reason string) (domain.AppliedChange, error) {
	return domain.AppliedChange{}, nil
}

func newUserRouter(svc user.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := user.NewHandler(svc)
	_, r := gin.CreateTestContext(httptest.NewRecorder())
	r.Use(func(c *gin.Context) {
		c.Set("company_id", "company-1")
		c.Set("user_id", "actor-1")
		c.Next()
	})
	r.GET("/users", h.GetAll)
	r.GET("/users/:id", h.GetByID)
	r.POST("/users", h.Create)
	r.PATCH("/users/:id/status", h.ToggleStatus)
	return r
}

func TestUserHandler_GetAll_FilterSortPaginate(t *testing.T) {
	svc := &fakeUserService{
		GetAllFn: func(ctx context.Context, companyID string) ([]user.UserResponse, error) {
			assert.Equal(t, "company-1", companyID)
			return []user.UserResponse{
				{ID: "1", Email: "zed@acme.test"},
				{ID: "2", Email: "amy@acme.test"},
				{ID: "3", Email: "bob@other.test"},
			}, nil
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users?q=acme&page=1&page_size=1", nil)
	newUserRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		OK   bool                `json:"ok"`
		Data []user.UserResponse `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.OK)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "amy@acme.test", body.Data[0].Email)
	assert.EqualValues(t, 2, body.Meta.Total)
}

func TestUserHandler_GetByID_NotFound(t *testing.T) {
	svc := &fakeUserService{
		GetByIDFn: func(ctx context.Context, companyID, id string) (user.UserResponse, error) {
			return user.UserResponse{}, usererrors.ErrUserNotFound
		},
	}

	w := httptest.NewRecorder()
	newUserRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/u-1", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestUserHandler_Create(t *testing.T) {
	t.Run("validation error", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"email":"bad"}`))
		req.Header.Set("Content-Type", "application/json")
		newUserRouter(&fakeUserService{}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("created", func(t *testing.T) {
		svc := &fakeUserService{
			CreateFn: func(ctx context.Context, companyID, actorID string, req user.CreateUserRequest) (user.UserResponse, error) {
				assert.Equal(t, "actor-1", actorID)
				return user.UserResponse{ID: "u-9", Email: req.Email, Role: req.Role}, nil
			},
		}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users",
			strings.NewReader(`{"name":"Jane","email":"jane@acme.test","password":"password123","role":"buyer"}`))
		req.Header.Set("Content-Type", "application/json")
		newUserRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestUserHandler_ToggleStatus(t *testing.T) {
	t.Run("missing is_active", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/users/u-1/status", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		newUserRouter(&fakeUserService{}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ok", func(t *testing.T) {
		called := false
		svc := &fakeUserService{
			ToggleStatusFn: func(ctx context.Context, companyID, actorID, id string, isActive bool) error {
				called = true
				assert.Equal(t, "u-1", id)
				assert.False(t, isActive)
				return nil
			},
		}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/users/u-1/status", strings.NewReader(`{"is_active":false}`))
		req.Header.Set("Content-Type", "application/json")
		newUserRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
	})
}
