package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tmattila/artstore-go/internal/datastore"
	"github.com/tmattila/artstore-go/internal/errors"
)

func TestCreateUserHashesPassword(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	mockDS.On("CreateUser", mock.AnythingOfType("*datastore.User")).
		Run(func(args mock.Arguments) {
			user := args.Get(0).(*datastore.User)
			user.ID = "user-1"
			// The stored hash must verify against the plaintext and never equal it
			assert.NotEqual(t, "hunter2", user.PasswordHash)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2")))
		}).
		Return(nil)

	body := `{"username":"alice","email":"alice@example.com","password":"hunter2"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v2/users/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.CreateUser(ctx))
	assert.Equal(t, http.StatusCreated, rec.Code)

	// The password hash must never appear in the response body
	assert.NotContains(t, rec.Body.String(), "password_hash")

	mockDS.AssertExpectations(t)
}

func TestCreateUserMissingFields(t *testing.T) {
	e, _, controller := setupTestEnvironment(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v2/users/", strings.NewReader(`{"username":"alice"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.CreateUser(ctx))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginSuccess(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	mockDS.On("GetUserByUsername", "alice").
		Return(datastore.User{ID: "user-1", Username: "alice", PasswordHash: string(hash), IsActive: true}, nil)

	body := `{"username":"alice","password":"hunter2"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v2/users/login/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.Login(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp["status"])

	mockDS.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	mockDS.On("GetUserByUsername", "alice").
		Return(datastore.User{ID: "user-1", Username: "alice", PasswordHash: string(hash), IsActive: true}, nil)

	body := `{"username":"alice","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v2/users/login/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.Login(ctx))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	mockDS.AssertExpectations(t)
}

func TestLoginUnknownUserSameResponse(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	mockDS.On("GetUserByUsername", "ghost").
		Return(datastore.User{}, errors.NotFound("user", "ghost"))

	body := `{"username":"ghost","password":"whatever"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v2/users/login/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.Login(ctx))
	// Unknown user and wrong password are indistinguishable to the caller
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid username or password", resp.Message)

	mockDS.AssertExpectations(t)
}

func TestLoginInactiveUser(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	mockDS.On("GetUserByUsername", "alice").
		Return(datastore.User{ID: "user-1", Username: "alice", PasswordHash: string(hash), IsActive: false}, nil)

	body := `{"username":"alice","password":"hunter2"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v2/users/login/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.Login(ctx))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	mockDS.AssertExpectations(t)
}

func TestListUsersParsesFlagFilters(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	active := true
	mockDS.On("ListUsers", mock.MatchedBy(func(f datastore.UserFilter) bool {
		return f.IsActive != nil && *f.IsActive == active && f.IsSuperuser == nil
	})).Return([]datastore.User{{ID: "user-1", Username: "alice"}}, int64(1), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v2/users/?is_active=true", http.NoBody)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, controller.ListUsers(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp UserListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Total)

	mockDS.AssertExpectations(t)
}

func TestUpdateUserRehashesPassword(t *testing.T) {
	e, mockDS, controller := setupTestEnvironment(t)

	mockDS.On("UpdateUser", "user-1", mock.MatchedBy(func(fields map[string]any) bool {
		if _, leaked := fields["password"]; leaked {
			return false
		}
		hash, ok := fields["password_hash"].(string)
		if !ok {
			return false
		}
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpass")) == nil
	})).Return(datastore.User{ID: "user-1", Username: "alice"}, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/v2/users/user-1", strings.NewReader(`{"password":"newpass"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetPath("/api/v2/users/:id")
	ctx.SetParamNames("id")
	ctx.SetParamValues("user-1")

	require.NoError(t, controller.UpdateUser(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)

	mockDS.AssertExpectations(t)
}
