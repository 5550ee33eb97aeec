// internal/api/v2/users.go
package api

import (
	"net/http"

	"log/slog"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/tmattila/artstore-go/internal/datastore"
)

// initUserRoutes registers user management and login endpoints
func (c *Controller) initUserRoutes() {
	c.Group.POST("/users/", c.CreateUser)
	c.Group.GET("/users/", c.ListUsers)
	c.Group.POST("/users/login/", c.Login)
	c.Group.GET("/users/username/:username", c.GetUserByUsername)
	c.Group.GET("/users/email/:email", c.GetUserByEmail)
	c.Group.GET("/users/:id", c.GetUser)
	c.Group.PUT("/users/:id", c.UpdateUser)
	c.Group.DELETE("/users/:id", c.DeleteUser)
}

// CreateUserRequest carries a plaintext password that is hashed before storage.
type CreateUserRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	IsActive    *bool  `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

// LoginRequest is the credential payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserListResponse wraps a page of users with pagination metadata.
type UserListResponse struct {
	Users []datastore.User `json:"users"`
	Total int64            `json:"total"`
	Skip  int              `json:"skip"`
	Limit int              `json:"limit"`
}

// CreateUser handles POST /api/v2/users/
func (c *Controller) CreateUser(ctx echo.Context) error {
	var req CreateUserRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid user payload", http.StatusBadRequest)
	}

	if req.Username == "" || req.Email == "" {
		return c.HandleError(ctx, nil, "username and email must not be empty", http.StatusBadRequest)
	}
	if req.Password == "" {
		return c.HandleError(ctx, nil, "password must not be empty", http.StatusBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to hash password", http.StatusInternalServerError)
	}

	user := datastore.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		IsActive:     true,
		IsSuperuser:  req.IsSuperuser,
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := c.DS.CreateUser(&user); err != nil {
		return c.handleDSError(ctx, err, "Failed to create user")
	}

	c.logAPIRequest(ctx, slog.LevelInfo, "User created", "user_id", user.ID, "username", user.Username)
	return ctx.JSON(http.StatusCreated, user)
}

// Login handles POST /api/v2/users/login/
// The response never distinguishes an unknown user from a wrong password.
func (c *Controller) Login(ctx echo.Context) error {
	var req LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid login payload", http.StatusBadRequest)
	}

	user, err := c.DS.GetUserByUsername(req.Username)
	if err != nil {
		c.logAPIRequest(ctx, slog.LevelWarn, "Login failed", "username", req.Username)
		return c.HandleError(ctx, nil, "Invalid username or password", http.StatusUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.logAPIRequest(ctx, slog.LevelWarn, "Login failed", "username", req.Username)
		return c.HandleError(ctx, nil, "Invalid username or password", http.StatusUnauthorized)
	}

	if !user.IsActive {
		return c.HandleError(ctx, nil, "User account is inactive", http.StatusForbidden)
	}

	c.logAPIRequest(ctx, slog.LevelInfo, "User logged in", "user_id", user.ID, "username", user.Username)
	return ctx.JSON(http.StatusOK, map[string]any{
		"status": "success",
		"user":   user,
	})
}

// GetUser handles GET /api/v2/users/:id
func (c *Controller) GetUser(ctx echo.Context) error {
	id := ctx.Param("id")

	user, err := c.DS.GetUser(id)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to get user")
	}

	return ctx.JSON(http.StatusOK, user)
}

// GetUserByUsername handles GET /api/v2/users/username/:username
func (c *Controller) GetUserByUsername(ctx echo.Context) error {
	username := ctx.Param("username")

	user, err := c.DS.GetUserByUsername(username)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to get user by username")
	}

	return ctx.JSON(http.StatusOK, user)
}

// GetUserByEmail handles GET /api/v2/users/email/:email
func (c *Controller) GetUserByEmail(ctx echo.Context) error {
	email := ctx.Param("email")

	user, err := c.DS.GetUserByEmail(email)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to get user by email")
	}

	return ctx.JSON(http.StatusOK, user)
}

// ListUsers handles GET /api/v2/users/
func (c *Controller) ListUsers(ctx echo.Context) error {
	filter := datastore.UserFilter{
		Skip:  queryInt(ctx, "skip", 0),
		Limit: queryInt(ctx, "limit", 0),
	}
	if raw := ctx.QueryParam("is_active"); raw != "" {
		v := queryBool(ctx, "is_active")
		filter.IsActive = &v
	}
	if raw := ctx.QueryParam("is_superuser"); raw != "" {
		v := queryBool(ctx, "is_superuser")
		filter.IsSuperuser = &v
	}

	users, total, err := c.DS.ListUsers(filter)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to list users")
	}

	return ctx.JSON(http.StatusOK, UserListResponse{
		Users: users,
		Total: total,
		Skip:  filter.Skip,
		Limit: filter.Limit,
	})
}

// UpdateUser handles PUT /api/v2/users/:id
func (c *Controller) UpdateUser(ctx echo.Context) error {
	id := ctx.Param("id")

	updates := make(map[string]any)
	if err := ctx.Bind(&updates); err != nil {
		return c.HandleError(ctx, err, "Invalid user payload", http.StatusBadRequest)
	}

	// A plaintext password field is hashed here; the raw value never
	// reaches the datastore.
	if raw, ok := updates["password"]; ok {
		password, ok := raw.(string)
		if !ok || password == "" {
			return c.HandleError(ctx, nil, "password must be a non-empty string", http.StatusBadRequest)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return c.HandleError(ctx, err, "Failed to hash password", http.StatusInternalServerError)
		}
		delete(updates, "password")
		updates["password_hash"] = string(hash)
	}

	user, err := c.DS.UpdateUser(id, updates)
	if err != nil {
		return c.handleDSError(ctx, err, "Failed to update user")
	}

	return ctx.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /api/v2/users/:id
func (c *Controller) DeleteUser(ctx echo.Context) error {
	id := ctx.Param("id")

	if err := c.DS.DeleteUser(id); err != nil {
		return c.handleDSError(ctx, err, "Failed to delete user")
	}

	c.logAPIRequest(ctx, slog.LevelInfo, "User deleted", "user_id", id)
	return ctx.NoContent(http.StatusNoContent)
}
