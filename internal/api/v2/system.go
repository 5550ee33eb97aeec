// internal/api/v2/system.go
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// initSystemRoutes registers system-level endpoints
func (c *Controller) initSystemRoutes() {
	c.Group.POST("/test-connection/", c.TestConnection)
}

// Liveness responds on the bare root path so load balancers can probe the process.
func (c *Controller) Liveness(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{
		"status":  "success",
		"message": "API is running",
	})
}

// HealthCheck handles the API health check endpoint
func (c *Controller) HealthCheck(ctx echo.Context) error {
	response := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	}

	environment := "production"
	if c.Settings != nil {
		response["version"] = c.Settings.Version
		response["build_date"] = c.Settings.BuildDate
		if c.Settings.WebServer.Debug {
			environment = "development"
		}
	}
	response["environment"] = environment

	dbStatus := "connected"
	var dbError string
	if err := c.DS.Ping(); err != nil {
		dbStatus = "disconnected"
		dbError = err.Error()
	}

	response["database_status"] = dbStatus
	if dbError != "" {
		response["database_error"] = dbError
	}

	if c.startTime != nil {
		uptime := time.Since(*c.startTime)
		response["uptime"] = uptime.String()
		response["uptime_seconds"] = uptime.Seconds()
	}

	return ctx.JSON(http.StatusOK, response)
}

// TestConnection verifies database connectivity with a round trip query.
func (c *Controller) TestConnection(ctx echo.Context) error {
	if err := c.DS.Ping(); err != nil {
		return c.HandleError(ctx, err, "Database connection failed", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Database connection is healthy",
	})
}
