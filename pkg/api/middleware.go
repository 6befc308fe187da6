package api

import (
	"context"
	"log/slog"
	"time"

	"avrctl/pkg/database"
	"avrctl/pkg/models"

	"github.com/gin-gonic/gin"
)

// ErrorLogger records failing requests to the error_logs table so they can be
// reviewed and categorized later. 4xx responses are user errors; 5xx are
// bugs. Writes happen off the request path with their own deadline.
func ErrorLogger(repo database.Repository[models.ErrorLog]) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		code := c.Writer.Status()
		if code < 400 {
			return
		}

		category := "user_error"
		errorType := "RequestError"
		if code >= 500 {
			category = "bug"
			errorType = "ProcessingError"
		}

		message := c.Errors.String()
		if message == "" {
			message = c.Request.Method + " " + c.Request.URL.Path + " failed"
		}

		entry := &models.ErrorLog{
			ErrorType:     errorType,
			ErrorCategory: category,
			ErrorMessage:  message,
			RequestPath:   c.Request.URL.Path,
			UserAgent:     c.Request.UserAgent(),
			OccurredAt:    time.Now().UTC(),
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if _, err := repo.Create(ctx, entry); err != nil {
				slog.Error("Failed to record error log", "component", "ErrorLogger", "error", err)
			}
		}()
	}
}
