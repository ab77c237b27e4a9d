package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/volumedex/volumedex/internal/api/models"
)

// ErrorHandler middleware for handling panics and errors
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		var err error
		var msg string

		switch v := recovered.(type) {
		case string:
			msg = v
		case error:
			err = v
			msg = err.Error()
		default:
			msg = "Internal server error"
		}

		statusCode := http.StatusInternalServerError
		errorCode := "INTERNAL_ERROR"

		if err != nil {
			if isVolumeUnavailableError(err) {
				statusCode = http.StatusServiceUnavailable
				errorCode = "VOLUME_UNAVAILABLE"
			} else if isPermissionError(err) {
				statusCode = http.StatusForbidden
				errorCode = "PERMISSION_ERROR"
			} else if isStoreError(err) {
				statusCode = http.StatusServiceUnavailable
				errorCode = "STORE_ERROR"
			}
		}

		c.AbortWithStatusJSON(statusCode, models.ErrorResponse{
			Error:   "Request failed due to an unexpected error",
			Code:    errorCode,
			Details: msg,
		})
	})
}

// StoreErrorHandler middleware maps internal/store.Error failures surfaced
// during request handling to the appropriate status code.
func StoreErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var statusCode int
		var errorCode string
		var message string

		switch {
		case isVolumeUnavailableError(err):
			statusCode = http.StatusServiceUnavailable
			errorCode = "VOLUME_UNAVAILABLE"
			message = "the requested volume is not currently mounted"
		case isStoreError(err):
			statusCode = http.StatusServiceUnavailable
			errorCode = "STORE_UNAVAILABLE"
			message = "the index store could not complete the request"
		default:
			return
		}

		c.AbortWithStatusJSON(statusCode, models.ErrorResponse{
			Error:   message,
			Code:    errorCode,
			Details: err.Error(),
		})
	}
}

// isVolumeUnavailableError reports whether err indicates the requested
// volume is not currently mounted (spec.md §6, "Resolve" best-effort
// lookups fail once a volume is unmounted).
func isVolumeUnavailableError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "not mounted") ||
		strings.Contains(errMsg, "not currently mounted") ||
		strings.Contains(errMsg, "volume unavailable")
}

// isPermissionError checks if the error is permission-related
func isPermissionError(err error) bool {
	if err == nil {
		return false
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "permission denied") ||
		strings.Contains(errMsg, "access denied") ||
		strings.Contains(errMsg, "unauthorized")
}

// isStoreError reports whether err originated from internal/store (spec.md
// §7's error taxonomy — open/prepare failures and unrecovered corruption
// all surface here as a service-unavailable response).
func isStoreError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "store:")
}
