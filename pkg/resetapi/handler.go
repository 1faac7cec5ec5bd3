package resetapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"resetd/pkg/reset"
)

// Resetter performs a guarded reset.
type Resetter interface {
	Reset(ctx context.Context) reset.Outcome
}

// RegisterRoutes registers the reset endpoint under the given router group
func RegisterRoutes(rg *gin.RouterGroup, r Resetter) {
	rg.POST("/reset-db", resetHandler(r))
}

// StatusCode maps a reset outcome to its HTTP status.
func StatusCode(o reset.Outcome) int {
	switch o {
	case reset.Succeeded:
		return http.StatusNoContent
	case reset.Rejected:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func resetHandler(r Resetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Status(StatusCode(r.Reset(c.Request.Context())))
	}
}
