package rollup

import (
	"errors"
	"net/http"

	httperr "github.com/aevon-lab/cost-rollup/internal/core/errors"
	"github.com/aevon-lab/cost-rollup/internal/core/storage"
	"github.com/gin-gonic/gin"
)

// Handler exposes on-demand runs over HTTP.
type Handler struct {
	runner  Runner
	schemas map[string]bool
}

// NewHandler creates a Handler that only accepts the configured schemas.
func NewHandler(runner Runner, schemas []string) *Handler {
	allowed := make(map[string]bool, len(schemas))
	for _, s := range schemas {
		allowed[s] = true
	}
	return &Handler{runner: runner, schemas: allowed}
}

// RegisterRoutes registers the rollup trigger route on the given router.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/rollups/:schema", h.HandleRun)
}

// HandleRun handles POST /v1/rollups/:schema. The run is synchronous; the
// response is the RunResult or the failing stage.
func (h *Handler) HandleRun(c *gin.Context) {
	schema := c.Param("schema")
	if !h.schemas[schema] {
		c.JSON(http.StatusNotFound, httperr.ErrorResponse{
			ErrorType: httperr.HttpSchemaNotFoundError,
			Message:   "Schema is not configured for rollups",
			Details:   schema,
		})
		return
	}

	res, err := h.runner.Run(c.Request.Context(), schema)
	if err != nil {
		status, errType := runErrorStatus(err)
		stage, _ := StageOf(err)
		c.JSON(status, httperr.ErrorResponse{
			ErrorType: errType,
			Message:   "Rollup failed",
			Details: gin.H{
				"stage": stage,
				"error": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, res)
}

func runErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, storage.ErrRunInProgress):
		return http.StatusConflict, httperr.HttpRunInProgressError
	case errors.Is(err, storage.ErrPartialPublish):
		return http.StatusInternalServerError, httperr.HttpPartialPublishError
	case errors.Is(err, ErrInputUnavailable):
		return http.StatusServiceUnavailable, httperr.HttpInputUnavailableError
	case errors.Is(err, ErrComputation):
		return http.StatusUnprocessableEntity, httperr.HttpComputationError
	default:
		return http.StatusInternalServerError, httperr.HttpInternalError
	}
}
