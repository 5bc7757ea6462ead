package summary

import (
	"errors"
	"net/http"

	httperr "github.com/aevon-lab/cost-rollup/internal/core/errors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the summary read route on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/summary/:schema", s.HandleQuery)
}

// HandleQuery handles GET /v1/summary/:schema
// Query parameters: time_scope, report_type
func (s *Service) HandleQuery(c *gin.Context) {
	var req QueryRequest

	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid path parameters",
			Details:   err.Error(),
		})
		return
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	resp, err := s.Query(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownSchema):
			c.JSON(http.StatusNotFound, httperr.ErrorResponse{
				ErrorType: httperr.HttpSchemaNotFoundError,
				Message:   "Schema is not configured for rollups",
				Details:   req.Schema,
			})
		case errors.Is(err, ErrInvalidQuery):
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidQueryError,
				Message:   "Invalid summary query",
				Details:   err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
				ErrorType: httperr.HttpInternalError,
				Message:   "Failed to query summary",
				Details:   err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
