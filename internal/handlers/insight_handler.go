package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/zoubayerBS/budgetbud-sub000/internal/errors"
	"github.com/zoubayerBS/budgetbud-sub000/internal/logger"
	"github.com/zoubayerBS/budgetbud-sub000/internal/recurrence"
	"github.com/zoubayerBS/budgetbud-sub000/internal/services"
)

// InsightHandler handles spending insight requests.
type InsightHandler struct {
	insightService services.InsightServicer
	materializer   recurrence.Materializer
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(insightService services.InsightServicer, materializer recurrence.Materializer) *InsightHandler {
	return &InsightHandler{insightService: insightService, materializer: materializer}
}

// GetMonthlyInsights handles the retrieval of monthly insights
// @Summary     Get monthly insights
// @Description Get aggregated income, spending, and advisory messages for a calendar month. Defaults to the current month.
// @Tags        insights
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month in YYYY-MM format (default: current month)"
// @Success     200 {object} services.MonthlyInsights "Monthly insights"
// @Failure     400 {object} ErrorResponse "Invalid month format"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /insights/monthly [get]
func (h *InsightHandler) GetMonthlyInsights(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month := time.Now()
	if v := c.Query("month"); v != "" {
		parsed, parseErr := time.Parse("2006-01", v)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid month format, use YYYY-MM"))
			return
		}
		month = parsed
	}

	// Insights should include recurring occurrences due up to today.
	if err := h.materializer.Materialize(c.Request.Context(), userID); err != nil {
		logger.Get().Warnw("materialization before insights failed",
			"user_id", userID,
			"error", err,
		)
	}

	insights, err := h.insightService.GetMonthlyInsights(userID, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"insights": insights})
}
