package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/zoubayerBS/budgetbud-sub000/internal/errors"
	"github.com/zoubayerBS/budgetbud-sub000/internal/logger"
	"github.com/zoubayerBS/budgetbud-sub000/internal/models"
	"github.com/zoubayerBS/budgetbud-sub000/internal/pagination"
	"github.com/zoubayerBS/budgetbud-sub000/internal/recurrence"
	"github.com/zoubayerBS/budgetbud-sub000/internal/services"
)

// RecurringHandler handles recurring template requests.
type RecurringHandler struct {
	recurringService services.RecurringServicer
	auditService     services.AuditServicer
	materializer     recurrence.Materializer
}

// NewRecurringHandler creates a new RecurringHandler.
func NewRecurringHandler(recurringService services.RecurringServicer, auditService services.AuditServicer, materializer recurrence.Materializer) *RecurringHandler {
	return &RecurringHandler{
		recurringService: recurringService,
		auditService:     auditService,
		materializer:     materializer,
	}
}

// CreateTemplateRequest represents the request payload for creating a recurring template
type CreateTemplateRequest struct {
	Type      models.TransactionType `json:"type" binding:"required,transaction_type"`
	Amount    int64                  `json:"amount" binding:"required,gt=0"`
	Category  string                 `json:"category" binding:"required,max=100"`
	Note      string                 `json:"note" binding:"max=500"`
	Frequency models.Frequency       `json:"frequency" binding:"required,frequency"`
	StartDate string                 `json:"start_date" binding:"required"`
}

// CreateTemplate handles the creation of a new recurring template
// @Summary     Create a recurring template
// @Description Create a recurring transaction template. If the start date is today or in the past, the due occurrences are materialized immediately.
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTemplateRequest true "Template details"
// @Success     201 {object} models.RecurringTemplate "Template created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring [post]
func (h *RecurringHandler) CreateTemplate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	startDate, err := parseFlexibleTime(req.StartDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid start_date format, use RFC3339 or YYYY-MM-DD"))
		return
	}

	template, err := h.recurringService.CreateTemplate(
		userID,
		req.Type,
		req.Amount,
		req.Category,
		req.Note,
		req.Frequency,
		startDate,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	// Catch up immediately so a backdated template's occurrences exist by
	// the time the creation response returns.
	if err := h.materializer.Materialize(c.Request.Context(), userID); err != nil {
		logger.Get().Warnw("materialization after template creation failed",
			"user_id", userID,
			"template_id", template.ID,
			"error", err,
		)
	}

	h.auditService.Log(userID, "CREATE_RECURRING_TEMPLATE", "recurring_template", template.ID, c.ClientIP(),
		map[string]interface{}{"type": req.Type, "amount": req.Amount, "frequency": req.Frequency})

	c.JSON(http.StatusCreated, gin.H{"template": template})
}

// GetUserTemplates handles listing the user's active recurring templates
// @Summary     Get recurring templates
// @Description Get a paginated list of the user's active recurring templates
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.RecurringTemplate] "Paginated templates"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring [get]
func (h *RecurringHandler) GetUserTemplates(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.recurringService.GetUserTemplates(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTemplateByID handles the retrieval of a specific recurring template
// @Summary     Get recurring template by ID
// @Description Get a specific recurring template by ID
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Template ID"
// @Success     200 {object} models.RecurringTemplate "Template details"
// @Failure     400 {object} ErrorResponse "Invalid template ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id} [get]
func (h *RecurringHandler) GetTemplateByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	templateID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	template, err := h.recurringService.GetTemplateByID(userID, templateID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"template": template})
}

// DeactivateTemplate handles deactivation of a recurring template
// @Summary     Deactivate recurring template
// @Description Deactivate a recurring template. Already materialized transactions are kept; no further occurrences are generated.
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Template ID"
// @Success     200 {object} MessageResponse "Template deactivated"
// @Failure     400 {object} ErrorResponse "Invalid template ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id} [delete]
func (h *RecurringHandler) DeactivateTemplate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	templateID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recurringService.DeactivateTemplate(userID, templateID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DEACTIVATE_RECURRING_TEMPLATE", "recurring_template", templateID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Template deactivated successfully"})
}
