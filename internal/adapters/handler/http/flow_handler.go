package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
	"github.com/ritmoapp/ritmo-engine/internal/core/services"
)

type FlowHandler struct {
	svc *services.FlowService
}

func NewFlowHandler(svc *services.FlowService) *FlowHandler {
	return &FlowHandler{
		svc: svc,
	}
}

type stepRequest struct {
	ID           string `json:"id"`
	Type         string `json:"type" binding:"required"`
	Title        string `json:"title"`
	Duration     int    `json:"duration"`
	TargetReps   int    `json:"target_reps"`
	Pattern      string `json:"pattern"`
	Instructions string `json:"instructions"`
	Image        string `json:"image"`
	MasteryID    string `json:"mastery_id"`
}

type scheduleRequest struct {
	Kind      string `json:"kind"`
	Weekdays  []int  `json:"weekdays"`
	MonthDays []int  `json:"month_days"`
	Date      string `json:"date"`
}

type flowRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	CoverImage  string          `json:"cover_image"`
	Steps       []stepRequest   `json:"steps"`
	Schedule    scheduleRequest `json:"schedule"`
	MasteryID   string          `json:"mastery_id"`
}

type toggleRequest struct {
	Date string `json:"date"`
}

type reorderRequest struct {
	Position int `json:"position"`
}

func (r *flowRequest) toInput() services.FlowInput {
	steps := make([]domain.Step, 0, len(r.Steps))
	for _, s := range r.Steps {
		steps = append(steps, domain.Step{
			ID:           s.ID,
			Type:         s.Type,
			Title:        s.Title,
			Duration:     s.Duration,
			TargetReps:   s.TargetReps,
			Pattern:      s.Pattern,
			Instructions: s.Instructions,
			Image:        s.Image,
			MasteryID:    s.MasteryID,
		})
	}

	return services.FlowInput{
		Title:       r.Title,
		Description: r.Description,
		CoverImage:  r.CoverImage,
		Steps:       steps,
		Schedule: domain.Schedule{
			Kind:      r.Schedule.Kind,
			Weekdays:  r.Schedule.Weekdays,
			MonthDays: r.Schedule.MonthDays,
			Date:      r.Schedule.Date,
		},
		MasteryID: r.MasteryID,
	}
}

func isFlowValidationError(err error) bool {
	return errors.Is(err, domain.ErrFlowTitleEmpty) ||
		errors.Is(err, domain.ErrFlowTitleTooLong) ||
		errors.Is(err, domain.ErrFlowNoSteps) ||
		errors.Is(err, domain.ErrInvalidStepType) ||
		errors.Is(err, domain.ErrInvalidDuration) ||
		errors.Is(err, domain.ErrInvalidReps) ||
		errors.Is(err, domain.ErrInvalidScheduleKind) ||
		errors.Is(err, domain.ErrInvalidWeekdays) ||
		errors.Is(err, domain.ErrInvalidMonthDays) ||
		errors.Is(err, domain.ErrInvalidDate)
}

func (h *FlowHandler) RegisterRoutes(router *gin.RouterGroup) {
	flows := router.Group("/flows")
	{
		flows.POST("", h.Create)
		flows.GET("", h.List)
		flows.GET("/:id", h.Get)
		flows.PUT("/:id", h.Update)
		flows.DELETE("/:id", h.Delete)
		flows.POST("/:id/toggle", h.Toggle)
		flows.POST("/:id/reorder", h.Reorder)
	}
}

func (h *FlowHandler) Create(c *gin.Context) {
	var req flowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flow, err := h.svc.Create(c.Request.Context(), req.toInput())
	if err != nil {
		if isFlowValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, flow)
}

func (h *FlowHandler) List(c *gin.Context) {
	flows, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, flows)
}

func (h *FlowHandler) Get(c *gin.Context) {
	flow, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrFlowNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "flow not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, flow)
}

func (h *FlowHandler) Update(c *gin.Context) {
	var req flowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flow, err := h.svc.Update(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		if errors.Is(err, domain.ErrFlowNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "flow not found"})
			return
		}
		if isFlowValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, flow)
}

func (h *FlowHandler) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrFlowNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "flow not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Toggle flips today's (or the given date's) completion checkbox.
func (h *FlowHandler) Toggle(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date := req.Date
	if date == "" {
		date = domain.DateKey(time.Now())
	} else if _, err := domain.ParseDateKey(date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flow, err := h.svc.ToggleCompletion(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		if errors.Is(err, domain.ErrFlowNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "flow not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"flow":      flow,
		"completed": flow.IsCompletedOn(date),
	})
}

func (h *FlowHandler) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.svc.Reorder(c.Request.Context(), c.Param("id"), req.Position)
	if err != nil {
		if errors.Is(err, domain.ErrFlowNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "flow not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Status(http.StatusOK)
}
