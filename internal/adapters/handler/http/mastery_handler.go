package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
	"github.com/ritmoapp/ritmo-engine/internal/core/services"
)

type MasteryHandler struct {
	svc *services.MasteryService
}

func NewMasteryHandler(svc *services.MasteryService) *MasteryHandler {
	return &MasteryHandler{
		svc: svc,
	}
}

type masteryRequest struct {
	Name      string  `json:"name" binding:"required"`
	Type      string  `json:"type" binding:"required"`
	GoalUnits float64 `json:"goal_units" binding:"required"`
	Color     string  `json:"color"`
}

type logSessionRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// masteryResponse decorates the stored goal with its derived display
// fields.
type masteryResponse struct {
	*domain.MasteryGoal
	Percent   float64 `json:"percent"`
	Completed bool    `json:"completed"`
}

func toMasteryResponse(goal *domain.MasteryGoal) masteryResponse {
	return masteryResponse{
		MasteryGoal: goal,
		Percent:     goal.Percent(),
		Completed:   goal.Completed(),
	}
}

func (h *MasteryHandler) RegisterRoutes(router *gin.RouterGroup) {
	masteries := router.Group("/masteries")
	{
		masteries.POST("", h.Create)
		masteries.GET("", h.List)
		masteries.GET("/:id", h.Get)
		masteries.DELETE("/:id", h.Delete)
		masteries.POST("/:id/log", h.LogSession)
	}
}

func (h *MasteryHandler) Create(c *gin.Context) {
	var req masteryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal, err := h.svc.Create(c.Request.Context(), services.MasteryInput{
		Name:      req.Name,
		Type:      req.Type,
		GoalUnits: req.GoalUnits,
		Color:     req.Color,
	})
	if err != nil {
		if errors.Is(err, domain.ErrMasteryNameEmpty) ||
			errors.Is(err, domain.ErrInvalidMasteryType) ||
			errors.Is(err, domain.ErrInvalidMasteryGoal) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, toMasteryResponse(goal))
}

func (h *MasteryHandler) List(c *gin.Context) {
	goals, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	out := make([]masteryResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toMasteryResponse(g))
	}
	c.JSON(http.StatusOK, out)
}

func (h *MasteryHandler) Get(c *gin.Context) {
	goal, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrMasteryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "mastery goal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, toMasteryResponse(goal))
}

func (h *MasteryHandler) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrMasteryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "mastery goal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}

// LogSession applies a manual adjustment (negative corrections
// included).
func (h *MasteryHandler) LogSession(c *gin.Context) {
	var req logSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal, err := h.svc.LogSession(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		if errors.Is(err, domain.ErrMasteryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "mastery goal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, toMasteryResponse(goal))
}
