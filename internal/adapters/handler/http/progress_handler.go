package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ritmoapp/ritmo-engine/internal/core/services"
)

// ProgressHandler serves the progression read models plus the small
// task board whose completions feed the badge counters.
type ProgressHandler struct {
	ledger   *services.LedgerService
	snapshot *services.SnapshotService
}

func NewProgressHandler(ledger *services.LedgerService, snapshot *services.SnapshotService) *ProgressHandler {
	return &ProgressHandler{
		ledger:   ledger,
		snapshot: snapshot,
	}
}

type createTaskRequest struct {
	Title string `json:"title" binding:"required"`
}

type journalEntryRequest struct {
	Title  string `json:"title" binding:"required"`
	Body   string `json:"body"`
	FlowID string `json:"flow_id"`
}

func (h *ProgressHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/progress", h.Overview)
	router.GET("/activity", h.Activity)
	router.GET("/history", h.History)

	tasks := router.Group("/tasks")
	{
		tasks.GET("", h.ListTasks)
		tasks.POST("", h.CreateTask)
		tasks.POST("/:id/toggle", h.ToggleTask)
		tasks.DELETE("/:id", h.DeleteTask)
	}

	journal := router.Group("/journal")
	{
		journal.GET("", h.ListJournal)
		journal.POST("", h.CreateJournalEntry)
	}
}

func (h *ProgressHandler) Overview(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Overview())
}

func (h *ProgressHandler) Activity(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Activity())
}

func (h *ProgressHandler) History(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.History())
}

func (h *ProgressHandler) ListTasks(c *gin.Context) {
	c.JSON(http.StatusOK, h.snapshot.Tasks())
}

func (h *ProgressHandler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, h.snapshot.AddTask(req.Title))
}

func (h *ProgressHandler) ToggleTask(c *gin.Context) {
	task, err := h.snapshot.ToggleTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *ProgressHandler) DeleteTask(c *gin.Context) {
	if err := h.snapshot.DeleteTask(c.Param("id")); err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProgressHandler) ListJournal(c *gin.Context) {
	c.JSON(http.StatusOK, h.snapshot.Journal())
}

func (h *ProgressHandler) CreateJournalEntry(c *gin.Context) {
	var req journalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, h.snapshot.AddJournalEntry(req.Title, req.Body, req.FlowID))
}
