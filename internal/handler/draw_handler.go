package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"confraria/internal/middleware"
	"confraria/internal/repository"
	"confraria/internal/service"
	"confraria/internal/ws"

	"github.com/gin-gonic/gin"
)

type DrawHandler struct {
	svc       *service.DrawService
	hub       *ws.DrawHub
	auditRepo *repository.AuditLogRepository
}

func NewDrawHandler(svc *service.DrawService, hub *ws.DrawHub, auditRepo *repository.AuditLogRepository) *DrawHandler {
	return &DrawHandler{svc: svc, hub: hub, auditRepo: auditRepo}
}

type ExecuteDrawRequest struct {
	DrawnNumbers   []int `json:"drawn_numbers" binding:"required"`
	WinningNumber  int   `json:"winning_number" binding:"required"`
	WinnerPosition int   `json:"winner_position" binding:"required"`
}

type RunDrawRequest struct {
	MinReveals int `json:"min_reveals"`
}

// Prepare returns the eligible quotas and the current active draw for the
// group, for the client-side animated reveal.
func (h *DrawHandler) Prepare(c *gin.Context) {
	groupID, ok := groupIDParam(c)
	if !ok {
		return
	}
	res, err := h.svc.Prepare(groupID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Execute commits a client-run draw after server-side re-validation.
func (h *DrawHandler) Execute(c *gin.Context) {
	groupID, ok := groupIDParam(c)
	if !ok {
		return
	}
	var req ExecuteDrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	adminID := middleware.GetProfileID(c)
	res, err := h.svc.Execute(groupID, req.DrawnNumbers, req.WinningNumber, req.WinnerPosition, adminID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.broadcast(groupID, req.DrawnNumbers, res)
	h.auditRepo.Record(adminID, "draw_execute", c.ClientIP(), map[string]interface{}{
		"group_id":       groupID,
		"winning_number": req.WinningNumber,
		"group_closed":   res.GroupClosed,
	})
	c.JSON(http.StatusOK, gin.H{
		"draw":             res.Draw,
		"group_closed":     res.GroupClosed,
		"remaining_quotas": res.RemainingQuotas,
	})
}

// Run performs the whole draw server-side, including the reveal sequence.
func (h *DrawHandler) Run(c *gin.Context) {
	groupID, ok := groupIDParam(c)
	if !ok {
		return
	}
	var req RunDrawRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	adminID := middleware.GetProfileID(c)
	res, drawn, err := h.svc.Run(groupID, req.MinReveals, adminID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.broadcast(groupID, drawn, res)
	h.auditRepo.Record(adminID, "draw_run", c.ClientIP(), map[string]interface{}{
		"group_id":       groupID,
		"winning_number": res.Draw.WinningNumber,
		"group_closed":   res.GroupClosed,
	})
	c.JSON(http.StatusOK, gin.H{
		"draw":             res.Draw,
		"drawn_numbers":    drawn,
		"group_closed":     res.GroupClosed,
		"remaining_quotas": res.RemainingQuotas,
	})
}

// Reset soft-deletes the group's current draw. The contemplated quota stays
// contemplated; this only hides the draw record.
func (h *DrawHandler) Reset(c *gin.Context) {
	groupID, ok := groupIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.Reset(groupID); err != nil {
		h.respondError(c, err)
		return
	}
	adminID := middleware.GetProfileID(c)
	h.hub.BroadcastToGroup(groupID, ws.ResetEvent{Type: "reset", GroupID: groupID})
	h.auditRepo.Record(adminID, "draw_reset", c.ClientIP(), map[string]interface{}{"group_id": groupID})
	c.JSON(http.StatusOK, gin.H{"reset": true})
}

func (h *DrawHandler) broadcast(groupID uint, drawn []int, res *service.ExecuteResult) {
	for i, n := range drawn {
		h.hub.BroadcastToGroup(groupID, ws.RevealEvent{Type: "reveal", GroupID: groupID, Number: n, Position: i + 1})
	}
	h.hub.BroadcastToGroup(groupID, ws.ResultEvent{
		Type:            "result",
		GroupID:         groupID,
		WinningNumber:   res.Draw.WinningNumber,
		WinnerPosition:  res.Draw.WinnerPosition,
		GroupClosed:     res.GroupClosed,
		RemainingQuotas: res.RemainingQuotas,
	})
}

func (h *DrawHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoDrawnNumbers),
		errors.Is(err, service.ErrBadWinnerPosition),
		errors.Is(err, service.ErrQuotaUnknown):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrQuotaContemplated),
		errors.Is(err, service.ErrNoEligibleQuotas),
		errors.Is(err, service.ErrNoCurrentDraw):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("[draw] handler error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "draw operation failed"})
	}
}

func groupIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("groupId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return 0, false
	}
	return uint(id), true
}
