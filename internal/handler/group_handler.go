package handler

import (
	"errors"
	"net/http"
	"strconv"

	"confraria/internal/models"
	"confraria/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type GroupHandler struct {
	groupRepo *repository.GroupRepository
	quotaRepo *repository.QuotaRepository
}

func NewGroupHandler(groupRepo *repository.GroupRepository, quotaRepo *repository.QuotaRepository) *GroupHandler {
	return &GroupHandler{groupRepo: groupRepo, quotaRepo: quotaRepo}
}

type CreateGroupRequest struct {
	Name            string  `json:"name" binding:"required"`
	AssetValueCents int64   `json:"asset_value_cents" binding:"required,gt=0"`
	MonthlyCents    int64   `json:"monthly_cents" binding:"required,gt=0"`
	TotalQuotas     int     `json:"total_quotas" binding:"required,gt=0"`
	AdjustmentType  string  `json:"adjustment_type" binding:"omitempty,oneof=NONE FIXED PERCENT"`
	AdjustmentValue float64 `json:"adjustment_value"`
}

type AssignQuotaRequest struct {
	MemberID *uint `json:"member_id"` // null unassigns
}

// Create inserts the group with its quota slots numbered 1..total_quotas.
func (h *GroupHandler) Create(c *gin.Context) {
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.AdjustmentType == "" {
		req.AdjustmentType = "NONE"
	}
	g := models.Group{
		Name:            req.Name,
		AssetValueCents: req.AssetValueCents,
		MonthlyCents:    req.MonthlyCents,
		TotalQuotas:     req.TotalQuotas,
		AdjustmentType:  req.AdjustmentType,
		AdjustmentValue: req.AdjustmentValue,
		IsActive:        true,
	}
	if err := h.groupRepo.CreateWithQuotas(&g); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "group creation failed"})
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groupRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func (h *GroupHandler) Get(c *gin.Context) {
	groupID, ok := groupIDParam(c)
	if !ok {
		return
	}
	g, err := h.groupRepo.GetWithQuotas(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, g)
}

// AssignQuota sets or clears the member owning a quota slot.
func (h *GroupHandler) AssignQuota(c *gin.Context) {
	groupID, ok := groupIDParam(c)
	if !ok {
		return
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quota number"})
		return
	}
	var req AssignQuotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.quotaRepo.AssignMember(groupID, number, req.MemberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "quota not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "assignment failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assigned": true})
}
