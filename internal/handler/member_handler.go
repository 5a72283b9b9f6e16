package handler

import (
	"errors"
	"net/http"
	"strconv"

	"confraria/internal/domain"
	"confraria/internal/models"
	"confraria/internal/repository"
	"confraria/pkg/phone"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MemberHandler struct {
	profileRepo *repository.ProfileRepository
}

func NewMemberHandler(profileRepo *repository.ProfileRepository) *MemberHandler {
	return &MemberHandler{profileRepo: profileRepo}
}

type CreateMemberRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
}

// Create registers a member profile; credentials come later through a
// pre-registration.
func (h *MemberHandler) Create(c *gin.Context) {
	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	canonical := phone.Canonical(req.Phone)
	if !phone.Valid(canonical) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number"})
		return
	}
	if _, err := h.profileRepo.GetByPhone(canonical); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "phone already registered"})
		return
	}
	p := models.Profile{FullName: req.FullName, Phone: canonical, Role: domain.RoleMember}
	if err := h.profileRepo.Create(&p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "member creation failed"})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *MemberHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	p, err := h.profileRepo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, p)
}
