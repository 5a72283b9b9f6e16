package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"confraria/config"
	"confraria/internal/auth"
	"confraria/internal/models"
	"confraria/internal/repository"
	"confraria/internal/service"
	"confraria/pkg/authprovider"
	"confraria/pkg/phone"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	cfg         *config.Config
	provider    authprovider.Provider
	profileRepo *repository.ProfileRepository
	credSvc     *service.CredentialService
	auditRepo   *repository.AuditLogRepository
}

func NewAuthHandler(cfg *config.Config, provider authprovider.Provider, profileRepo *repository.ProfileRepository, credSvc *service.CredentialService, auditRepo *repository.AuditLogRepository) *AuthHandler {
	return &AuthHandler{cfg: cfg, provider: provider, profileRepo: profileRepo, credSvc: credSvc, auditRepo: auditRepo}
}

type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Login verifies credentials with the auth provider. A successful login by a
// pre-registered member records the first access; a failed one feeds the
// lockout counter.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	canonical := phone.Canonical(req.Phone)

	profile, _ := h.profileRepo.GetByPhone(canonical)
	var attempt *models.PreRegistrationAttempt
	if profile != nil && profile.PreRegistered {
		attempt, _ = h.credSvc.ActiveAttemptForMember(profile.ID)
	}
	if attempt != nil && !attempt.Accessed() && attempt.Locked(time.Now()) {
		c.JSON(http.StatusConflict, gin.H{"error": "locked", "locked_until": attempt.LockedUntil})
		return
	}

	profileID, err := h.provider.SignIn(c.Request.Context(), canonical, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authprovider.ErrInvalidCredentials):
			h.recordFailure(c, attempt)
		case errors.Is(err, authprovider.ErrTimeout):
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "authentication service timed out"})
		default:
			log.Printf("[auth] sign-in via provider failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "authentication service unavailable"})
		}
		return
	}

	if profile == nil {
		profile, err = h.profileRepo.GetByID(profileID)
		if err != nil {
			log.Printf("[auth] provider knows profile %d but no local row: %v", profileID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}
	}

	firstAccess := false
	if attempt != nil && !attempt.Accessed() {
		if err := h.credSvc.MarkFirstAccess(attempt.ID, c.ClientIP()); err != nil {
			log.Printf("[auth] mark first access attempt=%d: %v", attempt.ID, err)
		} else {
			firstAccess = true
		}
	}

	access, err := auth.GenerateAccessToken(&h.cfg.JWT, profile.ID, profile.Phone, profile.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	refresh, _ := auth.GenerateRefreshToken(&h.cfg.JWT, profile.ID)
	h.auditRepo.Record(profile.ID, "login", c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{
		"profile":       profile,
		"access_token":  access,
		"refresh_token": refresh,
		"first_access":  firstAccess,
	})
}

func (h *AuthHandler) recordFailure(c *gin.Context, attempt *models.PreRegistrationAttempt) {
	if attempt == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid phone or password"})
		return
	}
	updated, err := h.credSvc.RecordFailedAttempt(attempt.ID)
	if errors.Is(err, service.ErrAlreadyLocked) {
		c.JSON(http.StatusConflict, gin.H{"error": "locked", "locked_until": updated.LockedUntil})
		return
	}
	if err != nil {
		log.Printf("[auth] record failed attempt=%d: %v", attempt.ID, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid phone or password"})
		return
	}
	resp := gin.H{"error": "invalid phone or password", "attempts": updated.AccessAttempts}
	if updated.LockedUntil != nil {
		resp["locked_until"] = updated.LockedUntil
	}
	c.JSON(http.StatusUnauthorized, resp)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	profileID, err := auth.ParseRefreshToken(&h.cfg.JWT, req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}
	profile, err := h.profileRepo.GetByID(profileID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}
	access, _ := auth.GenerateAccessToken(&h.cfg.JWT, profile.ID, profile.Phone, profile.Role)
	refresh, _ := auth.GenerateRefreshToken(&h.cfg.JWT, profile.ID)
	c.JSON(http.StatusOK, gin.H{"access_token": access, "refresh_token": refresh})
}
