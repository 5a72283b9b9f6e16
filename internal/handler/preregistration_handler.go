package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"confraria/internal/middleware"
	"confraria/internal/repository"
	"confraria/internal/service"
	"confraria/pkg/authprovider"

	"github.com/gin-gonic/gin"
)

type PreRegistrationHandler struct {
	svc       *service.CredentialService
	auditRepo *repository.AuditLogRepository
}

func NewPreRegistrationHandler(svc *service.CredentialService, auditRepo *repository.AuditLogRepository) *PreRegistrationHandler {
	return &PreRegistrationHandler{svc: svc, auditRepo: auditRepo}
}

type CreatePreRegistrationRequest struct {
	MemberID   uint   `json:"member_id" binding:"required"`
	SendMethod string `json:"send_method" binding:"required,oneof=whatsapp sms"`
	Notes      string `json:"notes"`
}

type ReissueRequest struct {
	SendMethod string `json:"send_method" binding:"omitempty,oneof=whatsapp sms"`
}

// Create issues a temporary credential for a member. The plaintext password in
// the response is shown exactly once and never retrievable again.
func (h *PreRegistrationHandler) Create(c *gin.Context) {
	var req CreatePreRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	adminID := middleware.GetProfileID(c)
	issue, err := h.svc.Create(c.Request.Context(), req.MemberID, adminID, req.SendMethod, req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.auditRepo.Record(adminID, "prereg_create", c.ClientIP(), map[string]interface{}{
		"member_id":  req.MemberID,
		"attempt_id": issue.Attempt.ID,
	})
	c.JSON(http.StatusCreated, issue)
}

// ResendCredentials regenerates and resends the credential on an attempt that
// has not completed first login.
func (h *PreRegistrationHandler) ResendCredentials(c *gin.Context) {
	h.reissue(c, "prereg_resend", func(attemptID uint, method string) (*service.CredentialIssue, error) {
		return h.svc.ResendCredentials(c.Request.Context(), attemptID, method)
	})
}

// RegeneratePassword issues a fresh credential regardless of first access and
// lifts any lockout.
func (h *PreRegistrationHandler) RegeneratePassword(c *gin.Context) {
	h.reissue(c, "prereg_regenerate", func(attemptID uint, method string) (*service.CredentialIssue, error) {
		return h.svc.RegeneratePassword(c.Request.Context(), attemptID, method)
	})
}

func (h *PreRegistrationHandler) reissue(c *gin.Context, action string, fn func(uint, string) (*service.CredentialIssue, error)) {
	attemptID, ok := idParam(c)
	if !ok {
		return
	}
	var req ReissueRequest
	_ = c.ShouldBindJSON(&req) // body is optional
	issue, err := fn(attemptID, req.SendMethod)
	if err != nil {
		h.respondError(c, err)
		return
	}
	adminID := middleware.GetProfileID(c)
	h.auditRepo.Record(adminID, action, c.ClientIP(), map[string]interface{}{
		"attempt_id": attemptID,
		"member_id":  issue.Attempt.MemberID,
	})
	c.JSON(http.StatusOK, issue)
}

// ListForMember returns the member's attempt history (audit trail; hashes are
// never serialized).
func (h *PreRegistrationHandler) ListForMember(c *gin.Context) {
	memberID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member id"})
		return
	}
	attempts, err := h.svc.AttemptsForMember(uint(memberID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempts": attempts})
}

func (h *PreRegistrationHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMemberNotFound), errors.Is(err, service.ErrAttemptNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyAccessed),
		errors.Is(err, service.ErrAttemptExpired):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, authprovider.ErrTimeout):
		log.Printf("[prereg] %v", err)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "authentication service timed out, safe to retry"})
	case errors.Is(err, service.ErrAuthProvider):
		log.Printf("[prereg] %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "authentication service unavailable, safe to retry"})
	default:
		log.Printf("[prereg] handler error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
