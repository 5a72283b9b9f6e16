package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"confraria/config"
	"confraria/internal/models"
	"confraria/internal/repository"
	"confraria/pkg/authprovider"
	"confraria/pkg/notify"
	"confraria/pkg/password"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// attemptHashCost is the bcrypt cost for the locally stored temporary-password
// hash (audit record; the provider hashes independently).
const attemptHashCost = 12

// CredentialService manages temporary credentials for pre-registered members.
// Every password-changing operation updates the auth provider BEFORE writing
// any local record: a provider failure leaves zero local side effects, so the
// whole operation is safe to retry.
type CredentialService struct {
	policy      config.PolicyConfig
	profileRepo *repository.ProfileRepository
	attemptRepo *repository.PreRegistrationRepository
	provider    authprovider.Provider
	sender      notify.Sender
}

func NewCredentialService(policy config.PolicyConfig, profileRepo *repository.ProfileRepository, attemptRepo *repository.PreRegistrationRepository, provider authprovider.Provider, sender notify.Sender) *CredentialService {
	return &CredentialService{
		policy:      policy,
		profileRepo: profileRepo,
		attemptRepo: attemptRepo,
		provider:    provider,
		sender:      sender,
	}
}

// CredentialIssue is returned exactly once per successful create/resend/
// regenerate call; the plaintext is never retrievable afterwards.
type CredentialIssue struct {
	Attempt  *models.PreRegistrationAttempt `json:"attempt"`
	Password string                         `json:"password"`
	Message  string                         `json:"message"`
	Sent     bool                           `json:"sent"`
}

// Create issues a new temporary credential for the member and records a fresh
// PreRegistrationAttempt.
func (s *CredentialService) Create(ctx context.Context, memberID, adminID uint, sendMethod, notes string) (*CredentialIssue, error) {
	member, err := s.profileRepo.GetByID(memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	plain, err := password.Generate(s.policy.TempPasswordLength)
	if err != nil {
		return nil, err
	}
	corr := uuid.NewString()

	// Provider first. An orphaned local record whose hash does not match the
	// real credential would lock the member out.
	if err := s.provider.UpdatePassword(ctx, memberID, plain); err != nil {
		log.Printf("[credentials] corr=%s create member=%d provider update failed: %v", corr, memberID, err)
		return nil, fmt.Errorf("%w: %w", ErrAuthProvider, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), attemptHashCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	expiration := now.AddDate(0, 0, s.policy.ExpirationDays)
	attempt := &models.PreRegistrationAttempt{
		MemberID:              memberID,
		CreatedByAdminID:      adminID,
		TemporaryPasswordHash: string(hash),
		PasswordGeneratedAt:   now,
		SendMethod:            sendMethod,
		MaxAccessAttempts:     s.policy.MaxAccessAttempts,
		ExpirationDate:        expiration,
		Notes:                 notes,
	}

	message := renderCredentialMessage(member.FullName, member.Phone, plain, expiration)
	if s.dispatch(ctx, corr, member.Phone, message, sendMethod) {
		attempt.SendCount = 1
		attempt.LastSentAt = &now
	}

	if err := s.attemptRepo.Create(attempt); err != nil {
		// Provider already holds the new password; local bookkeeping is
		// stale. Retrying the whole operation issues a fresh password and
		// heals the divergence.
		log.Printf("[credentials] corr=%s create member=%d local write failed after provider update: %v", corr, memberID, err)
		return nil, err
	}

	if !member.PreRegistered {
		member.PreRegistered = true
		if err := s.profileRepo.Update(member); err != nil {
			log.Printf("[credentials] corr=%s create member=%d flag update: %v", corr, memberID, err)
		}
	}

	log.Printf("[credentials] corr=%s created attempt=%d member=%d admin=%d method=%s", corr, attempt.ID, memberID, adminID, sendMethod)
	return &CredentialIssue{Attempt: attempt, Password: plain, Message: message, Sent: attempt.SendCount > 0}, nil
}

// ResendCredentials issues a new password on an attempt that has not been used
// yet. The original plaintext is never retained, so resending regenerates
// under the hood.
func (s *CredentialService) ResendCredentials(ctx context.Context, attemptID uint, sendMethod string) (*CredentialIssue, error) {
	attempt, err := s.getAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if attempt.Expired(now) {
		return nil, ErrAttemptExpired
	}
	if attempt.Accessed() {
		return nil, ErrAlreadyAccessed
	}
	return s.reissue(ctx, attempt, sendMethod, false)
}

// RegeneratePassword issues a new password on a non-expired attempt regardless
// of first access ("forgot password" flow) and lifts any lockout.
func (s *CredentialService) RegeneratePassword(ctx context.Context, attemptID uint, sendMethod string) (*CredentialIssue, error) {
	attempt, err := s.getAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Expired(time.Now()) {
		return nil, ErrAttemptExpired
	}
	return s.reissue(ctx, attempt, sendMethod, true)
}

func (s *CredentialService) reissue(ctx context.Context, attempt *models.PreRegistrationAttempt, sendMethod string, clearLockout bool) (*CredentialIssue, error) {
	member, err := s.profileRepo.GetByID(attempt.MemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	plain, err := password.Generate(s.policy.TempPasswordLength)
	if err != nil {
		return nil, err
	}
	corr := uuid.NewString()

	if err := s.provider.UpdatePassword(ctx, attempt.MemberID, plain); err != nil {
		log.Printf("[credentials] corr=%s reissue attempt=%d member=%d provider update failed: %v", corr, attempt.ID, attempt.MemberID, err)
		return nil, fmt.Errorf("%w: %w", ErrAuthProvider, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), attemptHashCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	attempt.TemporaryPasswordHash = string(hash)
	attempt.PasswordGeneratedAt = now
	if sendMethod != "" {
		attempt.SendMethod = sendMethod
	}
	if clearLockout {
		attempt.AccessAttempts = 0
		attempt.LockedUntil = nil
	}

	message := renderCredentialMessage(member.FullName, member.Phone, plain, attempt.ExpirationDate)
	sent := s.dispatch(ctx, corr, member.Phone, message, attempt.SendMethod)
	if sent {
		attempt.SendCount++
		attempt.LastSentAt = &now
	}

	if err := s.attemptRepo.Update(attempt); err != nil {
		log.Printf("[credentials] corr=%s reissue attempt=%d member=%d local write failed after provider update: %v", corr, attempt.ID, attempt.MemberID, err)
		return nil, err
	}
	log.Printf("[credentials] corr=%s reissued attempt=%d member=%d method=%s cleared_lockout=%t", corr, attempt.ID, attempt.MemberID, attempt.SendMethod, clearLockout)
	return &CredentialIssue{Attempt: attempt, Password: plain, Message: message, Sent: sent}, nil
}

// MarkFirstAccess records the terminal first-login marker. Idempotent: once
// set, later calls are no-ops and the original IP is preserved.
func (s *CredentialService) MarkFirstAccess(attemptID uint, ip string) error {
	if _, err := s.getAttempt(attemptID); err != nil {
		return err
	}
	wrote, err := s.attemptRepo.MarkFirstAccess(attemptID, ip, time.Now())
	if err != nil {
		return err
	}
	if wrote {
		log.Printf("[credentials] first access attempt=%d ip=%s", attemptID, ip)
	}
	return nil
}

// RecordFailedAttempt increments the failed-login counter; reaching the limit
// locks the attempt for the lockout window. While locked the counter does not
// move. The counter only resets through RegeneratePassword.
func (s *CredentialService) RecordFailedAttempt(attemptID uint) (*models.PreRegistrationAttempt, error) {
	attempt, err := s.getAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if attempt.Locked(now) {
		return attempt, ErrAlreadyLocked
	}
	attempt.AccessAttempts++
	if attempt.AccessAttempts >= attempt.MaxAccessAttempts {
		until := now.Add(s.policy.LockoutWindow)
		attempt.LockedUntil = &until
		log.Printf("[credentials] attempt=%d locked until %s after %d failures", attempt.ID, until.Format(time.RFC3339), attempt.AccessAttempts)
	}
	if err := s.attemptRepo.Update(attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// ActiveAttemptForMember returns the member's authoritative attempt, or nil.
func (s *CredentialService) ActiveAttemptForMember(memberID uint) (*models.PreRegistrationAttempt, error) {
	attempt, err := s.attemptRepo.LatestActiveForMember(memberID, time.Now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return attempt, nil
}

// AttemptsForMember returns the member's full attempt history, newest first.
func (s *CredentialService) AttemptsForMember(memberID uint) ([]models.PreRegistrationAttempt, error) {
	return s.attemptRepo.ListForMember(memberID)
}

func (s *CredentialService) getAttempt(id uint) (*models.PreRegistrationAttempt, error) {
	attempt, err := s.attemptRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}
	return attempt, nil
}

// dispatch sends the rendered message, best-effort. Failures only log.
func (s *CredentialService) dispatch(ctx context.Context, corr, phone, message, channel string) bool {
	if s.sender == nil {
		return false
	}
	msgID, err := s.sender.Send(ctx, phone, message, channel)
	if err != nil {
		log.Printf("[credentials] corr=%s dispatch to %s via %s failed: %v", corr, phone, channel, err)
		return false
	}
	log.Printf("[credentials] corr=%s dispatched message=%s via %s", corr, msgID, channel)
	return true
}

func renderCredentialMessage(fullName, phone, plain string, expiration time.Time) string {
	return fmt.Sprintf(
		"Olá, %s! Seu acesso à Confraria foi criado.\n\nLogin: %s\nSenha temporária: %s\n\nA senha expira em %s. No primeiro acesso você deverá definir uma nova senha.",
		fullName, phone, plain, expiration.Format("02/01/2006"),
	)
}
