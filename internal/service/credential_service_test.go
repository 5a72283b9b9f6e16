package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"confraria/config"
	"confraria/internal/domain"
	"confraria/internal/models"
	"confraria/internal/repository"
	"confraria/pkg/authprovider"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// recordingSender captures dispatched messages instead of delivering them.
type recordingSender struct {
	sent []string
	fail bool
}

func (s *recordingSender) Send(ctx context.Context, phone, message, channel string) (string, error) {
	if s.fail {
		return "", errors.New("gateway down")
	}
	s.sent = append(s.sent, message)
	return "msg-1", nil
}

// failingProvider rejects every password update.
type failingProvider struct{}

func (failingProvider) UpdatePassword(ctx context.Context, profileID uint, plaintext string) error {
	return authprovider.ErrUnavailable
}

func (failingProvider) SignIn(ctx context.Context, phone, plaintext string) (uint, error) {
	return 0, authprovider.ErrUnavailable
}

func testPolicy() config.PolicyConfig {
	return config.PolicyConfig{
		MaxAccessAttempts:  5,
		LockoutWindow:      15 * time.Minute,
		ExpirationDays:     30,
		TempPasswordLength: 12,
		MinReveals:         1,
		PreRegPerHour:      10,
	}
}

func newCredentialService(db *gorm.DB, sender *recordingSender) *CredentialService {
	return NewCredentialService(
		testPolicy(),
		repository.NewProfileRepository(db),
		repository.NewPreRegistrationRepository(db),
		authprovider.NewGormProvider(db),
		sender,
	)
}

func seedMember(t *testing.T, db *gorm.DB) *models.Profile {
	t.Helper()
	m := &models.Profile{FullName: "João Silva", Phone: "5511912345678", Role: domain.RoleMember}
	require.NoError(t, db.Create(m).Error)
	return m
}

func TestCredentialCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("issues password once and stores only the hash", func(t *testing.T) {
		db := newTestDB(t)
		sender := &recordingSender{}
		svc := newCredentialService(db, sender)
		m := seedMember(t, db)

		issue, err := svc.Create(ctx, m.ID, 1, domain.SendMethodWhatsApp, "indicação do presidente")
		require.NoError(t, err)
		require.Len(t, issue.Password, 12)
		require.NotEqual(t, issue.Password, issue.Attempt.TemporaryPasswordHash)
		require.NoError(t, bcrypt.CompareHashAndPassword(
			[]byte(issue.Attempt.TemporaryPasswordHash), []byte(issue.Password)))
		require.Contains(t, issue.Message, issue.Password)
		require.True(t, issue.Sent)
		require.Equal(t, 1, issue.Attempt.SendCount)
		require.Equal(t, 5, issue.Attempt.MaxAccessAttempts)
		require.Nil(t, issue.Attempt.FirstAccessedAt)
		require.Nil(t, issue.Attempt.LockedUntil)
		require.WithinDuration(t, time.Now().AddDate(0, 0, 30), issue.Attempt.ExpirationDate, time.Minute)

		// The provider accepted the same plaintext.
		_, err = authprovider.NewGormProvider(db).SignIn(ctx, m.Phone, issue.Password)
		require.NoError(t, err)

		// Member flagged as pre-registered.
		var p models.Profile
		require.NoError(t, db.First(&p, m.ID).Error)
		require.True(t, p.PreRegistered)
	})

	t.Run("provider failure leaves no local record", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewCredentialService(testPolicy(),
			repository.NewProfileRepository(db),
			repository.NewPreRegistrationRepository(db),
			failingProvider{}, &recordingSender{})
		m := seedMember(t, db)

		_, err := svc.Create(ctx, m.ID, 1, domain.SendMethodSMS, "")
		require.ErrorIs(t, err, ErrAuthProvider)

		var count int64
		require.NoError(t, db.Model(&models.PreRegistrationAttempt{}).Count(&count).Error)
		require.Zero(t, count)
	})

	t.Run("unknown member", func(t *testing.T) {
		db := newTestDB(t)
		svc := newCredentialService(db, &recordingSender{})
		_, err := svc.Create(ctx, 9999, 1, domain.SendMethodSMS, "")
		require.ErrorIs(t, err, ErrMemberNotFound)
	})

	t.Run("send failure yields send_count zero", func(t *testing.T) {
		db := newTestDB(t)
		sender := &recordingSender{fail: true}
		svc := newCredentialService(db, sender)
		m := seedMember(t, db)

		issue, err := svc.Create(ctx, m.ID, 1, domain.SendMethodWhatsApp, "")
		require.NoError(t, err)
		require.False(t, issue.Sent)
		require.Equal(t, 0, issue.Attempt.SendCount)
		require.Nil(t, issue.Attempt.LastSentAt)
	})
}

func TestCredentialResend(t *testing.T) {
	ctx := context.Background()

	t.Run("resend before first login issues a new password", func(t *testing.T) {
		db := newTestDB(t)
		sender := &recordingSender{}
		svc := newCredentialService(db, sender)
		m := seedMember(t, db)

		created, err := svc.Create(ctx, m.ID, 1, domain.SendMethodWhatsApp, "")
		require.NoError(t, err)

		resent, err := svc.ResendCredentials(ctx, created.Attempt.ID, "")
		require.NoError(t, err)
		require.NotEqual(t, created.Password, resent.Password)
		require.Equal(t, 2, resent.Attempt.SendCount)
		require.Nil(t, resent.Attempt.FirstAccessedAt)
		require.Len(t, sender.sent, 2)

		// Only the latest password works at the provider.
		provider := authprovider.NewGormProvider(db)
		_, err = provider.SignIn(ctx, m.Phone, created.Password)
		require.ErrorIs(t, err, authprovider.ErrInvalidCredentials)
		_, err = provider.SignIn(ctx, m.Phone, resent.Password)
		require.NoError(t, err)
	})

	t.Run("blocked after first access", func(t *testing.T) {
		db := newTestDB(t)
		svc := newCredentialService(db, &recordingSender{})
		m := seedMember(t, db)

		created, err := svc.Create(ctx, m.ID, 1, domain.SendMethodWhatsApp, "")
		require.NoError(t, err)
		require.NoError(t, svc.MarkFirstAccess(created.Attempt.ID, "10.0.0.1"))

		_, err = svc.ResendCredentials(ctx, created.Attempt.ID, "")
		require.ErrorIs(t, err, ErrAlreadyAccessed)
	})

	t.Run("expiration wins over any other state", func(t *testing.T) {
		db := newTestDB(t)
		svc := newCredentialService(db, &recordingSender{})
		m := seedMember(t, db)

		locked := time.Now().Add(10 * time.Minute)
		attempt := models.PreRegistrationAttempt{
			MemberID:              m.ID,
			CreatedByAdminID:      1,
			TemporaryPasswordHash: "x",
			PasswordGeneratedAt:   time.Now().Add(-40 * 24 * time.Hour),
			SendMethod:            domain.SendMethodSMS,
			MaxAccessAttempts:     5,
			AccessAttempts:        4,
			LockedUntil:           &locked,
			ExpirationDate:        time.Now().Add(-time.Hour),
		}
		require.NoError(t, db.Create(&attempt).Error)

		_, err := svc.ResendCredentials(ctx, attempt.ID, "")
		require.ErrorIs(t, err, ErrAttemptExpired)
		_, err = svc.RegeneratePassword(ctx, attempt.ID, "")
		require.ErrorIs(t, err, ErrAttemptExpired)
	})
}

func TestCredentialRegenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("allowed after first access and lifts lockout", func(t *testing.T) {
		db := newTestDB(t)
		svc := newCredentialService(db, &recordingSender{})
		m := seedMember(t, db)

		created, err := svc.Create(ctx, m.ID, 1, domain.SendMethodWhatsApp, "")
		require.NoError(t, err)
		require.NoError(t, svc.MarkFirstAccess(created.Attempt.ID, "10.0.0.1"))

		for i := 0; i < 5; i++ {
			_, err = svc.RecordFailedAttempt(created.Attempt.ID)
			require.NoError(t, err)
		}

		regen, err := svc.RegeneratePassword(ctx, created.Attempt.ID, domain.SendMethodSMS)
		require.NoError(t, err)
		require.Equal(t, 0, regen.Attempt.AccessAttempts)
		require.Nil(t, regen.Attempt.LockedUntil)
		require.Equal(t, domain.SendMethodSMS, regen.Attempt.SendMethod)
		require.NotNil(t, regen.Attempt.FirstAccessedAt) // first access marker untouched
	})
}

func TestMarkFirstAccess(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newCredentialService(db, &recordingSender{})
	m := seedMember(t, db)

	created, err := svc.Create(ctx, m.ID, 1, domain.SendMethodWhatsApp, "")
	require.NoError(t, err)

	// A second call with a different IP is a no-op.
	require.NoError(t, svc.MarkFirstAccess(created.Attempt.ID, "10.0.0.1"))
	require.NoError(t, svc.MarkFirstAccess(created.Attempt.ID, "10.0.0.2"))

	var attempt models.PreRegistrationAttempt
	require.NoError(t, db.First(&attempt, created.Attempt.ID).Error)
	require.NotNil(t, attempt.FirstAccessedAt)
	require.Equal(t, "10.0.0.1", attempt.FirstAccessFromIP)

	require.ErrorIs(t, svc.MarkFirstAccess(9999, "10.0.0.1"), ErrAttemptNotFound)
}

func TestRecordFailedAttempt(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newCredentialService(db, &recordingSender{})
	m := seedMember(t, db)

	created, err := svc.Create(ctx, m.ID, 1, domain.SendMethodWhatsApp, "")
	require.NoError(t, err)

	// The fifth failure locks; further calls report the lock and do not
	// increment the counter.
	var last *models.PreRegistrationAttempt
	for i := 1; i <= 5; i++ {
		last, err = svc.RecordFailedAttempt(created.Attempt.ID)
		require.NoError(t, err)
		require.Equal(t, i, last.AccessAttempts)
		if i < 5 {
			require.Nil(t, last.LockedUntil)
		}
	}
	require.NotNil(t, last.LockedUntil)
	require.True(t, last.LockedUntil.After(time.Now()))

	locked, err := svc.RecordFailedAttempt(created.Attempt.ID)
	require.ErrorIs(t, err, ErrAlreadyLocked)
	require.Equal(t, 5, locked.AccessAttempts)
}

func TestActiveAttemptForMember(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newCredentialService(db, &recordingSender{})
	m := seedMember(t, db)

	attempt, err := svc.ActiveAttemptForMember(m.ID)
	require.NoError(t, err)
	require.Nil(t, attempt)

	first, err := svc.Create(ctx, m.ID, 1, domain.SendMethodWhatsApp, "")
	require.NoError(t, err)
	second, err := svc.Create(ctx, m.ID, 1, domain.SendMethodSMS, "")
	require.NoError(t, err)

	// The newest non-expired attempt is authoritative; history is preserved.
	attempt, err = svc.ActiveAttemptForMember(m.ID)
	require.NoError(t, err)
	require.Equal(t, second.Attempt.ID, attempt.ID)

	history, err := svc.AttemptsForMember(m.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, second.Attempt.ID, history[0].ID)
	require.Equal(t, first.Attempt.ID, history[1].ID)
}
