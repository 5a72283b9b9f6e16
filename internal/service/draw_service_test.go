package service

import (
	"fmt"
	"testing"

	"confraria/internal/database"
	"confraria/internal/domain"
	"confraria/internal/models"
	"confraria/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Per-test in-memory database to avoid cross-test interference.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newDrawService(db *gorm.DB) *DrawService {
	return NewDrawService(db,
		repository.NewGroupRepository(db),
		repository.NewQuotaRepository(db),
		repository.NewDrawRepository(db),
	)
}

// seedGroup creates a group with the given number of quotas and returns it.
func seedGroup(t *testing.T, db *gorm.DB, totalQuotas int) *models.Group {
	t.Helper()
	g := &models.Group{
		Name:            "Grupo Teste",
		AssetValueCents: 10_000_000,
		MonthlyCents:    250_000,
		TotalQuotas:     totalQuotas,
		AdjustmentType:  domain.AdjustmentNone,
		IsActive:        true,
	}
	require.NoError(t, repository.NewGroupRepository(db).CreateWithQuotas(g))
	return g
}

func contemplateQuota(t *testing.T, db *gorm.DB, groupID uint, number int) {
	t.Helper()
	res := db.Model(&models.Quota{}).
		Where("group_id = ? AND quota_number = ?", groupID, number).
		Update("status", domain.QuotaContemplated)
	require.NoError(t, res.Error)
	require.EqualValues(t, 1, res.RowsAffected)
}

func TestDrawExecute(t *testing.T) {
	t.Run("winning quota contemplated, group stays open", func(t *testing.T) {
		db := newTestDB(t)
		svc := newDrawService(db)
		g := seedGroup(t, db, 3)

		member := models.Profile{FullName: "Maria", Phone: "5511900000001", Role: domain.RoleMember}
		require.NoError(t, db.Create(&member).Error)
		require.NoError(t, repository.NewQuotaRepository(db).AssignMember(g.ID, 2, &member.ID))
		contemplateQuota(t, db, g.ID, 3)

		res, err := svc.Execute(g.ID, []int{2, 1}, 1, 1, 99)
		require.NoError(t, err)
		require.Equal(t, 1, res.Draw.WinningNumber)
		require.Equal(t, []int{2, 1}, res.Draw.GetDrawnNumbers())
		require.False(t, res.GroupClosed)
		require.EqualValues(t, 1, res.RemainingQuotas)

		var q models.Quota
		require.NoError(t, db.Where("group_id = ? AND quota_number = ?", g.ID, 1).First(&q).Error)
		require.Equal(t, domain.QuotaContemplated, q.Status)
		require.NotNil(t, q.ContemplatedAt)

		var group models.Group
		require.NoError(t, db.First(&group, g.ID).Error)
		require.True(t, group.IsActive)
	})

	t.Run("last quota closes the group", func(t *testing.T) {
		db := newTestDB(t)
		svc := newDrawService(db)
		g := seedGroup(t, db, 3)
		contemplateQuota(t, db, g.ID, 1)
		contemplateQuota(t, db, g.ID, 3)

		res, err := svc.Execute(g.ID, []int{2}, 2, 1, 99)
		require.NoError(t, err)
		require.True(t, res.GroupClosed)
		require.EqualValues(t, 0, res.RemainingQuotas)

		var group models.Group
		require.NoError(t, db.First(&group, g.ID).Error)
		require.False(t, group.IsActive)
	})

	t.Run("contemplated quota is rejected with conflict", func(t *testing.T) {
		db := newTestDB(t)
		svc := newDrawService(db)
		g := seedGroup(t, db, 3)
		contemplateQuota(t, db, g.ID, 2)

		_, err := svc.Execute(g.ID, []int{3, 7, 9, 2}, 2, 4, 99)
		require.ErrorIs(t, err, ErrQuotaContemplated)

		// No draw row may exist after the rejected call.
		var count int64
		require.NoError(t, db.Model(&models.Draw{}).Where("group_id = ?", g.ID).Count(&count).Error)
		require.Zero(t, count)
	})

	t.Run("unknown quota number is invalid input", func(t *testing.T) {
		db := newTestDB(t)
		svc := newDrawService(db)
		g := seedGroup(t, db, 3)

		_, err := svc.Execute(g.ID, []int{42}, 42, 1, 99)
		require.ErrorIs(t, err, ErrQuotaUnknown)
	})

	t.Run("input preconditions", func(t *testing.T) {
		db := newTestDB(t)
		svc := newDrawService(db)
		g := seedGroup(t, db, 3)

		_, err := svc.Execute(g.ID, nil, 1, 1, 99)
		require.ErrorIs(t, err, ErrNoDrawnNumbers)

		_, err = svc.Execute(g.ID, []int{1}, 1, 0, 99)
		require.ErrorIs(t, err, ErrBadWinnerPosition)

		_, err = svc.Execute(9999, []int{1}, 1, 1, 99)
		require.ErrorIs(t, err, ErrGroupNotFound)
	})

	t.Run("at most one active draw per group", func(t *testing.T) {
		db := newTestDB(t)
		svc := newDrawService(db)
		g := seedGroup(t, db, 3)

		_, err := svc.Execute(g.ID, []int{1}, 1, 1, 99)
		require.NoError(t, err)
		_, err = svc.Execute(g.ID, []int{2}, 2, 1, 99)
		require.NoError(t, err)

		var active int64
		require.NoError(t, db.Model(&models.Draw{}).Where("group_id = ?", g.ID).Count(&active).Error)
		require.EqualValues(t, 1, active)

		var total int64
		require.NoError(t, db.Unscoped().Model(&models.Draw{}).Where("group_id = ?", g.ID).Count(&total).Error)
		require.EqualValues(t, 2, total)
	})

	t.Run("quota status never reverts across execute and reset", func(t *testing.T) {
		db := newTestDB(t)
		svc := newDrawService(db)
		g := seedGroup(t, db, 2)

		_, err := svc.Execute(g.ID, []int{1}, 1, 1, 99)
		require.NoError(t, err)
		require.NoError(t, svc.Reset(g.ID))

		var q models.Quota
		require.NoError(t, db.Where("group_id = ? AND quota_number = ?", g.ID, 1).First(&q).Error)
		require.Equal(t, domain.QuotaContemplated, q.Status)
	})
}

func TestDrawReset(t *testing.T) {
	db := newTestDB(t)
	svc := newDrawService(db)
	g := seedGroup(t, db, 2)

	require.ErrorIs(t, svc.Reset(g.ID), ErrNoCurrentDraw)
	require.ErrorIs(t, svc.Reset(9999), ErrGroupNotFound)

	_, err := svc.Execute(g.ID, []int{2}, 2, 1, 99)
	require.NoError(t, err)
	require.NoError(t, svc.Reset(g.ID))

	current, err := repository.NewDrawRepository(db).Current(g.ID)
	require.NoError(t, err)
	require.Nil(t, current)

	// The record survives as soft-deleted audit data.
	var total int64
	require.NoError(t, db.Unscoped().Model(&models.Draw{}).Where("group_id = ?", g.ID).Count(&total).Error)
	require.EqualValues(t, 1, total)
}

func TestDrawPrepare(t *testing.T) {
	db := newTestDB(t)
	svc := newDrawService(db)
	g := seedGroup(t, db, 3)
	contemplateQuota(t, db, g.ID, 3)

	res, err := svc.Prepare(g.ID)
	require.NoError(t, err)
	require.Len(t, res.Eligible, 2)
	require.Nil(t, res.CurrentDraw)

	_, err = svc.Execute(g.ID, []int{1}, 1, 1, 99)
	require.NoError(t, err)

	res, err = svc.Prepare(g.ID)
	require.NoError(t, err)
	require.Len(t, res.Eligible, 1)
	require.NotNil(t, res.CurrentDraw)
	require.Equal(t, 1, res.CurrentDraw.WinningNumber)

	_, err = svc.Prepare(9999)
	require.ErrorIs(t, err, ErrGroupNotFound)
}

func TestDrawSequence(t *testing.T) {
	eligible := []int{1, 2, 3, 4, 5}

	t.Run("respects minimum reveal count", func(t *testing.T) {
		drawn, pos, err := DrawSequence(eligible, 3)
		require.NoError(t, err)
		require.Len(t, drawn, 3)
		require.Equal(t, 3, pos)
	})

	t.Run("never repeats a number", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			drawn, pos, err := DrawSequence(eligible, 5)
			require.NoError(t, err)
			require.Equal(t, 5, pos)
			seen := make(map[int]bool)
			for _, n := range drawn {
				require.False(t, seen[n], "number %d drawn twice in %v", n, drawn)
				require.Contains(t, eligible, n)
				seen[n] = true
			}
		}
	})

	t.Run("clamps reveal count to the eligible set", func(t *testing.T) {
		drawn, _, err := DrawSequence(eligible, 100)
		require.NoError(t, err)
		require.Len(t, drawn, len(eligible))
	})

	t.Run("empty eligible set fails", func(t *testing.T) {
		_, _, err := DrawSequence(nil, 1)
		require.ErrorIs(t, err, ErrNoEligibleQuotas)
	})
}

func TestDrawRun(t *testing.T) {
	db := newTestDB(t)
	svc := newDrawService(db)
	g := seedGroup(t, db, 4)

	res, drawn, err := svc.Run(g.ID, 2, 99)
	require.NoError(t, err)
	require.Len(t, drawn, 2)
	require.Equal(t, drawn[len(drawn)-1], res.Draw.WinningNumber)
	require.False(t, res.GroupClosed)
	require.EqualValues(t, 3, res.RemainingQuotas)
}
