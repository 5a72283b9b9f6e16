package service

import (
	"database/sql"
	"errors"
	"log"
	"math/rand/v2"
	"time"

	"confraria/internal/domain"
	"confraria/internal/models"
	"confraria/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DrawService selects and commits the contemplated quota of a consortium
// group. Execute runs the whole quota/draw/group mutation sequence inside one
// serializable transaction so concurrent draws on the same group cannot leave
// two active draw rows or a stale group-closed flag.
type DrawService struct {
	db        *gorm.DB
	groupRepo *repository.GroupRepository
	quotaRepo *repository.QuotaRepository
	drawRepo  *repository.DrawRepository
}

func NewDrawService(db *gorm.DB, groupRepo *repository.GroupRepository, quotaRepo *repository.QuotaRepository, drawRepo *repository.DrawRepository) *DrawService {
	return &DrawService{db: db, groupRepo: groupRepo, quotaRepo: quotaRepo, drawRepo: drawRepo}
}

type PrepareResult struct {
	Group       *models.Group  `json:"group"`
	Eligible    []models.Quota `json:"eligible"`
	CurrentDraw *models.Draw   `json:"current_draw"`
}

type ExecuteResult struct {
	Draw            *models.Draw `json:"draw"`
	GroupClosed     bool         `json:"group_closed"`
	RemainingQuotas int64        `json:"remaining_quotas"`
}

// Prepare returns the quotas eligible for a draw plus the group's current
// active draw, if any. No side effects.
func (s *DrawService) Prepare(groupID uint) (*PrepareResult, error) {
	group, err := s.groupRepo.GetByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	eligible, err := s.quotaRepo.Eligible(groupID)
	if err != nil {
		return nil, err
	}
	current, err := s.drawRepo.Current(groupID)
	if err != nil {
		return nil, err
	}
	return &PrepareResult{Group: group, Eligible: eligible, CurrentDraw: current}, nil
}

// DrawSequence builds a reveal sequence by picking uniformly at random without
// replacement from eligible until minReveals numbers have been revealed. The
// last revealed number is the winner; the returned position is its 1-based
// index in the sequence.
func DrawSequence(eligible []int, minReveals int) (drawn []int, winnerPosition int, err error) {
	if len(eligible) == 0 {
		return nil, 0, ErrNoEligibleQuotas
	}
	if minReveals < 1 {
		minReveals = 1
	}
	if minReveals > len(eligible) {
		minReveals = len(eligible)
	}
	remaining := make([]int, len(eligible))
	copy(remaining, eligible)
	drawn = make([]int, 0, minReveals)
	for len(drawn) < minReveals {
		i := rand.IntN(len(remaining))
		drawn = append(drawn, remaining[i])
		remaining[i] = remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
	}
	return drawn, len(drawn), nil
}

// Execute commits a draw: the quota identified by (groupID, winningNumber)
// becomes contemplated, any prior active draw is soft-deleted, and the group
// auto-closes when no active quota remains. All mutations happen in a single
// serializable transaction.
func (s *DrawService) Execute(groupID uint, drawnNumbers []int, winningNumber, winnerPosition int, executedBy uint) (*ExecuteResult, error) {
	if len(drawnNumbers) < 1 {
		return nil, ErrNoDrawnNumbers
	}
	if winnerPosition < 1 {
		return nil, ErrBadWinnerPosition
	}
	if _, err := s.groupRepo.GetByID(groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	var result ExecuteResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		// Re-validate the winning quota inside the transaction, locked where
		// the dialect supports it, so two concurrent draws cannot both pass
		// the active check.
		q := tx.Where("group_id = ? AND quota_number = ?", groupID, winningNumber)
		if tx.Dialector.Name() == "mysql" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var quota models.Quota
		if err := q.First(&quota).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuotaUnknown
			}
			return err
		}
		if quota.Status == domain.QuotaContemplated {
			return ErrQuotaContemplated
		}

		// At most one active draw per group: retire the previous one first.
		if err := tx.Where("group_id = ?", groupID).Delete(&models.Draw{}).Error; err != nil {
			return err
		}

		draw := models.Draw{
			GroupID:        groupID,
			WinningQuotaID: quota.ID,
			WinningNumber:  winningNumber,
			WinnerPosition: winnerPosition,
			DrawDate:       now,
			ExecutedBy:     executedBy,
		}
		draw.SetDrawnNumbers(drawnNumbers)
		if err := tx.Create(&draw).Error; err != nil {
			return err
		}

		if err := tx.Model(&quota).Updates(map[string]interface{}{
			"status":          domain.QuotaContemplated,
			"contemplated_at": now,
		}).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&models.Quota{}).
			Where("group_id = ? AND status = ?", groupID, domain.QuotaActive).
			Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			if err := tx.Model(&models.Group{}).Where("id = ?", groupID).
				Update("is_active", false).Error; err != nil {
				return err
			}
		}

		result = ExecuteResult{Draw: &draw, GroupClosed: remaining == 0, RemainingQuotas: remaining}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	log.Printf("[draw] group=%d winner=%d position=%d closed=%t remaining=%d",
		groupID, winningNumber, winnerPosition, result.GroupClosed, result.RemainingQuotas)
	return &result, nil
}

// Run performs a fully server-side draw: it builds the reveal sequence over
// the group's eligible quota numbers and commits it through Execute.
func (s *DrawService) Run(groupID uint, minReveals int, executedBy uint) (*ExecuteResult, []int, error) {
	if _, err := s.groupRepo.GetByID(groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrGroupNotFound
		}
		return nil, nil, err
	}
	eligible, err := s.quotaRepo.Eligible(groupID)
	if err != nil {
		return nil, nil, err
	}
	numbers := make([]int, 0, len(eligible))
	for _, q := range eligible {
		numbers = append(numbers, q.QuotaNumber)
	}
	drawn, pos, err := DrawSequence(numbers, minReveals)
	if err != nil {
		return nil, nil, err
	}
	res, err := s.Execute(groupID, drawn, drawn[pos-1], pos, executedBy)
	if err != nil {
		return nil, nil, err
	}
	return res, drawn, nil
}

// Reset soft-deletes the group's current active draw. It deliberately does
// not revert the contemplated quota or reopen the group: quota status is
// monotonic and only moves forward through committed draws.
func (s *DrawService) Reset(groupID uint) error {
	if _, err := s.groupRepo.GetByID(groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return err
	}
	current, err := s.drawRepo.Current(groupID)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrNoCurrentDraw
	}
	return s.drawRepo.SoftDeleteCurrent(groupID)
}
