package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type Draw struct {
	ID             uint  `gorm:"primaryKey" json:"id"`
	GroupID        uint  `gorm:"not null;index" json:"group_id"`
	WinningQuotaID uint  `gorm:"not null" json:"winning_quota_id"`
	WinningNumber  int   `gorm:"not null" json:"winning_number"`
	// DrawnNumbers holds the full reveal sequence as a JSON array; the winner
	// is the element at WinnerPosition (1-based).
	DrawnNumbers   string         `gorm:"type:json" json:"-"`
	WinnerPosition int            `gorm:"not null" json:"winner_position"`
	DrawDate       time.Time      `gorm:"not null" json:"draw_date"`
	ExecutedBy     uint           `gorm:"index" json:"executed_by"`
	CreatedAt      time.Time      `json:"created_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	WinningQuota *Quota `gorm:"foreignKey:WinningQuotaID" json:"winning_quota,omitempty"`
}

func (Draw) TableName() string { return "draws" }

func (d *Draw) SetDrawnNumbers(nums []int) {
	b, _ := json.Marshal(nums)
	d.DrawnNumbers = string(b)
}

func (d *Draw) GetDrawnNumbers() []int {
	var nums []int
	_ = json.Unmarshal([]byte(d.DrawnNumbers), &nums)
	return nums
}

// MarshalJSON inlines the decoded reveal sequence so API consumers never see
// the raw JSON string column.
func (d Draw) MarshalJSON() ([]byte, error) {
	type alias Draw
	return json.Marshal(struct {
		alias
		DrawnNumbers []int `json:"drawn_numbers"`
	}{alias(d), d.GetDrawnNumbers()})
}
