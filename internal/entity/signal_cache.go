package entity

import (
	"time"

	"gorm.io/datatypes"
)

// SignalCache is the single cached analysis row, keyed by a fixed id.
type SignalCache struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	Data      datatypes.JSON `gorm:"type:jsonb" json:"data"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:false" json:"updated_at"`
}

func (SignalCache) TableName() string {
	return "signal_cache"
}
