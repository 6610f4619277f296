package model

import (
	"time"
)

// PointHistory 积分流水表（只追加）
type PointHistory struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserID    int64     `gorm:"index;not null"`
	Amount    int64     `gorm:"not null"` // 交易后的余额
	Type      string    `gorm:"type:varchar(16);not null"`
	Timestamp time.Time `gorm:"not null"`
}

// TableName 指定表名
func (PointHistory) TableName() string {
	return "point_history"
}
