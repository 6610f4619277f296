package model

import (
	"time"
)

// UserPoint 用户积分余额表
type UserPoint struct {
	UserID    int64     `gorm:"primaryKey;autoIncrement:false"`
	Balance   int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time
}

// TableName 指定表名
func (UserPoint) TableName() string {
	return "user_point"
}
