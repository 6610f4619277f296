package data

import (
	"context"
	"time"

	"point-service/internal/biz"
	"point-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// pointHistoryRepo 积分流水数据访问（mysql/sqlite）
type pointHistoryRepo struct {
	db  *gorm.DB
	log *log.Helper
}

// newPointHistoryRepo 创建流水 repo
func newPointHistoryRepo(db *gorm.DB, logger log.Logger) *pointHistoryRepo {
	return &pointHistoryRepo{
		db:  db,
		log: log.NewHelper(logger),
	}
}

// Append 追加流水，ID 由数据库自增分配
func (r *pointHistoryRepo) Append(ctx context.Context, userID int64, amount int64, txType biz.TransactionType, timestamp time.Time) (*biz.PointHistory, error) {
	m := model.PointHistory{
		UserID:    userID,
		Amount:    amount,
		Type:      string(txType),
		Timestamp: timestamp,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		r.log.WithContext(ctx).Errorf("Append history failed: user_id=%d, type=%s, error=%v", userID, txType, err)
		return nil, err
	}
	return toBizPointHistory(&m), nil
}

// ReadAll 按插入顺序返回用户流水
func (r *pointHistoryRepo) ReadAll(ctx context.Context, userID int64) ([]*biz.PointHistory, error) {
	var models []model.PointHistory
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&models).Error; err != nil {
		r.log.WithContext(ctx).Errorf("ReadAll history failed: user_id=%d, error=%v", userID, err)
		return nil, err
	}

	histories := make([]*biz.PointHistory, 0, len(models))
	for i := range models {
		histories = append(histories, toBizPointHistory(&models[i]))
	}
	return histories, nil
}

func toBizPointHistory(m *model.PointHistory) *biz.PointHistory {
	return &biz.PointHistory{
		ID:        m.ID,
		UserID:    m.UserID,
		Amount:    m.Amount,
		Type:      biz.TransactionType(m.Type),
		Timestamp: m.Timestamp,
	}
}
