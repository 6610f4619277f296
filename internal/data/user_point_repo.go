package data

import (
	"context"
	"errors"
	"time"

	"point-service/internal/biz"
	"point-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userPointRepo 余额表数据访问（mysql/sqlite）
type userPointRepo struct {
	db  *gorm.DB
	log *log.Helper
}

// newUserPointRepo 创建余额 repo
func newUserPointRepo(db *gorm.DB, logger log.Logger) *userPointRepo {
	return &userPointRepo{
		db:  db,
		log: log.NewHelper(logger),
	}
}

// ReadBalance 获取用户余额，不存在时返回 nil
func (r *userPointRepo) ReadBalance(ctx context.Context, userID int64) (*biz.UserPoint, error) {
	var m model.UserPoint
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.WithContext(ctx).Errorf("ReadBalance failed: user_id=%d, error=%v", userID, err)
		return nil, err
	}
	return toBizUserPoint(&m), nil
}

// WriteBalance 写入余额（不存在则插入）
func (r *userPointRepo) WriteBalance(ctx context.Context, userID int64, balance int64) (*biz.UserPoint, error) {
	m := model.UserPoint{
		UserID:    userID,
		Balance:   balance,
		UpdatedAt: time.Now().Truncate(time.Microsecond),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"balance", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		r.log.WithContext(ctx).Errorf("WriteBalance failed: user_id=%d, balance=%d, error=%v", userID, balance, err)
		return nil, err
	}
	return toBizUserPoint(&m), nil
}

// ListUserIDs 列出所有用户ID
func (r *userPointRepo) ListUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&model.UserPoint{}).Order("user_id").Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func toBizUserPoint(m *model.UserPoint) *biz.UserPoint {
	return &biz.UserPoint{
		UserID:    m.UserID,
		Balance:   m.Balance,
		UpdatedAt: m.UpdatedAt,
	}
}
