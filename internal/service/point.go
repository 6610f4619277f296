package service

import (
	"context"

	"point-service/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProviderSet is service providers.
var ProviderSet = wire.NewSet(NewPointService)

// PointService 积分 HTTP 服务
type PointService struct {
	uc  *biz.PointUseCase
	log *log.Helper
}

// NewPointService 创建 PointService
func NewPointService(uc *biz.PointUseCase, logger log.Logger) *PointService {
	return &PointService{
		uc:  uc,
		log: log.NewHelper(logger),
	}
}

// GetPoint 查询用户积分
func (s *PointService) GetPoint(ctx context.Context, req *UserPointRequest) (*UserPointReply, error) {
	p, err := s.uc.GetBalance(ctx, req.Id)
	if err != nil {
		return nil, err
	}
	return toUserPointReply(p), nil
}

// GetHistories 查询用户积分流水
func (s *PointService) GetHistories(ctx context.Context, req *UserPointRequest) (*PointHistoriesReply, error) {
	histories, err := s.uc.GetHistory(ctx, req.Id)
	if err != nil {
		return nil, err
	}

	reply := &PointHistoriesReply{
		Histories: make([]*PointHistoryReply, 0, len(histories)),
	}
	for _, h := range histories {
		reply.Histories = append(reply.Histories, &PointHistoryReply{
			Id:           h.ID,
			UserId:       h.UserID,
			Amount:       h.Amount,
			Type:         string(h.Type),
			UpdateMillis: h.Timestamp.UnixMilli(),
		})
	}
	return reply, nil
}

// Charge 充值
func (s *PointService) Charge(ctx context.Context, req *AmountRequest) (*UserPointReply, error) {
	p, err := s.uc.Charge(ctx, req.Id, req.Amount)
	if err != nil {
		s.log.WithContext(ctx).Infof("Charge rejected: user_id=%d, amount=%d, error=%v", req.Id, req.Amount, err)
		return nil, err
	}
	return toUserPointReply(p), nil
}

// Use 使用积分
func (s *PointService) Use(ctx context.Context, req *AmountRequest) (*UserPointReply, error) {
	p, err := s.uc.Spend(ctx, req.Id, req.Amount)
	if err != nil {
		s.log.WithContext(ctx).Infof("Use rejected: user_id=%d, amount=%d, error=%v", req.Id, req.Amount, err)
		return nil, err
	}
	return toUserPointReply(p), nil
}

// Open 开户
func (s *PointService) Open(ctx context.Context, req *UserPointRequest) (*UserPointReply, error) {
	p, err := s.uc.Open(ctx, req.Id)
	if err != nil {
		return nil, err
	}
	return toUserPointReply(p), nil
}

func toUserPointReply(p *biz.UserPoint) *UserPointReply {
	return &UserPointReply{
		Id:           p.UserID,
		Point:        p.Balance,
		UpdateMillis: p.UpdatedAt.UnixMilli(),
	}
}
