package service

// 请求/响应结构，JSON 字段与 HTTP 接口保持一致

// UserPointRequest 按用户ID查询
type UserPointRequest struct {
	Id int64 `json:"id"`
}

// AmountRequest 充值/使用请求，id 来自路径，amount 来自 body
type AmountRequest struct {
	Id     int64 `json:"id"`
	Amount int64 `json:"amount"`
}

// UserPointReply 用户积分
type UserPointReply struct {
	Id           int64 `json:"id"`
	Point        int64 `json:"point"`
	UpdateMillis int64 `json:"updateMillis"`
}

// PointHistoryReply 积分流水，amount 为交易后的余额
type PointHistoryReply struct {
	Id           int64  `json:"id"`
	UserId       int64  `json:"userId"`
	Amount       int64  `json:"amount"`
	Type         string `json:"type"`
	UpdateMillis int64  `json:"updateMillis"`
}

// PointHistoriesReply 积分流水列表
type PointHistoriesReply struct {
	Histories []*PointHistoryReply `json:"histories"`
}
