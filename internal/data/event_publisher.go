package data

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"point-service/internal/biz"

	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/go-kratos/kratos/v2/log"
)

// rocketmqEventPublisher 积分事件发送到 RocketMQ
type rocketmqEventPublisher struct {
	mq    messageSender
	topic string
	log   *log.Helper
}

func newRocketMQEventPublisher(mq messageSender, topic string, logger log.Logger) *rocketmqEventPublisher {
	return &rocketmqEventPublisher{
		mq:    mq,
		topic: topic,
		log:   log.NewHelper(logger),
	}
}

// Publish 同步发送，tag 为交易类型，key 为事件ID
func (p *rocketmqEventPublisher) Publish(ctx context.Context, event *biz.PointEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := primitive.NewMessage(p.topic, body)
	msg.WithTag(string(event.Type))
	msg.WithKeys([]string{event.EventID})
	msg.WithShardingKey(strconv.FormatInt(event.UserID, 10))

	res, err := p.mq.SendSync(ctx, msg)
	if err != nil {
		return err
	}
	if res.Status != primitive.SendOK {
		return fmt.Errorf("send point event: unexpected status %d", res.Status)
	}
	p.log.WithContext(ctx).Debugf("Point event sent: event_id=%s, msg_id=%s", event.EventID, res.MsgID)
	return nil
}

// noopEventPublisher 未启用 MQ 时丢弃事件
type noopEventPublisher struct{}

func (noopEventPublisher) Publish(context.Context, *biz.PointEvent) error {
	return nil
}
