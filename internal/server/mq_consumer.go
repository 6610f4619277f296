package server

import (
	"context"

	"point-service/internal/biz"
	"point-service/internal/conf"
	"point-service/internal/constants"
	pointErrors "point-service/internal/errors"

	"github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/consumer"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/go-kratos/kratos/v2/log"
)

// commandHandler CommandUseCase 中消费者用到的部分
type commandHandler interface {
	Handle(ctx context.Context, cmd *biz.PointCommand) error
}

// MQConsumerServer 消费 RocketMQ 上的异步积分命令
type MQConsumerServer struct {
	c       rocketmq.PushConsumer
	cmd     commandHandler
	topic   string
	log     *log.Helper
	enabled bool
}

// NewMQConsumerServer creates a RocketMQ consumer server
func NewMQConsumerServer(c *conf.Data, cmd *biz.CommandUseCase, logger log.Logger) *MQConsumerServer {
	helper := log.NewHelper(logger)
	if c == nil || c.Rocketmq == nil || !c.Rocketmq.Enabled {
		return &MQConsumerServer{log: helper, enabled: false}
	}

	groupName := c.Rocketmq.GroupName
	if groupName == "" {
		groupName = constants.DefaultGroupName
	}
	topic := c.Rocketmq.CommandTopic
	if topic == "" {
		topic = constants.DefaultCommandTopic
	}

	r, err := rocketmq.NewPushConsumer(
		consumer.WithNsResolver(primitive.NewPassthroughResolver(c.Rocketmq.NameServers)),
		consumer.WithGroupName(groupName),
		consumer.WithRetry(int(c.Rocketmq.RetryTimes)),
		consumer.WithConsumeMessageBatchMaxSize(16),
	)
	if err != nil {
		helper.Errorf("init consumer error: %v", err)
		return &MQConsumerServer{log: helper, enabled: false}
	}

	return &MQConsumerServer{
		c:       r,
		cmd:     cmd,
		topic:   topic,
		log:     helper,
		enabled: true,
	}
}

// Start starts the consumer
func (s *MQConsumerServer) Start(ctx context.Context) error {
	if !s.enabled || s.c == nil {
		s.log.Infof("MQConsumerServer is disabled, skipping startup")
		return nil
	}

	s.log.Infof("Starting MQConsumerServer, topic: %s", s.topic)

	if err := s.c.Subscribe(s.topic, consumer.MessageSelector{}, s.handler); err != nil {
		s.log.Errorf("Failed to subscribe to topic %s: %v", s.topic, err)
		// MQ 不可用时 HTTP 接口仍然可用
		return nil
	}
	if err := s.c.Start(); err != nil {
		s.log.Errorf("Failed to start RocketMQ consumer: %v", err)
		return nil
	}
	return nil
}

// Stop stops the consumer
func (s *MQConsumerServer) Stop(ctx context.Context) error {
	if !s.enabled || s.c == nil {
		return nil
	}
	s.log.Info("Stopping MQConsumerServer")
	return s.c.Shutdown()
}

// handler 逐条处理命令；任一条可重试失败时整批稍后重投，已处理的命令由请求ID去重
func (s *MQConsumerServer) handler(ctx context.Context, msgs ...*primitive.MessageExt) (consumer.ConsumeResult, error) {
	for _, msg := range msgs {
		cmd, err := biz.ParsePointCommand(msg.Body)
		if err != nil {
			s.log.Errorf("Unmarshal command failed: %v, msg_id: %s, body: %s", err, msg.MsgId, string(msg.Body))
			continue
		}

		if err := s.cmd.Handle(ctx, cmd); err != nil {
			if pointErrors.IsRetryable(err) {
				s.log.Warnf("Command will be retried: request_id=%s, error=%v", cmd.RequestID, err)
				return consumer.ConsumeRetryLater, nil
			}
			// 校验失败的命令重投也不会成功，直接确认
			s.log.Warnf("Command dropped: request_id=%s, error=%v", cmd.RequestID, err)
		}
	}
	return consumer.ConsumeSuccess, nil
}
