package server

import (
	"context"
	"io"
	"testing"

	"point-service/internal/biz"
	pointErrors "point-service/internal/errors"

	"github.com/apache/rocketmq-client-go/v2/consumer"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
)

type fakeCommandHandler struct {
	handled []*biz.PointCommand
	errs    map[string]error
}

func (h *fakeCommandHandler) Handle(_ context.Context, cmd *biz.PointCommand) error {
	h.handled = append(h.handled, cmd)
	return h.errs[cmd.RequestID]
}

func newMessage(body string) *primitive.MessageExt {
	return &primitive.MessageExt{Message: primitive.Message{Body: []byte(body)}}
}

func TestMQConsumerServer_Handler(t *testing.T) {
	tests := []struct {
		name        string
		errs        map[string]error
		msgs        []*primitive.MessageExt
		want        consumer.ConsumeResult
		wantHandled int
	}{
		{
			name: "全部成功",
			msgs: []*primitive.MessageExt{
				newMessage(`{"request_id":"a","user_id":1,"type":"CHARGE","amount":10}`),
				newMessage(`{"request_id":"b","user_id":1,"type":"USE","amount":5}`),
			},
			want:        consumer.ConsumeSuccess,
			wantHandled: 2,
		},
		{
			name: "无法解析的消息跳过",
			msgs: []*primitive.MessageExt{
				newMessage(`not json`),
				newMessage(`{"request_id":"b","user_id":1,"type":"USE","amount":5}`),
			},
			want:        consumer.ConsumeSuccess,
			wantHandled: 1,
		},
		{
			name: "校验失败确认消息",
			errs: map[string]error{"a": pointErrors.ErrorInsufficientBalance("short")},
			msgs: []*primitive.MessageExt{
				newMessage(`{"request_id":"a","user_id":1,"type":"USE","amount":10}`),
				newMessage(`{"request_id":"b","user_id":1,"type":"CHARGE","amount":5}`),
			},
			want:        consumer.ConsumeSuccess,
			wantHandled: 2,
		},
		{
			name: "存储失败稍后重投",
			errs: map[string]error{"a": pointErrors.ErrorStorageFailure("db down")},
			msgs: []*primitive.MessageExt{
				newMessage(`{"request_id":"a","user_id":1,"type":"USE","amount":10}`),
				newMessage(`{"request_id":"b","user_id":1,"type":"CHARGE","amount":5}`),
			},
			want:        consumer.ConsumeRetryLater,
			wantHandled: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &fakeCommandHandler{errs: tt.errs}
			s := &MQConsumerServer{cmd: h, log: log.NewHelper(log.NewStdLogger(io.Discard))}

			got, err := s.handler(context.Background(), tt.msgs...)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, h.handled, tt.wantHandled)
		})
	}
}

// TestMQConsumerServer_Disabled 未启用时 Start/Stop 为空操作
func TestMQConsumerServer_Disabled(t *testing.T) {
	s := NewMQConsumerServer(nil, nil, log.NewStdLogger(io.Discard))
	assert.NoError(t, s.Start(context.Background()))
	assert.NoError(t, s.Stop(context.Background()))
}
