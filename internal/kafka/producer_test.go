package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/internal/kafka/mocks"
	"github.com/Gunvolt24/shop_backend/pkg/metrics"
)

func TestProducer_Publish_KeyedByUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := mocks.NewMockwriter(ctrl)
	p := &Producer{writer: w, topic: "order-events-unit", timeout: time.Second}

	before := testutil.ToFloat64(metrics.KafkaMessagesProduced.WithLabelValues("order-events-unit"))

	w.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, msgs ...kafka.Message) error {
			require.Len(t, msgs, 1)
			require.Equal(t, "u-1", string(msgs[0].Key))
			_, hasDeadline := ctx.Deadline()
			require.True(t, hasDeadline)

			ev, err := decodeEvent(msgs[0].Value)
			require.NoError(t, err)
			require.Equal(t, "o-1", ev.OrderID)
			require.Equal(t, domain.StatusShipped, ev.Status)
			return nil
		})

	err := p.Publish(context.Background(), domain.OrderEvent{
		OrderID: "o-1", UserID: "u-1", Status: domain.StatusShipped, Timestamp: time.Now(),
	})
	require.NoError(t, err)
	require.Equal(t, before+1, testutil.ToFloat64(metrics.KafkaMessagesProduced.WithLabelValues("order-events-unit")))
}

func TestProducer_Publish_WriteError(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := mocks.NewMockwriter(ctrl)
	p := &Producer{writer: w, topic: "t", timeout: time.Second}

	w.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(errors.New("leader not available"))

	err := p.Publish(context.Background(), domain.OrderEvent{OrderID: "o", UserID: "u", Status: domain.StatusPaid})
	require.ErrorIs(t, err, domain.ErrNotificationUnavailable)
}

func TestProducer_Close(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := mocks.NewMockwriter(ctrl)
	w.EXPECT().Close().Return(nil)

	require.NoError(t, (&Producer{writer: w}).Close())
}
