package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyulbade/pg-gateway-facade/internal/model"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func samplePayment() *model.Payment {
	at := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	return &model.Payment{
		ID:           7,
		PartnerID:    3,
		Amount:       decimal.NewFromInt(10000),
		FeeAmount:    decimal.NewFromInt(450),
		NetAmount:    decimal.NewFromInt(9550),
		Status:       model.StatusApproved,
		ApprovalCode: "A1",
		ApprovedAt:   at,
		CreatedAt:    at,
	}
}

func TestKafkaPublisher_PaymentCreated(t *testing.T) {
	w := &recordingWriter{}
	pub := &KafkaPublisher{writer: w}

	require.NoError(t, pub.PaymentCreated(context.Background(), samplePayment()))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "3", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, TypePaymentCreated, string(msg.Headers[0].Value))

	var evt map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &evt))
	assert.Equal(t, "payment.created", evt["type"])
	assert.Equal(t, float64(7), evt["paymentId"])
	assert.Equal(t, "9550", evt["netAmount"])
	assert.Equal(t, "APPROVED", evt["status"])

	require.NoError(t, pub.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	boom := errors.New("broker down")
	pub := &KafkaPublisher{writer: &recordingWriter{err: boom}}

	err := pub.PaymentCreated(context.Background(), samplePayment())
	assert.ErrorIs(t, err, boom)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.PaymentCreated(context.Background(), samplePayment()))
}
