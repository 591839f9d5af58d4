// Package events publishes payment lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/anyulbade/pg-gateway-facade/internal/model"
)

const TypePaymentCreated = "payment.created"

type PaymentCreated struct {
	Type         string          `json:"type"`
	PaymentID    int64           `json:"paymentId"`
	PartnerID    int64           `json:"partnerId"`
	Amount       decimal.Decimal `json:"amount"`
	FeeAmount    decimal.Decimal `json:"feeAmount"`
	NetAmount    decimal.Decimal `json:"netAmount"`
	Status       string          `json:"status"`
	ApprovalCode string          `json:"approvalCode"`
	ApprovedAt   time.Time       `json:"approvedAt"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func NewPaymentCreated(p *model.Payment) PaymentCreated {
	return PaymentCreated{
		Type:         TypePaymentCreated,
		PaymentID:    p.ID,
		PartnerID:    p.PartnerID,
		Amount:       p.Amount,
		FeeAmount:    p.FeeAmount,
		NetAmount:    p.NetAmount,
		Status:       string(p.Status),
		ApprovalCode: p.ApprovalCode,
		ApprovedAt:   p.ApprovedAt,
		CreatedAt:    p.CreatedAt,
	}
}

type Publisher interface {
	PaymentCreated(ctx context.Context, p *model.Payment) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per event, keyed by partner ID so that a
// partner's events stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}}
}

func (k *KafkaPublisher) PaymentCreated(ctx context.Context, p *model.Payment) error {
	value, err := json.Marshal(NewPaymentCreated(p))
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", TypePaymentCreated, err)
	}
	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(p.PartnerID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(TypePaymentCreated)},
		},
	})
	if err != nil {
		return fmt.Errorf("write %s event: %w", TypePaymentCreated, err)
	}
	return nil
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

type NopPublisher struct{}

func (NopPublisher) PaymentCreated(context.Context, *model.Payment) error { return nil }
