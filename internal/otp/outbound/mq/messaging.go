package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"
const keyOfEventID string = "eID"

type Messaging struct {
	client messaging.Messaging
	oid    uid.StringID
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, oid uid.StringID, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, oid: oid, ins: ins}
}

func (m *Messaging) PublishOtpIssued(ctx context.Context, msg usecase.OtpIssuedEvent) error {
	ctx, span := m.ins.Tracer("otp.outbound.mq").Start(ctx, "PublishOtpIssued")
	defer span.End()

	body, err := json.Marshal(event.OtpIssuedMessage{
		IdentityID:   msg.IdentityID,
		MobileNumber: msg.MobileNumber,
		PasscodeID:   msg.PasscodeID,
		ExpiresAt:    msg.ExpiresAt.Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := m.publish(ctx, event.OtpIssuedDestination, msg.IdentityID, body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (m *Messaging) PublishOtpVerified(ctx context.Context, msg usecase.OtpVerifiedEvent) error {
	ctx, span := m.ins.Tracer("otp.outbound.mq").Start(ctx, "PublishOtpVerified")
	defer span.End()

	body, err := json.Marshal(event.OtpVerifiedMessage{
		IdentityID:   msg.IdentityID,
		MobileNumber: msg.MobileNumber,
		PasscodeID:   msg.PasscodeID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := m.publish(ctx, event.OtpVerifiedDestination, msg.IdentityID, body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

// publish keys every message by identity so brokers with ordered partitions
// deliver events for one identity in issue order.
func (m *Messaging) publish(ctx context.Context, destination, identityID string, body []byte) error {
	cID := instrument.GetCorrelationID(ctx)
	_, err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
		Body:        body,
		Key:         []byte(identityID),
		OrderingKey: identityID,
		Headers: []messaging.Header{
			{Key: keyOfCorrelationID, Value: []byte(cID)},
			{Key: keyOfEventID, Value: []byte(m.oid.Generate())},
		},
	})
	return err
}
