package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/otclogin/internal/auth/usecase"
	"github.com/shandysiswandi/otclogin/internal/pkg/instrument"
	"github.com/shandysiswandi/otclogin/internal/pkg/messaging"
	"github.com/shandysiswandi/otclogin/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishCodeRequested(ctx context.Context, msg usecase.CodeRequestedEvent) error {
	ctx, span := m.ins.Tracer("auth.outbound.mq").Start(ctx, "PublishCodeRequested")
	defer span.End()

	body, err := json.Marshal(event.CodeRequestedMessage{
		Email:     msg.Email,
		ExpiresAt: msg.ExpiresAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := m.publish(ctx, event.CodeRequestedDestination, msg.Email, body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (m *Messaging) PublishLoginVerified(ctx context.Context, msg usecase.LoginVerifiedEvent) error {
	ctx, span := m.ins.Tracer("auth.outbound.mq").Start(ctx, "PublishLoginVerified")
	defer span.End()

	body, err := json.Marshal(event.LoginVerifiedMessage{
		PrincipalID:  msg.PrincipalID,
		Email:        msg.Email,
		NewPrincipal: msg.NewPrincipal,
		VerifiedAt:   msg.VerifiedAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := m.publish(ctx, event.LoginVerifiedDestination, msg.Email, body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

// publish keys every event by email so one identity's events stay ordered.
func (m *Messaging) publish(ctx context.Context, destination, email string, body []byte) error {
	cID := instrument.GetCorrelationID(ctx)
	_, err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
		Body:        body,
		Key:         []byte(email),
		OrderingKey: email,
		Headers:     []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	})
	return err
}
