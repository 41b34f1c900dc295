package mq

import (
	"context"
	"encoding/json"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/codes"

	"github.com/authvault/authvault/internal/pkg/instrument"
	"github.com/authvault/authvault/internal/pkg/messaging"
	"github.com/authvault/authvault/internal/shared/event"
	"github.com/authvault/authvault/internal/vault/entity"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

// PublishCredentialAccessed announces a recorded code access. The
// payload never carries the secret or the generated code.
func (m *Messaging) PublishCredentialAccessed(ctx context.Context, log entity.AccessLog) error {
	ctx, span := m.ins.Tracer("vault.outbound.mq").Start(ctx, "PublishCredentialAccessed")
	defer span.End()

	body, err := json.Marshal(event.CredentialAccessedMessage{
		CredentialID: log.CredentialID,
		OwnerID:      log.OwnerID,
		AccessType:   log.AccessType.String(),
		AccessedAt:   log.CreatedAt.Unix(),
		DeviceName:   lo.FromPtr(log.DeviceName),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.CredentialAccessedDestination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
