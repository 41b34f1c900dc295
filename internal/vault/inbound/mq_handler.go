package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/authvault/authvault/internal/pkg/instrument"
	"github.com/authvault/authvault/internal/pkg/messaging"
	"github.com/authvault/authvault/internal/pkg/uid"
	"github.com/authvault/authvault/internal/shared/event"
	"github.com/authvault/authvault/internal/vault/usecase"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// UserLoggedOut evicts the owner's resident credentials when the account
// system announces a sign-out.
func (h *MQHandler) UserLoggedOut(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("vault.inbound.mq").Start(ctx, "UserLoggedOut")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: user logged out", "msg_body", string(body))

	var payload event.UserLoggedOutMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of user logged out", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeUserLogout(ctx, usecase.ConsumeUserLogoutInput{
		UserID: payload.UserID,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume user logged out", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}
