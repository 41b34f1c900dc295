package inbound

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type streamEvent struct {
	At    int64                    `json:"at"`
	Codes []CredentialCodeResponse `json:"codes"`
}

// streamHandler returns the raw SSE handler for live code updates.
// @Summary Stream codes
// @Description Streams per-second code snapshots using Server-Sent Events (SSE).
// @Tags Vault, Codes
// @Security BearerAuth
// @Produce text/event-stream
// @Success 200 {string} string "SSE stream"
// @Failure 401 {string} string "Unauthorized"
// @Failure 500 {string} string "streaming unsupported"
// @Router /api/v1/vault/stream [get]
func (h *HTTPEndpoint) streamHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}
		ctx := r.Context()

		stream, err := h.uc.StreamCodes(ctx)
		if err != nil {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		w.WriteHeader(http.StatusOK)
		if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
			slog.ErrorContext(ctx, "failed to send response connected", "error", err)
			return
		}
		flusher.Flush()

		// heartbeat ping, so proxies won't drop idle connections.
		ticker := time.NewTicker(25 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				flusher.Flush()

			case snap, ok := <-stream:
				if !ok {
					return
				}

				codes := make([]CredentialCodeResponse, 0, len(snap.Codes))
				for _, c := range snap.Codes {
					codes = append(codes, newCredentialCodeResponse(c))
				}

				payload, err := json.Marshal(streamEvent{At: snap.At.Unix(), Codes: codes})
				if err != nil {
					slog.ErrorContext(ctx, "failed to marshal data", "error", err)
					continue
				}
				if _, err := fmt.Fprintf(w, "event: codes\ndata: %s\n\n", payload); err != nil {
					slog.ErrorContext(ctx, "failed to send response data", "error", err)
					return
				}
				flusher.Flush()
			}
		}
	})
}
