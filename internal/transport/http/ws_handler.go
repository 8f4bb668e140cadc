package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ecolearn-challenge-service/internal/app"
	"ecolearn-challenge-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSHandler streams challenge lifecycle events to participants and accepts start/submit
// commands on the same connection.
type WSHandler struct {
	service  *app.ChallengeService
	events   app.EventBus
	upgrader websocket.Upgrader
	log      *zap.SugaredLogger
}

func NewWSHandler(service *app.ChallengeService, events app.EventBus, log *zap.SugaredLogger) *WSHandler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &WSHandler{
		service: service,
		events:  events,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type submitPayload struct {
	Answers []domain.Answer `json:"answers"`
	// TimeTaken is in seconds.
	TimeTaken float64 `json:"timeTaken"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS must run behind Authenticator.Middleware.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	challengeID := chi.URLParam(r, "id")
	userID := caller(r)

	// Reject strangers before upgrading so they get a regular HTTP error.
	snapshot, err := h.service.GetChallenge(r.Context(), challengeID, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	updates, cancel, err := h.events.Subscribe(r.Context(), challengeID)
	if err != nil {
		h.log.Errorw("subscribe challenge events", "challenge_id", challengeID, "error", err)
		writeError(w, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Only this goroutine writes to conn.
	go func() {
		defer close(writerDone)
		for msg := range send {
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debugw("ws write error", "challenge_id", challengeID, "error", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case event, ok := <-updates:
				if !ok {
					return
				}
				if !enqueue(send, writerDone, outboundMessage[any]{Type: "event", Payload: event}) {
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	reply := func(msg outboundMessage[any]) bool {
		return enqueue(send, writerDone, msg)
	}

	if reply(outboundMessage[any]{Type: "snapshot", Payload: snapshot}) {
		h.readLoop(r, conn, challengeID, userID, reply)
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// readLoop handles inbound commands until the client goes away or the writer stops.
func (h *WSHandler) readLoop(r *http.Request, conn *websocket.Conn, challengeID, userID string, reply func(outboundMessage[any]) bool) {
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		var msg outboundMessage[any]
		switch inbound.Type {
		case "start":
			challenge, err := h.service.MarkStarted(r.Context(), challengeID, userID)
			if err != nil {
				msg = errorMessage(err)
				break
			}
			msg = outboundMessage[any]{Type: "started", Payload: challenge}
		case "submit":
			msg = h.submit(r, challengeID, userID, inbound.Payload)
		default:
			msg = outboundMessage[any]{Type: "error", Payload: errorBody{Kind: domain.KindInvalidArgument, Message: "unsupported message type"}}
		}
		if !reply(msg) {
			return
		}
	}
}

func (h *WSHandler) submit(r *http.Request, challengeID, userID string, raw json.RawMessage) outboundMessage[any] {
	var payload submitPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return outboundMessage[any]{Type: "error", Payload: errorBody{Kind: domain.KindInvalidArgument, Message: "invalid submit payload"}}
	}
	if payload.TimeTaken < 0 || payload.TimeTaken > domain.MaxTimeTakenSeconds {
		return outboundMessage[any]{Type: "error", Payload: errorBody{Kind: domain.KindInvalidArgument, Message: "timeTaken out of range"}}
	}
	outcome, err := h.service.Submit(r.Context(), challengeID, userID, payload.Answers, domain.SecondsToDuration(payload.TimeTaken))
	if err != nil && !errors.Is(err, domain.ErrRewardPending) {
		return errorMessage(err)
	}
	resp := submitResponse{SubmitOutcome: outcome}
	if err != nil {
		warning := bodyFor(err)
		resp.Warning = &warning
	}
	return outboundMessage[any]{Type: "submitResult", Payload: resp}
}

// enqueue hands msg to the writer goroutine, reporting false once the writer has exited.
func enqueue(send chan<- outboundMessage[any], writerDone <-chan struct{}, msg outboundMessage[any]) bool {
	select {
	case send <- msg:
		return true
	case <-writerDone:
		return false
	}
}

func errorMessage(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: bodyFor(err)}
}
