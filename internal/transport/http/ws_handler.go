package http

import (
	"encoding/json"
	"log"
	"net/http"

	"drone-assembly-service/internal/domain"
	"drone-assembly-service/internal/engine"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *engine.AssemblyService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *engine.AssemblyService) *WSHandler {
	return &WSHandler{
		service: service,
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

type dropPayload struct {
	PartID string  `json:"partId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type answerPayload struct {
	EventID     string `json:"eventId"`
	OptionIndex int    `json:"optionIndex"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the
// assembly engine: one socket per session, one inbound message per user
// gesture, snapshots fanned out after every mutation.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	joined, err := h.service.Join(r.Context(), sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel, err := h.service.Subscribe(r.Context(), sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.Leave(r.Context(), sessionID)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "snapshot", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "session", Payload: joined}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "drop":
			var payload dropPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid drop payload")
				continue
			}
			result, err := h.service.Drop(r.Context(), sessionID, payload.PartID, payload.X, payload.Y)
			if err != nil {
				send <- errMsg(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "dropResult", Payload: result}
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid answer payload")
				continue
			}
			result, err := h.service.Answer(r.Context(), sessionID, payload.EventID, payload.OptionIndex)
			if err != nil {
				send <- errMsg(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "answerResult", Payload: result}
		case "lessonClose":
			if err := h.service.CloseLesson(r.Context(), sessionID); err != nil {
				send <- errMsg(err.Error())
			}
		case "toggles":
			var payload domain.Toggles
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid toggles payload")
				continue
			}
			if err := h.service.SetToggles(r.Context(), sessionID, payload); err != nil {
				send <- errMsg(err.Error())
			}
		case "reset":
			if _, err := h.service.Reset(r.Context(), sessionID); err != nil {
				send <- errMsg(err.Error())
			}
		default:
			send <- errMsg("unsupported message type")
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func errMsg(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}
