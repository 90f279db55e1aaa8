package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"drone-assembly-service/internal/board"
	"drone-assembly-service/internal/config"
	"drone-assembly-service/internal/content"
	"drone-assembly-service/internal/engine"
	"drone-assembly-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.NewSessionStore()
	packRepo := memory.NewPackRepository(memory.NewStaticPackLoader(content.Builtin()), time.Minute)
	service := engine.NewAssemblyService(store, packRepo, board.Default(), content.DefaultPackID, config.DefaultRules())
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	return httptest.NewServer(mux)
}

func TestWebSocketDropAndAnswerFlow(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?sessionId=mission-1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect the initial session snapshot first.
	msgType, payload := readNext(conn, t, "session")
	if msgType != "session" {
		t.Fatalf("expected session, got %s", msgType)
	}
	parts, ok := payload["parts"].([]any)
	if !ok || len(parts) != 18 {
		t.Fatalf("expected 18 staged parts, got %v", payload["parts"])
	}

	// Drop prop-1 onto its zone center.
	zone, err := board.Default().ZoneByKey("z_prop_tl")
	if err != nil {
		t.Fatalf("zone: %v", err)
	}
	drop := map[string]any{
		"type": "drop",
		"payload": map[string]any{
			"partId": "prop-1",
			"x":      zone.Position.X,
			"y":      zone.Position.Y,
		},
	}
	if err := conn.WriteJSON(drop); err != nil {
		t.Fatalf("write drop: %v", err)
	}

	var eventID string
	var correctIndex int
	dropSeen := false
	snapshotSeen := false
	for i := 0; i < 4 && !(dropSeen && snapshotSeen); i++ {
		typ, payload := readNext(conn, t, "")
		switch typ {
		case "dropResult":
			dropSeen = true
			if payload["outcome"] != "locked" {
				t.Fatalf("expected locked outcome, got %v", payload["outcome"])
			}
			if payload["scoreDelta"].(float64) != 25 {
				t.Fatalf("expected +25, got %v", payload["scoreDelta"])
			}
			event := payload["event"].(map[string]any)
			eventID = event["eventId"].(string)
			question := event["question"].(map[string]any)
			correctIndex = int(question["correctIndex"].(float64))
		case "snapshot":
			snapshotSeen = true
		}
	}
	if !dropSeen || !snapshotSeen {
		t.Fatalf("expected dropResult and snapshot, got dropResult=%v snapshot=%v", dropSeen, snapshotSeen)
	}

	// Answer the frozen quiz question.
	answer := map[string]any{
		"type": "answer",
		"payload": map[string]any{
			"eventId":     eventID,
			"optionIndex": correctIndex,
		},
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}

	answerSeen := false
	for i := 0; i < 4 && !answerSeen; i++ {
		typ, payload := readNext(conn, t, "")
		if typ != "answerResult" {
			continue
		}
		answerSeen = true
		if payload["correct"] != true {
			t.Fatalf("expected correct answer, got %v", payload)
		}
		if payload["scoreDelta"].(float64) != 15 {
			t.Fatalf("expected +15 quiz reward, got %v", payload["scoreDelta"])
		}
	}
	if !answerSeen {
		t.Fatalf("expected answerResult")
	}
}

func TestWebSocketRequiresSessionID(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing sessionId, got %d", resp.StatusCode)
	}
}

func TestWebSocketUnknownPartReportsError(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?sessionId=mission-err"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readNext(conn, t, "session")

	drop := map[string]any{
		"type":    "drop",
		"payload": map[string]any{"partId": "warp-core", "x": 0.5, "y": 0.5},
	}
	if err := conn.WriteJSON(drop); err != nil {
		t.Fatalf("write drop: %v", err)
	}

	errorSeen := false
	for i := 0; i < 4 && !errorSeen; i++ {
		typ, _ := readNext(conn, t, "")
		if typ == "error" {
			errorSeen = true
		}
	}
	if !errorSeen {
		t.Fatalf("expected error message for unknown part")
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
