package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWebSocketChallengeFlow(t *testing.T) {
	s := newTestServer(t)

	status, created := s.do(t, http.MethodPost, "/api/v1/challenges/invite", "alice", map[string]any{"friendId": "bob", "numQuestions": 2})
	if status != http.StatusCreated {
		t.Fatalf("create invite: status %d body %v", status, created)
	}
	id := created["id"].(string)
	if status, _ := s.do(t, http.MethodPost, "/api/v1/challenges/accept", "bob", map[string]any{"inviteId": id}); status != http.StatusOK {
		t.Fatalf("accept: status %d", status)
	}

	u := "ws" + s.URL[len("http"):] + "/ws/challenges/" + id + "?token=" + s.token(t, "alice")
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect a snapshot first.
	_, payload := readNext(conn, t, "snapshot")
	if payload["status"] != "accepted" {
		t.Fatalf("expected accepted snapshot, got %v", payload)
	}

	if err := conn.WriteJSON(map[string]any{"type": "start"}); err != nil {
		t.Fatalf("write start: %v", err)
	}
	submit := map[string]any{
		"type": "submit",
		"payload": map[string]any{
			"answers": []map[string]any{
				{"questionId": "q1", "isCorrect": true},
				{"questionId": "q2", "isCorrect": true},
			},
			"timeTaken": 30,
		},
	}
	if err := conn.WriteJSON(submit); err != nil {
		t.Fatalf("write submit: %v", err)
	}

	startedSeen, submitSeen := false, false
	for i := 0; i < 8 && !(startedSeen && submitSeen); i++ {
		typ, payload := readNext(conn, t, "")
		switch typ {
		case "started":
			startedSeen = true
		case "submitResult":
			submitSeen = payload["resolved"] == false
		case "error":
			t.Fatalf("unexpected error message %v", payload)
		}
	}
	if !startedSeen || !submitSeen {
		t.Fatalf("expected started and submitResult, got started=%v submit=%v", startedSeen, submitSeen)
	}

	// Bob submits over REST; alice must see the resolution pushed to her.
	bobAnswers := []map[string]any{{"questionId": "q1", "isCorrect": true}, {"questionId": "q2", "isCorrect": false}}
	status, outcome := s.do(t, http.MethodPost, "/api/v1/challenges/submit", "bob", map[string]any{"challengeId": id, "answers": bobAnswers, "timeTaken": 20})
	if status != http.StatusOK || outcome["winner"] != "alice" {
		t.Fatalf("expected alice to win, got status %d body %v", status, outcome)
	}

	resolvedSeen := false
	for i := 0; i < 8 && !resolvedSeen; i++ {
		typ, payload := readNext(conn, t, "")
		if typ == "event" && payload["type"] == "resolved" {
			challenge, _ := payload["challenge"].(map[string]any)
			if challenge["winner"] != "alice" {
				t.Fatalf("unexpected resolved event %v", payload)
			}
			resolvedSeen = true
		}
	}
	if !resolvedSeen {
		t.Fatalf("expected resolved event")
	}
}

func TestWebSocketRejectsStrangers(t *testing.T) {
	s := newTestServer(t)

	_, created := s.do(t, http.MethodPost, "/api/v1/challenges/invite", "alice", map[string]any{"friendId": "bob"})
	id := created["id"].(string)

	u := "ws" + s.URL[len("http"):] + "/ws/challenges/" + id + "?token=" + s.token(t, "carol")
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected handshake to fail for non participant")
	}
	if resp == nil || resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", resp)
	}

	_, resp, err = websocket.DefaultDialer.Dial("ws"+s.URL[len("http"):]+"/ws/challenges/"+id, nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %v", resp)
	}
}

func TestWebSocketRejectsOutOfRangeTime(t *testing.T) {
	s := newTestServer(t)

	_, created := s.do(t, http.MethodPost, "/api/v1/challenges/invite", "alice", map[string]any{"friendId": "bob", "numQuestions": 2})
	id := created["id"].(string)
	if status, _ := s.do(t, http.MethodPost, "/api/v1/challenges/accept", "bob", map[string]any{"inviteId": id}); status != http.StatusOK {
		t.Fatalf("accept: status %d", status)
	}

	u := "ws" + s.URL[len("http"):] + "/ws/challenges/" + id + "?token=" + s.token(t, "alice")
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readNext(conn, t, "snapshot")

	for _, seconds := range []float64{-1, 1e12} {
		if err := conn.WriteJSON(map[string]any{"type": "submit", "payload": map[string]any{"answers": []any{}, "timeTaken": seconds}}); err != nil {
			t.Fatalf("write submit: %v", err)
		}
		_, payload := readNext(conn, t, "error")
		if payload["kind"] != "InvalidArgument" {
			t.Fatalf("timeTaken %v: expected InvalidArgument, got %v", seconds, payload)
		}
	}

	status, got := s.do(t, http.MethodGet, "/api/v1/challenges/"+id, "alice", nil)
	if status != http.StatusOK {
		t.Fatalf("get challenge: status %d", status)
	}
	if subs, _ := got["submissions"].([]any); len(subs) != 0 {
		t.Fatalf("rejected submissions must not be recorded, got %v", subs)
	}
}

func TestEnqueueStopsWhenWriterExits(t *testing.T) {
	send := make(chan outboundMessage[any], 1)
	writerDone := make(chan struct{})

	if !enqueue(send, writerDone, outboundMessage[any]{Type: "snapshot"}) {
		t.Fatalf("expected first message buffered")
	}
	close(writerDone)

	done := make(chan bool, 1)
	go func() { done <- enqueue(send, writerDone, outboundMessage[any]{Type: "event"}) }()
	select {
	case ok := <-done:
		if ok {
			t.Fatalf("expected enqueue to fail once the writer is gone")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("enqueue blocked on a full queue after the writer exited")
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
