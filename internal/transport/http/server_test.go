package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ecolearn-challenge-service/internal/app"
	"ecolearn-challenge-service/internal/domain"
	"ecolearn-challenge-service/internal/infra/memory"
)

const testSecret = "test-secret"

type testServer struct {
	*httptest.Server
	auth *Authenticator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	questions := make([]domain.Question, 0, 9)
	for i := 1; i <= 9; i++ {
		questions = append(questions, domain.Question{
			ID:         fmt.Sprintf("q%d", i),
			Category:   "Climate",
			Difficulty: domain.Difficulties[(i-1)%len(domain.Difficulties)],
			Prompt:     fmt.Sprintf("Question %d", i),
			Options:    []string{"yes", "no"},
			Answer:     "yes",
		})
	}

	users := memory.NewUserDirectory("alice", "bob", "carol")
	challenges := memory.NewChallengeStore()
	ledger := memory.NewPointsLedger()
	bus := memory.NewEventBus()
	repo := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(questions), time.Minute)

	challengeService := app.NewChallengeService(challenges, users, ledger, bus)
	questionService := app.NewQuestionService(repo, users, users, challenges)
	pointsService := app.NewPointsService(ledger)

	auth := NewAuthenticator(testSecret)
	router := NewRouter(RouterConfig{
		Handler: NewHandler(challengeService, questionService, pointsService, nil),
		WS:      NewWSHandler(challengeService, bus, nil),
		Auth:    auth,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testServer{Server: server, auth: auth}
}

func (s *testServer) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := s.auth.Issue(userID, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

// do sends a JSON request as userID ("" for anonymous) and decodes the JSON response.
func (s *testServer) do(t *testing.T, method, path, userID string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			if err != nil {
				t.Fatalf("marshal body: %v", err)
			}
			reader = bytes.NewReader(raw)
		}
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(t, userID))
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp.StatusCode, out
}

func errorKind(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	kind, _ := e["kind"].(string)
	return kind
}
