package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"inno-quiz-service/internal/app"
	"inno-quiz-service/internal/auth"
	"inno-quiz-service/internal/domain"
	"inno-quiz-service/internal/infra/memory"
)

type stubTrivia struct {
	items []domain.TriviaItem
	err   error
}

func (s stubTrivia) FetchQuestions(_ context.Context, q domain.TriviaQuery) ([]domain.TriviaItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	if q.Amount < len(s.items) {
		return s.items[:q.Amount], nil
	}
	return s.items, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newServices(t *testing.T, trivia app.TriviaClient) (Services, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	bank := app.NewQuestionBank(store, store)
	log := quietLogger()
	return Services{
		Catalog:  app.NewQuizCatalog(store, store),
		Bank:     bank,
		Importer: app.NewTriviaImporter(store, bank, trivia, app.ImportBestEffort, "multiple", log),
		Engine:   app.NewScoringEngine(store, memory.NewLeaderboardCache(0), app.PolicyLenient, log),
		Accounts: app.NewAccountService(store, auth.BcryptHasher{Cost: 4}),
	}, store
}

func newTestServer(t *testing.T, trivia app.TriviaClient, tokens *auth.Tokens) (*httptest.Server, Services) {
	t.Helper()
	svc, _ := newServices(t, trivia)
	mux := http.NewServeMux()
	NewAPIHandler(svc, tokens, quietLogger()).Register(mux)
	mux.HandleFunc("/ws", NewWSHandler(svc.Engine, NewIdentity(tokens), quietLogger()).ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, svc
}

func doJSON(t *testing.T, method, url, username string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if username != "" {
		req.Header.Set("X-Username", username)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

// seedQuiz registers alice and bob and creates a two-question quiz authored by alice.
func seedQuiz(t *testing.T, base string) (string, []int64) {
	t.Helper()
	for _, name := range []string{"alice", "bob"} {
		if status := doJSON(t, http.MethodPost, base+"/api/v1/users", "", map[string]string{"username": name, "password": "secret1"}, nil); status != http.StatusCreated {
			t.Fatalf("register %s: status %d", name, status)
		}
	}
	var quiz quizResponse
	if status := doJSON(t, http.MethodPost, base+"/api/v1/quizzes", "alice", map[string]any{"name": "Basics", "category": 9}, &quiz); status != http.StatusCreated {
		t.Fatalf("create quiz: status %d", status)
	}
	var ids []int64
	for _, text := range []string{"2+2?", "3+3?"} {
		var q domain.Question
		body := map[string]any{
			"text": text,
			"options": []map[string]any{
				{"text": "right", "isCorrect": true},
				{"text": "wrong", "isCorrect": false},
			},
		}
		if status := doJSON(t, http.MethodPost, base+"/api/v1/quizzes/"+quiz.ID+"/questions", "alice", body, &q); status != http.StatusCreated {
			t.Fatalf("add question: status %d", status)
		}
		ids = append(ids, q.ID)
	}
	return quiz.ID, ids
}
