package controllers_test

import (
	"bytes"
	"edulearn/backend/chatbot"
	"edulearn/backend/config"
	"edulearn/backend/llm"
	"edulearn/backend/routes"
	"edulearn/backend/store"
	"edulearn/backend/store/storetest"
	"edulearn/backend/utils"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	cfg      *config.Config
	upstream *fakeUpstream
}

// fakeUpstream is an OpenAI-compatible completion endpoint that answers by
// prompt wording.
type fakeUpstream struct {
	calls    atomic.Int32
	failWith int // status returned for every call when non-zero
	answer   string
}

var lessonNumberRe = regexp.MustCompile(`Lesson (\d+)`)

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	if f.failWith != 0 {
		http.Error(w, "upstream unavailable", f.failWith)
		return
	}

	var req struct {
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) != 2 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	prompt := req.Messages[1].Content

	var content string
	switch {
	case strings.Contains(prompt, "multiple-choice"):
		content = "```json\n[{\"question\":\"Q1\",\"options\":[\"a\",\"b\"],\"correctAnswer\":\"a\"}]\n```"
	case strings.Contains(prompt, "course description"):
		content = "A course."
	case strings.Contains(prompt, "lesson title"):
		content = "Part " + lessonNumberRe.FindStringSubmatch(prompt)[1]
	case strings.Contains(prompt, "lesson content"):
		content = "Body."
	default:
		content = f.answer
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"choices": []interface{}{
			map[string]interface{}{"message": map[string]interface{}{"content": content}},
		},
	})
}

func setup(t *testing.T, mutate func(*config.Config), opts ...chatbot.Option) *testEnv {
	t.Helper()

	upstream := &fakeUpstream{answer: "Here is an answer."}
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		JWTSecret:          "test-secret",
		ChatRequireSession: true,
		LLMBaseURL:         srv.URL,
		LLMAPIKey:          "test-key",
		LLMModel:           "test-model",
		LLMTimeout:         5 * time.Second,
	}
	if mutate != nil {
		mutate(cfg)
	}

	log := utils.NewNopLogger()
	client, err := llm.NewClient(llm.Config{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	}, log)
	require.NoError(t, err)

	db := storetest.Open(t)
	s := store.New(db)
	bot := chatbot.New(s, client, append([]chatbot.Option{chatbot.WithLogger(log)}, opts...)...)

	app := fiber.New()
	routes.SetupRoutes(app, s, bot, cfg, log)
	return &testEnv{app: app, db: db, cfg: cfg, upstream: upstream}
}

func (e *testEnv) token(t *testing.T, userID uint, email string) string {
	t.Helper()
	token, err := utils.GenerateJWTToken(userID, email, e.cfg)
	require.NoError(t, err)
	return token
}

// do sends a request and decodes the JSON response body into out (if non-nil).
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}, out interface{}) int {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp.StatusCode
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}
