package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"application-generator/internal/domain"
)

// ---------------------------------------------------------------------------
// chatURL helper
// ---------------------------------------------------------------------------

func TestChatURL(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{"https://api.openai.com/v1", "https://api.openai.com/v1/chat/completions"},
		{"https://api.openai.com/v1/", "https://api.openai.com/v1/chat/completions"},
		{"http://localhost:8080", "http://localhost:8080/v1/chat/completions"},
		{"", "https://api.openai.com/v1/chat/completions"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, chatURL(tc.base), "base=%q", tc.base)
	}
}

// ---------------------------------------------------------------------------
// NewClient
// ---------------------------------------------------------------------------

func TestNewClient_NilKeySource(t *testing.T) {
	_, err := NewClient(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "nil")
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(StaticKey("sk-test"))
	require.NoError(t, err)
	require.Equal(t, "https://api.openai.com/v1", c.baseURL)
	require.NotNil(t, c.httpClient)
	require.Zero(t, c.httpClient.Timeout)
}

// ---------------------------------------------------------------------------
// Client.Chat
// ---------------------------------------------------------------------------

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(
		StaticKey("sk-test"),
		WithBaseURL(srv.URL),
		WithHTTPClient(&http.Client{Timeout: 2 * time.Second}),
	)
	require.NoError(t, err)
	return c
}

func TestClient_Chat_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		reqBody, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var got chatRequest
		require.NoError(t, json.Unmarshal(reqBody, &got))
		require.Equal(t, "gpt-mock", got.Model)
		require.Equal(t, "json_object", got.ResponseFormat.Type)
		require.Len(t, got.Messages, 2)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-123",
			"object": "chat.completion",
			"created": 1670000000,
			"choices": [{
				"index": 0,
				"message": { "role": "assistant", "content": "{\"resume\":\"R\",\"cover_letter\":\"C\"}" }
			}]
		}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	resp, err := c.Chat(context.Background(), "gpt-mock", []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: "sys"},
		{Role: domain.RoleUser, Content: "hi"},
	})
	require.NoError(t, err)
	require.Equal(t, `{"resume":"R","cover_letter":"C"}`, resp)
}

func TestClient_Chat_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(400)
		_, _ = w.Write([]byte(`{"error":"bad request"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Chat(context.Background(), "gpt-mock", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected status")
	require.Contains(t, err.Error(), "400")

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusBadRequest, statusErr.HTTPStatusCode())
}

func TestClient_Chat_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`not-a-json`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Chat(context.Background(), "gpt-mock", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode response")
}

func TestClient_Chat_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}
	_, err := c.Chat(context.Background(), "gpt-mock", nil)
	require.Error(t, err)
}

func TestClient_Chat_EmptyModel(t *testing.T) {
	c, err := NewClient(StaticKey("sk-test"))
	require.NoError(t, err)
	_, err = c.Chat(context.Background(), " ", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "model")
}

func TestClient_Chat_KeyError(t *testing.T) {
	c, err := NewClient(StaticKey(""))
	require.NoError(t, err)
	_, err = c.Chat(context.Background(), "gpt-mock", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "resolve api key")
}

func TestClient_Chat_NetworkError(t *testing.T) {
	c, err := NewClient(StaticKey("sk-test"))
	require.NoError(t, err)
	c.baseURL = "http://127.0.0.1:1"
	c.httpClient = &http.Client{Timeout: 100 * time.Millisecond}

	_, err = c.Chat(context.Background(), "gpt-mock", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "request failed")
}

func TestClient_Chat_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Chat(context.Background(), "gpt-mock", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no choices")
}

func TestClient_Chat_500(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Chat(context.Background(), "gpt-mock", []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "500")
}

// ---------------------------------------------------------------------------
// Key sources
// ---------------------------------------------------------------------------

type fakeGetter struct {
	val   string
	err   error
	calls int
}

func (f *fakeGetter) GetParameter(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.val, f.err
}

func TestStaticKey(t *testing.T) {
	key, err := StaticKey(" sk-env ").APIKey(context.Background())
	require.NoError(t, err)
	require.Equal(t, "sk-env", key)

	_, err = StaticKey("").APIKey(context.Background())
	require.ErrorContains(t, err, "API token is empty")
}

func TestNewParamStoreKey_Validates(t *testing.T) {
	_, err := NewParamStoreKey(nil, "/app/token")
	require.ErrorContains(t, err, "nil")

	_, err = NewParamStoreKey(&fakeGetter{}, " ")
	require.ErrorContains(t, err, "empty")
}

func TestParamStoreKey_FetchedOnce(t *testing.T) {
	g := &fakeGetter{val: `{"token":"sk-from-ssm"}`}
	src, err := NewParamStoreKey(g, "/app/token")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		key, err := src.APIKey(context.Background())
		require.NoError(t, err)
		require.Equal(t, "sk-from-ssm", key)
	}
	require.Equal(t, 1, g.calls, "parameter store must only be hit once per process lifetime")
}

func TestParamStoreKey_FailureIsRetried(t *testing.T) {
	g := &fakeGetter{err: errors.New("ssm unavailable")}
	src, err := NewParamStoreKey(g, "/app/token")
	require.NoError(t, err)

	_, err = src.APIKey(context.Background())
	require.ErrorContains(t, err, "ssm unavailable")

	g.err = nil
	g.val = "sk-plain"
	key, err := src.APIKey(context.Background())
	require.NoError(t, err)
	require.Equal(t, "sk-plain", key)
	require.Equal(t, 2, g.calls)
}

func TestFetchAPIKey_Formats(t *testing.T) {
	cases := []struct {
		name    string
		val     string
		want    string
		wantErr string
	}{
		{name: "json token", val: `{"token":"sk-from-json"}`, want: "sk-from-json"},
		{name: "plain token", val: " sk-plain\n", want: "sk-plain"},
		{name: "json missing token", val: `{"other":"value"}`, wantErr: "API token is empty"},
		{name: "malformed json", val: `{"broken`, wantErr: "unmarshal"},
		{name: "blank", val: "  ", wantErr: "API token is empty"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, err := fetchAPIKeyFromParamStore(context.Background(), &fakeGetter{val: tc.val}, "/app/token")
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, key)
		})
	}
}
