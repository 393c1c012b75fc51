package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurite-ai/aurite-go/internal/config"
)

func testLLMConfig(baseURL string) *config.LLMConfig {
	return &config.LLMConfig{
		Name:     "test",
		Provider: "openai-compatible",
		Model:    "test-model",
		BaseURL:  baseURL,
	}
}

func TestOpenAIClient_CreateMessage(t *testing.T) {
	t.Run("text response", func(t *testing.T) {
		t.Parallel()
		var gotReq chatRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(body, &gotReq))
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello there"}}]}`))
		}))
		t.Cleanup(srv.Close)

		client, err := NewOpenAIClient(testLLMConfig(srv.URL), srv.Client())
		require.NoError(t, err)

		msg, err := client.CreateMessage(context.Background(), &Request{
			SystemPrompt: "You are terse.",
			Messages:     []Message{NewUserMessage("hi")},
		})
		require.NoError(t, err)
		assert.Equal(t, RoleAssistant, msg.Role)
		assert.Equal(t, "hello there", msg.Content)
		assert.Empty(t, msg.ToolCalls)

		require.Len(t, gotReq.Messages, 2)
		assert.Equal(t, "system", gotReq.Messages[0].Role)
		assert.Equal(t, "You are terse.", gotReq.Messages[0].Content)
		assert.Equal(t, "user", gotReq.Messages[1].Role)
		assert.Equal(t, "test-model", gotReq.Model)
	})

	t.Run("tool call response", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[{"message":{
				"role":"assistant","content":"",
				"tool_calls":[{"id":"call_1","type":"function",
					"function":{"name":"weather_server-weather_lookup","arguments":"{\"location\":\"London\"}"}}]
			}}]}`))
		}))
		t.Cleanup(srv.Close)

		client, err := NewOpenAIClient(testLLMConfig(srv.URL), srv.Client())
		require.NoError(t, err)

		msg, err := client.CreateMessage(context.Background(), &Request{
			Messages: []Message{NewUserMessage("weather in London?")},
			Tools: []ToolSchema{{
				Name:        "weather_server-weather_lookup",
				Description: "Look up weather",
			}},
		})
		require.NoError(t, err)
		require.Len(t, msg.ToolCalls, 1)
		assert.Equal(t, "call_1", msg.ToolCalls[0].ID)
		assert.Equal(t, "weather_server-weather_lookup", msg.ToolCalls[0].Name)
		assert.JSONEq(t, `{"location":"London"}`, string(msg.ToolCalls[0].Arguments))
	})

	t.Run("tool result messages round-trip", func(t *testing.T) {
		t.Parallel()
		var gotReq chatRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &gotReq))
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"15C"}}]}`))
		}))
		t.Cleanup(srv.Close)

		client, err := NewOpenAIClient(testLLMConfig(srv.URL), srv.Client())
		require.NoError(t, err)

		assistant := Message{
			Role: RoleAssistant,
			ToolCalls: []ToolCall{{
				ID:        "call_1",
				Name:      "weather_server-weather_lookup",
				Arguments: json.RawMessage(`{"location":"London"}`),
			}},
		}
		toolResult := NewToolResultMessage("call_1", "weather_server-weather_lookup", `{"temp":15}`)

		_, err = client.CreateMessage(context.Background(), &Request{
			Messages: []Message{NewUserMessage("weather?"), assistant, toolResult},
		})
		require.NoError(t, err)

		require.Len(t, gotReq.Messages, 3)
		assert.Equal(t, "tool", gotReq.Messages[2].Role)
		assert.Equal(t, "call_1", gotReq.Messages[2].ToolCallID)
		require.Len(t, gotReq.Messages[1].ToolCalls, 1)
		assert.Equal(t, "weather_server-weather_lookup", gotReq.Messages[1].ToolCalls[0].Function.Name)
	})

	t.Run("zero temperature reaches the provider", func(t *testing.T) {
		t.Parallel()
		var gotBody map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(body, &gotBody))
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
		}))
		t.Cleanup(srv.Close)

		cfg := testLLMConfig(srv.URL)
		cfg.Temperature = 0
		client, err := NewOpenAIClient(cfg, srv.Client())
		require.NoError(t, err)

		_, err = client.CreateMessage(context.Background(), &Request{Messages: []Message{NewUserMessage("hi")}})
		require.NoError(t, err)

		temp, ok := gotBody["temperature"]
		require.True(t, ok, "temperature 0 means deterministic sampling, not provider default")
		assert.Equal(t, 0.0, temp)
	})

	t.Run("empty choices", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		t.Cleanup(srv.Close)

		client, err := NewOpenAIClient(testLLMConfig(srv.URL), srv.Client())
		require.NoError(t, err)

		_, err = client.CreateMessage(context.Background(), &Request{Messages: []Message{NewUserMessage("hi")}})
		require.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("bearer token sent when key set", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
		}))
		t.Cleanup(srv.Close)

		t.Setenv("TEST_LLM_KEY", "sk-test")
		cfg := testLLMConfig(srv.URL)
		cfg.APIKeyEnv = "TEST_LLM_KEY"
		client, err := NewOpenAIClient(cfg, srv.Client())
		require.NoError(t, err)

		_, err = client.CreateMessage(context.Background(), &Request{Messages: []Message{NewUserMessage("hi")}})
		require.NoError(t, err)
		assert.Equal(t, "Bearer sk-test", gotAuth)
	})
}

func TestOpenAIClient_ErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"bad request", http.StatusBadRequest, ErrBadRequest},
		{"unprocessable", http.StatusUnprocessableEntity, ErrBadRequest},
		{"unauthorized", http.StatusUnauthorized, ErrAuthentication},
		{"forbidden", http.StatusForbidden, ErrAuthentication},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope"}}`))
			}))
			t.Cleanup(srv.Close)

			client, err := NewOpenAIClient(testLLMConfig(srv.URL), srv.Client())
			require.NoError(t, err)

			_, err = client.CreateMessage(context.Background(), &Request{Messages: []Message{NewUserMessage("hi")}})
			require.ErrorIs(t, err, tc.wantErr)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Contains(t, apiErr.Body, "nope")
		})
	}
}

func TestNewOpenAIClient_MissingAPIKey(t *testing.T) {
	cfg := testLLMConfig("http://localhost:9999")
	cfg.APIKeyEnv = "AURITE_TEST_KEY_THAT_IS_NOT_SET"
	_, err := NewOpenAIClient(cfg, nil)
	require.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Contains(t, err.Error(), "AURITE_TEST_KEY_THAT_IS_NOT_SET")
}

func TestNewClient_Providers(t *testing.T) {
	t.Run("openai default base URL", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		client, err := NewClient(&config.LLMConfig{
			Name: "gpt", Provider: "openai", Model: "gpt-4", APIKeyEnv: "OPENAI_API_KEY",
		}, nil)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("ollama needs no key", func(t *testing.T) {
		t.Parallel()
		client, err := NewClient(&config.LLMConfig{
			Name: "local", Provider: "ollama", Model: "llama3",
		}, nil)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("openai-compatible requires base_url", func(t *testing.T) {
		t.Parallel()
		_, err := NewClient(&config.LLMConfig{
			Name: "gw", Provider: "openai-compatible", Model: "m",
		}, nil)
		require.ErrorIs(t, err, ErrBadRequest)
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Parallel()
		_, err := NewClient(&config.LLMConfig{
			Name: "x", Provider: "parrot", Model: "m",
		}, nil)
		require.ErrorIs(t, err, ErrUnknownProvider)
	})
}
