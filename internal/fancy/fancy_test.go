package fancy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aurite-ai/aurite-go/internal/agent"
	"github.com/aurite-ai/aurite-go/internal/config"
	"github.com/aurite-ai/aurite-go/internal/fancy"
	"github.com/aurite-ai/aurite-go/internal/llm"
)

func TestTree(t *testing.T) {
	tree := fancy.Tree()
	assert.NotNil(t, tree)

	tree.Root("Root Node")
	child := tree.Child("Child Node")
	child.Child("Grandchild")

	treeString := tree.String()
	assert.Contains(t, treeString, "Root Node")
	assert.Contains(t, treeString, "Child Node")
	assert.Contains(t, treeString, "Grandchild")
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", fancy.TruncateString("short", 10))
	assert.Equal(t, "very lo...", fancy.TruncateString("very long string", 10))
}

func TestConfigTree(t *testing.T) {
	cfg := &config.Config{
		Agents: []*config.AgentConfig{
			{Name: "weather_agent", LLM: "default", MCPServers: []string{"weather_server"}},
			{Name: "plain_agent", LLM: "default"},
		},
		LLMs: []*config.LLMConfig{
			{Name: "default", Provider: "openai", Model: "gpt-4"},
		},
		MCPServers: []*config.ServerConfig{
			{Name: "weather_server", Transport: config.TransportStdio},
		},
	}

	out := fancy.ConfigTree(cfg)
	assert.Contains(t, out, "weather_agent")
	assert.Contains(t, out, "plain_agent")
	assert.Contains(t, out, "gpt-4")
	assert.Contains(t, out, "weather_server")
	assert.Contains(t, out, "servers: none")
}

func TestRunResultView(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		out := fancy.RunResultView(&agent.RunResult{
			RunID:         "run-1",
			AgentName:     "weather_agent",
			Status:        agent.StatusSuccess,
			FinalResponse: "It is 15C.",
			Iterations:    2,
		})
		assert.Contains(t, out, "weather_agent")
		assert.Contains(t, out, "success")
		assert.Contains(t, out, "It is 15C.")
	})

	t.Run("error", func(t *testing.T) {
		out := fancy.RunResultView(&agent.RunResult{
			RunID:        "run-2",
			AgentName:    "weather_agent",
			Status:       agent.StatusError,
			ErrorMessage: "model call: boom",
			Iterations:   1,
		})
		assert.Contains(t, out, "error")
		assert.Contains(t, out, "model call: boom")
	})
}

func TestHistoryView(t *testing.T) {
	msgs := []llm.Message{
		llm.NewUserMessage("weather?"),
		{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{{ID: "c1", Name: "weather_server-weather_lookup"}}},
		llm.NewToolResultMessage("c1", "weather_server-weather_lookup", "15C"),
		{Role: llm.RoleAssistant, Content: "It is 15C."},
	}
	out := fancy.HistoryView(msgs)
	assert.Contains(t, out, "[user]")
	assert.Contains(t, out, "calling weather_server-weather_lookup")
	assert.Contains(t, out, "[tool weather_server-weather_lookup]")
	assert.Contains(t, out, "It is 15C.")
}
