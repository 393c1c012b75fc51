package fancy

import (
	"fmt"
	"strings"

	"github.com/aurite-ai/aurite-go/internal/agent"
	"github.com/aurite-ai/aurite-go/internal/config"
	"github.com/aurite-ai/aurite-go/internal/llm"
)

// ConfigTree renders a project configuration as a styled tree.
func ConfigTree(cfg *config.Config) string {
	root := Tree().Root(RootStyle.Render("aurite"))

	agents := BranchNode("Agents", fmt.Sprintf("(%d)", len(cfg.Agents)))
	for _, a := range cfg.Agents {
		node := agents.Child(AgentStyle.Render(a.Name))
		node.Child(InfoStyle.Render("llm: " + a.LLM))
		if len(a.MCPServers) > 0 {
			node.Child(InfoStyle.Render("servers: " + strings.Join(a.MCPServers, ", ")))
		} else {
			node.Child(InfoStyle.Render("servers: none"))
		}
	}
	root.Child(agents)

	llms := BranchNode("LLMs", fmt.Sprintf("(%d)", len(cfg.LLMs)))
	for _, l := range cfg.LLMs {
		llms.Child(fmt.Sprintf("%s %s", ToolStyle.Render(l.Name),
			InfoStyle.Render(fmt.Sprintf("(%s/%s)", l.Provider, l.Model))))
	}
	root.Child(llms)

	servers := BranchNode("MCP Servers", fmt.Sprintf("(%d)", len(cfg.MCPServers)))
	for _, s := range cfg.MCPServers {
		servers.Child(fmt.Sprintf("%s %s", ToolStyle.Render(s.Name),
			InfoStyle.Render("("+s.Transport+")")))
	}
	root.Child(servers)

	return root.String()
}

// RunResultView renders an agent run result for terminal display.
func RunResultView(result *agent.RunResult) string {
	var b strings.Builder

	statusStyle := SuccessStyle
	switch result.Status {
	case agent.StatusError:
		statusStyle = ErrorStyle
	case agent.StatusMaxIterations:
		statusStyle = WarnStyle
	}

	b.WriteString(AgentStyle.Render(result.AgentName))
	b.WriteString(" ")
	b.WriteString(statusStyle.Render(string(result.Status)))
	b.WriteString(InfoStyle.Render(fmt.Sprintf(" (%d iterations, run %s)",
		result.Iterations, result.RunID)))
	b.WriteString("\n")

	if result.FinalResponse != "" {
		b.WriteString(result.FinalResponse)
		b.WriteString("\n")
	}
	if result.ErrorMessage != "" {
		b.WriteString(ErrorStyle.Render(result.ErrorMessage))
		b.WriteString("\n")
	}
	return b.String()
}

// HistoryView renders a conversation transcript, one line per message.
func HistoryView(msgs []llm.Message) string {
	var b strings.Builder
	for _, msg := range msgs {
		switch msg.Role {
		case llm.RoleTool:
			b.WriteString(ToolStyle.Render(fmt.Sprintf("[tool %s]", msg.ToolName)))
			b.WriteString(" ")
			b.WriteString(TruncateString(msg.Content, 120))
		case llm.RoleAssistant:
			b.WriteString(HeaderStyle.Render("[assistant]"))
			b.WriteString(" ")
			if len(msg.ToolCalls) > 0 {
				names := make([]string, len(msg.ToolCalls))
				for i, tc := range msg.ToolCalls {
					names[i] = tc.Name
				}
				b.WriteString(InfoStyle.Render("calling " + strings.Join(names, ", ")))
			} else {
				b.WriteString(msg.Content)
			}
		default:
			b.WriteString(HeaderStyle.Render("[" + string(msg.Role) + "]"))
			b.WriteString(" ")
			b.WriteString(msg.Content)
		}
		b.WriteString("\n")
	}
	return b.String()
}
