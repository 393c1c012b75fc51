package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/aurite-ai/aurite-go/internal/agent"
	"github.com/aurite-ai/aurite-go/internal/config"
	"github.com/aurite-ai/aurite-go/internal/fancy"
	"github.com/aurite-ai/aurite-go/internal/history"
	"github.com/aurite-ai/aurite-go/internal/host"
	"github.com/aurite-ai/aurite-go/internal/llm"
)

var runCmd = &cli.Command{
	Name:      "run",
	Usage:     "Run an agent with a user message",
	ArgsUsage: "<agent-name> <message>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the project configuration file",
			Value:   "aurite.toml",
		},
		&cli.StringFlag{
			Name:    "session",
			Aliases: []string{"s"},
			Usage:   "Session ID; the conversation is persisted and resumed under this ID",
		},
		&cli.StringFlag{
			Name:  "db",
			Usage: "Path to the session history database",
			Value: ".aurite/history.db",
		},
		&cli.BoolFlag{
			Name:  "show-history",
			Usage: "Print the full conversation transcript after the run",
		},
	},
	Suggest: true,
	Action:  runAction,
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 2 {
		return fmt.Errorf("usage: aurite run <agent-name> <message>")
	}
	agentName := cmd.Args().Get(0)
	message := strings.Join(cmd.Args().Slice()[1:], " ")

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// The config's log_level applies unless the flag was given explicitly.
	if cfg.LogLevel != "" && !cmd.Root().IsSet("log-level") {
		SetupLogger(cfg.LogLevel, cmd.Root().String("log-format"))
	}
	store := config.NewStore(cfg)

	agentCfg, ok := store.Agent(agentName)
	if !ok {
		return fmt.Errorf("unknown agent %q (available: %s)",
			agentName, strings.Join(store.AgentNames(), ", "))
	}

	llmCfg, ok := store.LLM(agentCfg.LLM)
	if !ok {
		return fmt.Errorf("agent %q references unknown LLM %q", agentName, agentCfg.LLM)
	}
	client, err := llm.NewClient(llmCfg, nil)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	logHandler := slog.Default().Handler()

	mcpHost := host.New(host.WithLogHandler(logHandler))
	defer mcpHost.Close()

	for _, serverName := range agentCfg.MCPServers {
		serverCfg, ok := store.Server(serverName)
		if !ok {
			return fmt.Errorf("agent %q references unknown MCP server %q", agentName, serverName)
		}
		if err := mcpHost.RegisterServer(ctx, serverCfg); err != nil {
			return fmt.Errorf("failed to register MCP server %q: %w", serverName, err)
		}
	}

	a, err := agent.New(agentCfg, client, mcpHost, agent.WithLogHandler(logHandler))
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	// A session ID turns on persistence: prior messages seed the run, and
	// the run's additions are appended afterwards.
	var (
		sessionID    = cmd.String("session")
		sessionStore *history.Store
		prior        []llm.Message
	)
	if sessionID != "" {
		sessionStore, err = history.New(cmd.String("db"))
		if err != nil {
			return fmt.Errorf("failed to open session store: %w", err)
		}
		defer sessionStore.Close()

		if err := sessionStore.EnsureSession(ctx, sessionID, agentName); err != nil {
			return err
		}
		prior, err = sessionStore.Messages(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to load session history: %w", err)
		}
	}

	result, err := a.RunWithHistory(ctx, prior, message)
	if err != nil {
		return err
	}

	if sessionStore != nil {
		if err := sessionStore.AppendMessages(ctx, sessionID, result.History[len(prior):]); err != nil {
			return fmt.Errorf("failed to persist session messages: %w", err)
		}
		if err := sessionStore.SaveRun(ctx, sessionID, result); err != nil {
			return fmt.Errorf("failed to persist run record: %w", err)
		}
	}

	if cmd.Bool("show-history") {
		fmt.Print(fancy.HistoryView(result.History))
		fmt.Println()
	}
	fmt.Print(fancy.RunResultView(result))

	if !result.Succeeded() {
		return cli.Exit("", 1)
	}
	return nil
}
