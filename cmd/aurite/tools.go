package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robbyt/go-supervisor/supervisor"
	"github.com/urfave/cli/v3"

	"github.com/aurite-ai/aurite-go/internal/config"
	"github.com/aurite-ai/aurite-go/internal/fancy"
	"github.com/aurite-ai/aurite-go/internal/host"
	"github.com/aurite-ai/aurite-go/internal/toolserver"
)

var toolsCmd = &cli.Command{
	Name:  "tools",
	Usage: "Serve and inspect MCP tools",
	Commands: []*cli.Command{
		toolsServeCmd,
		toolsListCmd,
	},
}

var toolsServeCmd = &cli.Command{
	Name:  "serve",
	Usage: "Serve the builtin tool server over HTTP",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "listen",
			Aliases: []string{"l"},
			Usage:   "Address to bind the MCP endpoint",
			Value:   "127.0.0.1:8765",
		},
	},
	Action: toolsServeAction,
}

func toolsServeAction(ctx context.Context, cmd *cli.Command) error {
	logHandler := slog.Default().Handler()

	runner, err := toolserver.NewRunner(
		cmd.String("listen"),
		toolserver.WithContext(ctx),
		toolserver.WithLogHandler(logHandler),
	)
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to create tool server: %w", err), 1)
	}

	super, err := supervisor.New(
		supervisor.WithContext(ctx),
		supervisor.WithLogHandler(logHandler),
		supervisor.WithRunnables(runner),
	)
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to create supervisor: %w", err), 1)
	}
	if err := super.Run(); err != nil {
		return cli.Exit(fmt.Errorf("failed to run tool server: %w", err), 1)
	}

	slog.Info("Tool server shutdown complete")
	return nil
}

var toolsListCmd = &cli.Command{
	Name:  "list",
	Usage: "Connect to the configured MCP servers and list their tools",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the project configuration file",
			Value:   "aurite.toml",
		},
		&cli.StringFlag{
			Name:  "capability",
			Usage: "Only list tools tagged with this capability",
		},
	},
	Action: toolsListAction,
}

func toolsListAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	mcpHost := host.New(host.WithLogHandler(slog.Default().Handler()))
	defer mcpHost.Close()

	for _, serverCfg := range cfg.MCPServers {
		if err := mcpHost.RegisterServer(ctx, serverCfg); err != nil {
			return fmt.Errorf("failed to register MCP server %q: %w", serverCfg.Name, err)
		}
	}

	tools := mcpHost.Tools()

	if capability := cmd.String("capability"); capability != "" {
		tagged := make(map[string]struct{})
		for _, name := range mcpHost.FindToolByCapability(capability) {
			tagged[name] = struct{}{}
		}
		filtered := tools[:0]
		for _, tool := range tools {
			if _, ok := tagged[tool.Name]; ok {
				filtered = append(filtered, tool)
			}
		}
		tools = filtered
	}

	root := fancy.Tree().Root(fancy.RootStyle.Render("tools"))
	node := fancy.BranchNode("Available", fmt.Sprintf("(%d)", len(tools)))
	for _, tool := range tools {
		node.Child(fmt.Sprintf("%s %s",
			fancy.ToolStyle.Render(tool.Name),
			fancy.InfoStyle.Render(fancy.TruncateString(tool.Description, 80))))
	}
	root.Child(node)
	fmt.Println(root.String())
	return nil
}
