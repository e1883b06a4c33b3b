package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/mario1918/testCaseGenie-NG/common/httpclient"
	"github.com/mario1918/testCaseGenie-NG/common/logger"
	"github.com/mario1918/testCaseGenie-NG/core/config"
	"github.com/mario1918/testCaseGenie-NG/internal/tracker"
	"github.com/mario1918/testCaseGenie-NG/internal/workbench"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeCLI)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.SetupCLI(cfg)

	client := httpclient.New(httpclient.Config{
		MaxRetries: cfg.HTTP.MaxRetries,
		Timeout:    cfg.HTTP.Timeout,
	})

	tr, err := newTracker(cfg, client)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create tracker client: %v\n", err)
		os.Exit(1)
	}

	wb := workbench.New(workbench.Config{
		PageSize:         cfg.Tracker.PageSize,
		BoardID:          cfg.Tracker.BoardID,
		DefaultComponent: cfg.Tracker.DefaultComponent,
	}, workbench.NewRelayClient(cfg.RelayURL, client), tr)

	sh := newShell(wb, os.Stdout, cfg.RelayURL, cfg.Tracker.Provider)
	defer sh.close()

	if err := sh.run(ctx, "health"); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
	}
	fmt.Fprintln(os.Stderr, "Type 'help' for commands, 'quit' to exit.")

	if err := wb.Browser.Reload(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	} else {
		sh.printIssues()
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" || line == "q" {
			break
		}

		if err := sh.run(ctx, line); err != nil {
			fmt.Fprintln(os.Stderr, renderError(err))
		}
	}

	fmt.Fprintln(os.Stderr, "Goodbye!")
}

func newTracker(cfg config.Config, client *retryablehttp.Client) (tracker.Tracker, error) {
	switch cfg.Tracker.Provider {
	case "gitlab":
		return tracker.NewGitLab(tracker.GitLabConfig{
			URL:        cfg.GitLab.URL,
			Token:      cfg.GitLab.Token,
			Project:    cfg.GitLab.Project,
			MaxRetries: cfg.HTTP.MaxRetries,
		})
	case "jira", "":
		return tracker.NewJiraProxy(tracker.JiraProxyConfig{
			BaseURL:    cfg.Tracker.ProxyURL,
			ProjectKey: cfg.Tracker.ProjectKey,
			BoardID:    cfg.Tracker.BoardID,
		}, client), nil
	default:
		return nil, fmt.Errorf("unsupported tracker provider %q", cfg.Tracker.Provider)
	}
}
