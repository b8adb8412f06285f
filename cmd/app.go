package cmd

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/danielolaszy/spira/internal/config"
	"github.com/danielolaszy/spira/internal/logging"
	"github.com/danielolaszy/spira/internal/panel"
	"github.com/danielolaszy/spira/internal/spira"
	"github.com/danielolaszy/spira/internal/view"
)

// app bundles what every command needs to talk to the server and draw the panel.
type app struct {
	client     *spira.Client
	controller *panel.Controller
	renderer   *view.Renderer
}

// newApp loads configuration and wires the REST client to a panel controller.
func newApp(cmd *cobra.Command) (*app, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}
	format, err := view.ParseFormat(output)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.LogFile {
		level, err := logLevel(cmd)
		if err != nil {
			return nil, err
		}
		f, err := logging.SetupFileLogger(cmd.ErrOrStderr(), level, "spira")
		if err != nil {
			return nil, err
		}
		logFile = f
	}

	client, err := spira.NewClient(cfg.Spira)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize spira client: %w", err)
	}

	return &app{
		client:     client,
		controller: panel.NewController(client.BaseURL(), spira.ResolveURL),
		renderer:   view.NewRenderer(cmd.OutOrStdout(), format),
	}, nil
}

// activate loads the panel behind a spinner and reports failed kinds.
// It only returns an error when nothing at all could be loaded.
func (a *app) activate(cmd *cobra.Command) (panel.Result, error) {
	bar := newSpinner(cmd, "Fetching assigned artifacts")
	result := a.controller.Activate(cmd.Context(), a.client)
	finishBar(bar)

	for _, f := range result.Failures {
		logging.Warn("artifact kind unavailable", "kind", f.Kind, "error", f.Err)
	}

	if result.AllFailed() {
		return result, fmt.Errorf("failed to load any assigned artifacts: %w", result.Err())
	}
	return result, nil
}

func newSpinner(cmd *cobra.Command, description string) *progressbar.ProgressBar {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	_ = bar.RenderBlank()
	return bar
}

func finishBar(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Finish()
	}
}
