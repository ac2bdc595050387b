package cmd

import (
	"os"

	"github.com/shellpm/spm/src/internal/config"
	"github.com/shellpm/spm/src/internal/download"
	"github.com/shellpm/spm/src/internal/gitfetch"
	"github.com/shellpm/spm/src/internal/local"
	"github.com/shellpm/spm/src/internal/shell"
	"github.com/shellpm/spm/src/internal/source"
	"github.com/shellpm/spm/src/internal/store"
	"github.com/shellpm/spm/src/internal/ui"
)

// environment is the layout and settings a command runs against
type environment struct {
	paths    *config.Paths
	settings *config.Settings
	runner   shell.Runner
}

// newRunner builds the script runner; tests replace it
var newRunner = func() shell.Runner { return shell.NewExecRunner() }

func loadEnvironment() (*environment, error) {
	paths := config.DefaultPaths()
	settings, err := config.LoadSettings(paths)
	if err != nil {
		return nil, err
	}
	if settings.Verbose {
		ui.SetVerbose(true)
	}
	ui.Logger().Debug("loaded settings", "root", paths.Root, "base_url", settings.BaseURL)
	return &environment{paths: paths, settings: settings, runner: newRunner()}, nil
}

func (e *environment) store() *store.Store {
	return store.New(e.paths, e.runner, store.WithStrictLookup(e.settings.StrictLookup))
}

func (e *environment) fetcher() *gitfetch.Service {
	opts := []gitfetch.Option{gitfetch.WithTimeout(e.settings.FetchTimeout)}
	if ui.IsVerbose() {
		opts = append(opts, gitfetch.WithProgress(os.Stderr))
	}
	return gitfetch.New(e.paths.Tmp, opts...)
}

// resolver expands user/repo specs against baseURL, or the configured base when empty
func (e *environment) resolver(baseURL string) *source.Resolver {
	if baseURL == "" {
		baseURL = e.settings.BaseURL
	}
	return source.NewResolver(e.fetcher(), download.NewClient(), e.paths.Tmp, baseURL)
}

func (e *environment) local(continueOnError bool) *local.Operations {
	return local.New(e.paths, e.fetcher(),
		local.WithContinueOnError(continueOnError || e.settings.RefreshContinueOnError))
}

func (e *environment) defaultInterpreter() shell.Interpreter {
	interp, err := shell.Parse(e.settings.DefaultInterpreter)
	if err != nil {
		ui.Warning("Ignoring default_interpreter: %v", err)
		return shell.Sh
	}
	return interp
}
