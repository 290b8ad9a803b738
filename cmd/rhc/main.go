package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/rhc/internal/bindings"
	"github.com/unkn0wn-root/rhc/internal/config"
	"github.com/unkn0wn-root/rhc/internal/filesvc"
	"github.com/unkn0wn-root/rhc/internal/history"
	"github.com/unkn0wn-root/rhc/internal/httpclient"
	"github.com/unkn0wn-root/rhc/internal/logger"
	"github.com/unkn0wn-root/rhc/internal/respfmt"
	"github.com/unkn0wn-root/rhc/internal/restfile"
	"github.com/unkn0wn-root/rhc/internal/session"
	"github.com/unkn0wn-root/rhc/internal/telemetry"
	"github.com/unkn0wn-root/rhc/internal/theme"
	"github.com/unkn0wn-root/rhc/internal/ui"
	"github.com/unkn0wn-root/rhc/internal/vars"
)

var version = "dev"

type options struct {
	file          string
	environment   string
	configPath    string
	bindings      []string
	onlyBody      bool
	verbose       bool
	noInteractive bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "rhc",
		Short: "Select, parameterize and send stored HTTP requests",
		Long: heredoc.Doc(`
			rhc keeps reusable request definitions as TOML files and lets you
			fuzzy-pick one, fill in its {variables} and send it.

			Variables are resolved from --binding values first, then the active
			environment, then an interactive prompt. Values typed at the prompt
			are remembered per variable and environment.
		`),
		Example: heredoc.Doc(`
			rhc
			rhc -e staging
			rhc -f ~/rhc/definitions/users/get.toml -b id=42
			rhc -f users.toml -e prod -b id=42 --no-interactive -o | jq .
		`),
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, stdout, stderr)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "request definition file to send, skipping selection")
	flags.StringVarP(&opts.environment, "environment", "e", "", "initial environment, by name or file path")
	flags.StringArrayVarP(&opts.bindings, "binding", "b", nil, "variable binding as key=value (repeatable)")
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default "+config.DefaultPath()+")")
	flags.BoolVarP(&opts.onlyBody, "only-body", "o", false, "print only the response body")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "print request line and response headers, log at debug level")
	flags.BoolVar(&opts.noInteractive, "no-interactive", false, "fail instead of prompting for unresolved variables (requires --file)")
	return cmd
}

var runUI = ui.Run

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	if opts.noInteractive && opts.file == "" {
		return errors.New("--no-interactive requires --file")
	}
	cliBindings, err := parseBindings(opts.bindings)
	if err != nil {
		return err
	}

	cfg, cfgPath, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if opts.verbose {
		level = "debug"
	}
	sessionID := uuid.NewString()
	log, logCloser, err := logger.New(logger.Options{Path: cfg.LogFile, Level: level})
	if err != nil {
		fmt.Fprintf(stderr, "warning: logging disabled: %v\n", err)
		log = logger.NewNop()
	} else {
		defer logCloser.Close()
	}
	log = log.With("session", sessionID)
	log.Info("starting", "version", version, "config", cfgPath)

	keymap, _, err := bindings.Load(config.Dir())
	if err != nil {
		log.Warn("bindings load error", "err", err)
		keymap = bindings.DefaultMap()
	}

	th, err := theme.FromPalette(cfg.Colors)
	if err != nil {
		log.Warn("invalid colors", "err", err)
	}

	envs, err := vars.LoadEnvironments(cfg.EnvironmentDir)
	if err != nil {
		log.Warn("environment load error", "dir", cfg.EnvironmentDir, "err", err)
	}
	envs, active, err := pickEnvironment(envs, opts.environment)
	if err != nil {
		return err
	}

	store, historyCloser := openHistory(cfg, log)
	defer historyCloser.Close()
	// runs on every exit path, including an interrupted UI
	defer func() {
		if err := store.Persist(); err != nil {
			log.Warn("history persist failed", "err", err)
		}
	}()

	candidates, err := loadCandidates(cfg, opts.file)
	if err != nil {
		return err
	}

	sess := session.New(session.Options{
		Candidates:        candidates,
		Environments:      envs,
		ActiveEnvironment: active,
		CLIBindings:       cliBindings,
		History:           store,
	})
	if opts.file != "" {
		if _, err := sess.Select(0); err != nil {
			return err
		}
	}

	if sess.Phase() != session.PhaseTerminated {
		if opts.noInteractive {
			return fmt.Errorf("unresolved variables: %s", strings.Join(sess.Pending(), ", "))
		}
		if _, err := runUI(ctx, ui.Config{
			Session:  sess,
			Bindings: keymap,
			Theme:    &th,
			History:  store,
			Logger:   log,
		}); err != nil {
			return err
		}
	}
	outcome := sess.Outcome()
	if outcome.Kind != session.OutcomeConfirmed {
		log.Info("cancelled")
		return nil
	}
	return send(ctx, cfg, opts, outcome, sessionID, log, stdout)
}

func send(
	ctx context.Context,
	cfg config.Config,
	opts options,
	outcome session.Outcome,
	sessionID string,
	log logger.Logger,
	stdout io.Writer,
) error {
	client := httpclient.NewClient(httpclient.Options{
		ConnectTimeout: cfg.ConnectTimeout(),
		ReadTimeout:    cfg.ReadTimeout(),
		Timeout:        cfg.Timeout(),
	})
	client.SetLogger(log)

	telemetryCfg := telemetry.ConfigFromEnv(nil)
	telemetryCfg.Version = version
	provider, err := telemetry.New(telemetryCfg)
	if err != nil {
		log.Warn("telemetry init error", "err", err)
	} else {
		client.SetTelemetry(provider)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				log.Warn("telemetry shutdown", "err", err)
			}
		}()
	}

	envName := history.NoEnvironment
	if outcome.Environment != nil {
		envName = outcome.Environment.Name
	}
	resp, err := client.Execute(ctx, outcome.Definition, httpclient.RequestInfo{
		Name:        outcome.Candidate.ID,
		Environment: envName,
		SessionID:   sessionID,
	})
	if err != nil {
		return err
	}
	return respfmt.Write(stdout, resp, respfmt.Options{
		OnlyBody: opts.onlyBody,
		Verbose:  opts.verbose,
		Profile:  respfmt.DetectProfile(stdout),
		Style:    cfg.Theme,
	})
}

// parseBindings reads key=value pairs. The value may itself contain '='; a
// later binding for the same key wins.
func parseBindings(raw []string) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for _, item := range raw {
		key, value, ok := strings.Cut(item, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid binding %q: expected key=value", item)
		}
		out[key] = value
	}
	return out, nil
}

// pickEnvironment resolves --environment to an index into envs. A path to
// an environment file outside the environment directory is loaded and
// appended.
func pickEnvironment(envs []*vars.Environment, want string) ([]*vars.Environment, int, error) {
	want = strings.TrimSpace(want)
	if want == "" {
		return envs, -1, nil
	}
	if idx, ok := vars.FindEnvironment(envs, want); ok {
		return envs, idx, nil
	}
	if info, err := os.Stat(want); err == nil && !info.IsDir() {
		env, err := vars.LoadEnvironmentFile(want)
		if err != nil {
			return nil, -1, err
		}
		envs = append(envs, env)
		return envs, len(envs) - 1, nil
	}
	if hint := vars.SuggestEnvironment(envs, want); hint != "" {
		return nil, -1, fmt.Errorf("unknown environment %q (did you mean %q?)", want, hint)
	}
	names := make([]string, len(envs))
	for i, env := range envs {
		names[i] = env.Name
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, -1, fmt.Errorf("unknown environment %q: no environments found", want)
	}
	return nil, -1, fmt.Errorf("unknown environment %q (available: %s)", want, strings.Join(names, ", "))
}

// openHistory never fails: an unusable backend degrades to an in-memory
// store so the session still works.
func openHistory(cfg config.Config, log logger.Logger) (*history.Store, io.Closer) {
	backend, closer, err := history.OpenBackend(cfg.HistoryBackend, cfg.HistoryFile)
	if err != nil {
		log.Warn("history backend unavailable", "backend", cfg.HistoryBackend, "err", err)
		backend, closer = &history.MemoryBackend{}, nopCloser{}
	}
	store := history.NewStore(backend, cfg.MaxHistoryItems)
	if err := store.Load(); err != nil {
		log.Warn("history load error", "path", cfg.HistoryFile, "err", err)
	}
	return store, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func loadCandidates(cfg config.Config, file string) ([]session.Candidate, error) {
	if file != "" {
		def, err := restfile.LoadFile(file)
		if err != nil {
			return nil, err
		}
		return []session.Candidate{{
			ID:          definitionID(cfg.DefinitionDir, file),
			Description: def.Metadata.Description,
			Definition:  def,
		}}, nil
	}

	loaded, err := filesvc.LoadDefinitions(cfg.DefinitionDir)
	if err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}
	if len(loaded) == 0 {
		return nil, fmt.Errorf("no request definitions found in %s", cfg.DefinitionDir)
	}
	out := make([]session.Candidate, 0, len(loaded))
	for _, ld := range loaded {
		c := session.Candidate{ID: ld.Name, Definition: ld.Def, Err: ld.Err}
		if ld.Def != nil {
			c.Description = ld.Def.Metadata.Description
		}
		out = append(out, c)
	}
	return out, nil
}

// definitionID names a file relative to the definitions directory when it
// lives there, matching the names in the selection list.
func definitionID(root, file string) string {
	name := file
	if absRoot, err := filepath.Abs(root); err == nil {
		if absFile, err := filepath.Abs(file); err == nil {
			if rel, err := filepath.Rel(absRoot, absFile); err == nil && !strings.HasPrefix(rel, "..") {
				name = rel
			}
		}
	}
	return filepath.ToSlash(strings.TrimSuffix(name, filepath.Ext(name)))
}
