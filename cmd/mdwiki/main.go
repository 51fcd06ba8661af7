package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/stefanpenner/mdwiki/pkg/config"
	"github.com/stefanpenner/mdwiki/pkg/settings"
	"github.com/stefanpenner/mdwiki/pkg/store"
	gsync "github.com/stefanpenner/mdwiki/pkg/sync"
	"github.com/stefanpenner/mdwiki/pkg/tui"
	"github.com/stefanpenner/mdwiki/pkg/wiki"
)

var version = "dev"

// app is what every command needs after flags are parsed.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	dataDir string
	json    bool
	closeFn func() error
}

func setup(cmd *cli.Command) (*app, error) {
	dataDir := settings.DefaultDataDir()

	configPath := cmd.String("config")
	if configPath == "" {
		configPath = settings.ConfigPath(dataDir)
	}
	cfg := config.NewDefaultConfig()
	if err := config.LoadOrDefault(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	logger, closeFn, err := newLogger(cfg.Log, dataDir)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:     cfg,
		logger:  logger,
		dataDir: dataDir,
		json:    cmd.Bool("json"),
		closeFn: closeFn,
	}, nil
}

// newLogger writes text logs to the configured file. The terminal belongs to
// the TUI.
func newLogger(c config.LogConfig, dataDir string) (*slog.Logger, func() error, error) {
	path := c.File
	if path == "" {
		path = settings.LogPath(dataDir)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: c.Level})
	return slog.New(h), f.Close, nil
}

func (a *app) recent() *settings.File {
	return &settings.File{Path: settings.SettingsPath(a.dataDir)}
}

func (a *app) close() {
	if a.closeFn != nil {
		_ = a.closeFn()
	}
}

func runTUI(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	opts := []tui.Option{
		tui.WithConfig(a.cfg),
		tui.WithLogger(a.logger),
		tui.WithRecent(a.recent()),
		tui.WithVersion(version),
	}

	var w *tui.Watcher
	if a.cfg.Watch {
		w, err = tui.NewWatcher(a.logger)
		if err != nil {
			a.logger.Warn("file watcher unavailable", slog.String("error", err.Error()))
		} else {
			defer w.Close()
			opts = append(opts, tui.WithWatcher(w))
		}
	}

	m := tui.NewModel(cmd.Args().First(), opts...)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if w != nil {
		w.Start(p.Send)
	}

	a.logger.Info("starting", slog.String("version", version))
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func runResolve(_ context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	target := cmd.Args().First()
	if target == "" {
		return fmt.Errorf("usage: mdwiki resolve <target> [--from file] [--root dir]")
	}
	root := cmd.String("root")
	if root == "" {
		s, err := a.recent().Load()
		if err != nil {
			return err
		}
		root = s.MostRecent()
	}
	if root == "" {
		return fmt.Errorf("no wiki root: pass --root or open a folder in the TUI first")
	}

	from := cmd.String("from")
	if from != "" {
		if from, err = filepath.Abs(from); err != nil {
			return err
		}
	}

	path, rerr := wiki.Resolve(target, from, root)
	if a.json {
		out := map[string]any{"target": target, "root": root}
		if rerr != nil {
			out["error"] = rerr.Error()
			out["reason"] = reasonName(rerr)
		} else {
			out["path"] = path
		}
		return outputJSON(out)
	}
	if rerr != nil {
		return rerr
	}
	fmt.Println(path)
	return nil
}

func reasonName(err error) string {
	switch {
	case errors.Is(err, wiki.ErrMalformed):
		return "malformed"
	case errors.Is(err, wiki.ErrOutsideRoot):
		return "outside_root"
	case errors.Is(err, wiki.ErrNotFound):
		return "not_found"
	}
	return "error"
}

func runLinks(_ context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	file := cmd.Args().First()
	if file == "" {
		return fmt.Errorf("usage: mdwiki links <file> [--root dir]")
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return err
	}
	root := cmd.String("root")
	if root == "" {
		root = filepath.Dir(abs)
	}

	type linkOut struct {
		Label  string `json:"label"`
		Target string `json:"target"`
		Path   string `json:"path,omitempty"`
		Error  string `json:"error,omitempty"`
	}
	var links []linkOut
	for _, l := range wiki.ExtractLinks(string(data)) {
		out := linkOut{Label: l.Label, Target: l.Target}
		if p, err := wiki.Resolve(l.Target, abs, root); err != nil {
			out.Error = reasonName(err)
		} else {
			out.Path = p
		}
		links = append(links, out)
	}

	title := store.DocumentTitle(abs, string(data))
	if a.json {
		return outputJSON(map[string]any{"file": abs, "title": title, "links": links})
	}

	fmt.Println(title)
	if len(links) == 0 {
		fmt.Println("No links.")
		return nil
	}
	for _, l := range links {
		status := "✓"
		if l.Error != "" {
			status = "✗ " + l.Error
		}
		fmt.Printf("  [%s](%s) %s\n", l.Label, l.Target, status)
	}
	return nil
}

func runRecent(_ context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	folders, err := a.recent().Recent()
	if err != nil {
		return err
	}
	if a.json {
		if folders == nil {
			folders = []string{}
		}
		return outputJSON(folders)
	}
	if len(folders) == 0 {
		fmt.Println("No recent folders.")
		return nil
	}
	for i, f := range folders {
		fmt.Printf("%d. %s\n", i+1, f)
	}
	return nil
}

func runRender(_ context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	file := cmd.Args().First()
	if file == "" {
		return fmt.Errorf("usage: mdwiki render <file>")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	_, body, err := store.ParseFrontmatter(string(data))
	if err != nil {
		a.logger.Warn("frontmatter ignored", slog.String("file", file), slog.String("error", err.Error()))
	}

	wrap := a.cfg.Preview.WordWrap
	if wrap == 0 {
		wrap = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(a.cfg.Preview.Style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(body)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", file, err)
	}
	fmt.Print(out)
	return nil
}

func runSync(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	dir := cmd.Args().First()
	if dir == "" {
		s, err := a.recent().Load()
		if err != nil {
			return err
		}
		dir = s.MostRecent()
	}
	if dir == "" {
		return fmt.Errorf("usage: mdwiki sync [--remote url] <dir>")
	}

	if remote := cmd.String("remote"); remote != "" {
		if err := gsync.SetRemote(ctx, dir, remote, a.logger); err != nil {
			return err
		}
	}
	res, err := gsync.SyncRepo(ctx, dir, a.logger)
	if err != nil {
		return err
	}
	if a.json {
		return outputJSON(res)
	}
	fmt.Println(res.Summary())
	return nil
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	rootFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:  "root",
			Usage: "Wiki folder",
		}
	}

	cmd := &cli.Command{
		Name:      "mdwiki",
		Usage:     "Terminal markdown wiki with sandboxed link navigation",
		Version:   version,
		ArgsUsage: "[dir]",
		Action:    runTUI,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "<data dir>/config.yaml",
				Sources:     cli.EnvVars("MDWIKI_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "JSON output",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "resolve",
				Usage:     "Resolve a link target inside a wiki",
				ArgsUsage: "<target>",
				Action:    runResolve,
				Flags: []cli.Flag{
					rootFlag(),
					&cli.StringFlag{
						Name:  "from",
						Usage: "File the link appears in",
					},
				},
			},
			{
				Name:      "links",
				Usage:     "List the links of a markdown file and whether they resolve",
				ArgsUsage: "<file>",
				Action:    runLinks,
				Flags:     []cli.Flag{rootFlag()},
			},
			{
				Name:   "recent",
				Usage:  "List recently opened wiki folders",
				Action: runRecent,
			},
			{
				Name:      "render",
				Usage:     "Render a markdown file to the terminal",
				ArgsUsage: "<file>",
				Action:    runRender,
			},
			{
				Name:      "sync",
				Usage:     "Commit, pull and push a wiki folder with git",
				ArgsUsage: "[dir]",
				Action:    runSync,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "remote",
						Usage: "Set origin before syncing",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
