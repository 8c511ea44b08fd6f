// ABOUTME: Entry point for the memoui notes CLI
// ABOUTME: Bootstraps the notes store and dispatches init, show, edit, share and version

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"

	"github.com/2389/memoui/internal/bootstrap"
	"github.com/2389/memoui/internal/config"
	"github.com/2389/memoui/internal/session"
	"github.com/2389/memoui/internal/share"
	"github.com/2389/memoui/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

// getConfigPath returns the path to the memoui config file.
// Priority: MEMOUI_CONFIG env var > XDG_CONFIG_HOME/memoui/config.yaml > ~/.config/memoui/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("MEMOUI_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "memoui", "config.yaml")
}

// getDataPath returns the path to the memoui data directory.
// Priority: XDG_DATA_HOME/memoui > ~/.local/share/memoui
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "memoui")
}

func usage() {
	fmt.Println("Usage: memoui <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init [--force]              Write a default config file")
	fmt.Println("  show                        Print every tab")
	fmt.Println("  edit                        Edit notes interactively (autosaves)")
	fmt.Println("  share [--html] [--out FILE] Export the focused note")
	fmt.Println("  version                     Print the version")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	args := os.Args[2:]

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit(args)
	case "show":
		err = runShow(ctx)
	case "edit":
		err = runEdit(ctx)
	case "share":
		err = runShare(ctx, args)
	case "version":
		fmt.Printf("memoui %s\n", version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to defaults when none exists.
func loadConfig() (*config.Config, string, error) {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Default(getDataPath())
		if envPath := os.Getenv("MEMOUI_DB_PATH"); envPath != "" {
			cfg.Database.Path = envPath
		}
		return cfg, configPath, nil
	}
	if err != nil {
		return nil, configPath, fmt.Errorf("loading config: %w", err)
	}
	return cfg, configPath, nil
}

// notes bundles an opened store with its ready session.
type notes struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.SQLiteStore
	session *session.Session
}

// openNotes opens the database and runs startup. On failure the
// user-facing notice is printed and the store is closed.
func openNotes(ctx context.Context) (*notes, error) {
	cfg, configPath, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := setupLogger(cfg.Logging)
	logger.Debug("loaded config", "config", configPath, "database", cfg.Database.Path)

	st, err := store.Open(ctx, cfg.Database.Path)
	if err != nil {
		printNotice(noticeForOpen(err))
		return nil, fmt.Errorf("opening store: %w", err)
	}

	ctrl := bootstrap.New(st, bootstrap.Options{
		Tabs:             cfg.Slides.Tabs,
		RequireSelection: cfg.RequireSelection(),
		Logger:           logger,
	})
	sess, err := ctrl.Start(ctx)
	if err != nil {
		printNotice(ctrl.Notice())
		_ = st.Close()
		return nil, err
	}

	return &notes{cfg: cfg, logger: logger, store: st, session: sess}, nil
}

func (n *notes) Close() error {
	return n.store.Close()
}

func noticeForOpen(err error) string {
	if errors.Is(err, store.ErrVersionConflict) {
		return "Your notes are open in another session, or were saved by a newer memoui."
	}
	return "Your notes could not be opened."
}

func printNotice(msg string) {
	if msg == "" {
		return
	}
	red := color.New(color.FgRed, color.Bold)
	red.Fprintln(os.Stderr, msg)
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	force := fs.Bool("force", false, "Overwrite an existing config file")
	dbPath := fs.String("db", filepath.Join(getDataPath(), config.DefaultDatabaseFile), "SQLite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	outputFile := getConfigPath()
	if _, err := os.Stat(outputFile); err == nil && !*force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", outputFile)
	}

	data, err := config.DefaultYAML(*dbPath)
	if err != nil {
		return fmt.Errorf("rendering config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	content := append([]byte("# memoui configuration\n# Generated by memoui init\n\n"), data...)
	if err := atomic.WriteFile(outputFile, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Print("✓ ")
	fmt.Printf("Config written to %s\n", outputFile)
	return nil
}

func runShow(ctx context.Context) error {
	n, err := openNotes(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	printSlides(os.Stdout, n.session)
	return nil
}

// printSlides writes every tab, marking the focused one.
func printSlides(w io.Writer, sess *session.Session) {
	cyan := color.New(color.FgCyan, color.Bold)
	gray := color.New(color.FgHiBlack)
	active := sess.ActiveSlide()

	for _, v := range sess.Slides() {
		marker := "  "
		if v.Index == active {
			marker = "▶ "
		}
		fmt.Fprint(w, marker)
		cyan.Fprintf(w, "[%d] %s\n", v.Index+1, v.Title)
		if strings.TrimSpace(v.Text) == "" {
			gray.Fprintln(w, "    (empty)")
			continue
		}
		for _, line := range strings.Split(v.Text, "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
}

func runShare(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("share", flag.ContinueOnError)
	asHTML := fs.Bool("html", false, "Render the note as HTML")
	out := fs.String("out", "", "Write to FILE instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	n, err := openNotes(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	note, err := share.Slide(n.session)
	if err != nil {
		return err
	}

	content := share.PlainText(note)
	if *asHTML {
		if content, err = share.RenderHTML(note); err != nil {
			return err
		}
	}

	if *out == "" {
		fmt.Print(content)
		return nil
	}
	if err := atomic.WriteFile(*out, strings.NewReader(content)); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	n.logger.Info("shared note", "title", note.Title, "out", *out)
	return nil
}
