// ABOUTME: Interactive note editor running the autosave loop in the background
// ABOUTME: Every edit goes through the session; quitting flushes before the store closes

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/2389/memoui/internal/autosave"
	"github.com/2389/memoui/internal/session"
	"github.com/2389/memoui/internal/share"
)

var editCommands = []string{"tabs", "tab", "set", "append", "clear", "show", "share", "help", "quit"}

// historyFile returns the path for the editor's command history.
func historyFile() string {
	return filepath.Join(getDataPath(), "history")
}

func runEdit(ctx context.Context) error {
	n, err := openNotes(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	yellow := color.New(color.FgYellow, color.Bold)
	loop := autosave.New(n.session, n.store, autosave.Options{
		Interval:      n.cfg.Autosave.Interval,
		EscalateAfter: n.cfg.EscalateThreshold(),
		Logger:        n.logger,
		OnEscalate: func(failures int, err error) {
			yellow.Fprintf(os.Stderr, "\nYour notes have not been saved for %d attempts; still retrying.\n", failures)
		},
	})

	loopCtx, stopLoop := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = loop.Run(loopCtx)
	}()

	replErr := newEditor(n.session).run(ctx)

	stopLoop()
	wg.Wait()

	// The loop context is gone, so flush on a fresh one.
	if err := loop.Flush(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("final save failed: %w", err)
	}
	return replErr
}

// editor is a line-oriented front end over a session.
type editor struct {
	session *session.Session
	line    *liner.State
	out     io.Writer
}

func newEditor(s *session.Session) *editor {
	return &editor{session: s, out: os.Stdout}
}

func (e *editor) run(ctx context.Context) error {
	e.line = liner.NewLiner()
	defer e.line.Close()

	e.line.SetCtrlCAborts(true)
	e.line.SetCompleter(func(line string) []string {
		var c []string
		for _, cmd := range editCommands {
			if strings.HasPrefix(cmd, strings.ToLower(line)) {
				c = append(c, cmd)
			}
		}
		return c
	})

	if f, err := os.Open(historyFile()); err == nil {
		_, _ = e.line.ReadHistory(f)
		f.Close()
	}
	defer e.saveHistory()

	fmt.Fprintln(e.out, "memoui editor. Type 'help' for commands.")

	for {
		if ctx.Err() != nil {
			return nil
		}

		input, err := e.line.Prompt(e.prompt())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(e.out)
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		e.line.AppendHistory(input)

		if done := e.exec(input); done {
			return nil
		}
	}
}

func (e *editor) prompt() string {
	views := e.session.Slides()
	idx := e.session.ActiveSlide()
	if idx < 0 || idx >= len(views) {
		return "memoui> "
	}
	return fmt.Sprintf("memoui [%s]> ", views[idx].Title)
}

// exec runs one command line and reports whether the editor should exit.
func (e *editor) exec(input string) bool {
	cmd, rest, _ := strings.Cut(input, " ")
	cmd = strings.ToLower(cmd)

	var err error
	switch cmd {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		e.printHelp()
	case "tabs":
		e.printTabs()
	case "tab":
		err = e.cmdTab(rest)
	case "set":
		err = e.editFocused(func(string) string { return unescape(rest) })
	case "append":
		err = e.editFocused(func(cur string) string {
			if cur == "" {
				return unescape(rest)
			}
			return cur + "\n" + unescape(rest)
		})
	case "clear":
		err = e.editFocused(func(string) string { return "" })
	case "show":
		printSlides(e.out, e.session)
	case "share":
		var note share.Note
		if note, err = share.Slide(e.session); err == nil {
			fmt.Fprint(e.out, share.PlainText(note))
		}
	default:
		fmt.Fprintf(e.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}

	if err != nil {
		color.New(color.FgRed).Fprintf(e.out, "error: %v\n", err)
	}
	return false
}

func (e *editor) cmdTab(arg string) error {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return fmt.Errorf("usage: tab N")
	}
	return e.session.ActiveSlideChanged(n - 1)
}

// editFocused rewrites the focused tab's text with fn.
func (e *editor) editFocused(fn func(current string) string) error {
	idx := e.session.ActiveSlide()
	views := e.session.Slides()
	if idx < 0 || idx >= len(views) {
		return fmt.Errorf("no tab selected (use 'tab N')")
	}
	return e.session.TextEdited(idx, fn(views[idx].Text))
}

func (e *editor) printTabs() {
	active := e.session.ActiveSlide()
	for _, v := range e.session.Slides() {
		marker := " "
		if v.Index == active {
			marker = "*"
		}
		fmt.Fprintf(e.out, "%s %d %s\n", marker, v.Index+1, v.Title)
	}
}

func (e *editor) printHelp() {
	fmt.Fprintln(e.out, "Commands:")
	fmt.Fprintln(e.out, "  tabs           List tabs")
	fmt.Fprintln(e.out, "  tab N          Focus tab N")
	fmt.Fprintln(e.out, "  set TEXT       Replace the focused note (\\n for newlines)")
	fmt.Fprintln(e.out, "  append TEXT    Add a line to the focused note")
	fmt.Fprintln(e.out, "  clear          Empty the focused note")
	fmt.Fprintln(e.out, "  show           Print every tab")
	fmt.Fprintln(e.out, "  share          Print the focused note for sharing")
	fmt.Fprintln(e.out, "  quit           Save and exit")
}

func (e *editor) saveHistory() {
	path := historyFile()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}
	if f, err := os.Create(path); err == nil {
		_, _ = e.line.WriteHistory(f)
		f.Close()
	}
}

func unescape(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
