// Copyright (c) 2025 Tong Gia Bao (BaroDev)
// SPDX-License-Identifier: MIT

// Package cli provides the line-oriented chat REPL and the history
// listing command. It drives the same orchestrator as the TUI.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/barodev/chatcv-tui/internal/config"
	"github.com/barodev/chatcv-tui/internal/orchestrator"
	"github.com/barodev/chatcv-tui/internal/store"
	"github.com/barodev/chatcv-tui/internal/util"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A78BFA")).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7C3AED")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24"))

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5E7EB"))
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// inputLine wraps liner with persistent input history.
type inputLine struct {
	line        *liner.State
	historyFile string
}

func newInputLine() *inputLine {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.Dir()
	if err != nil {
		dir = os.TempDir()
	}

	il := &inputLine{
		line:        line,
		historyFile: filepath.Join(dir, "repl_history"),
	}
	if f, err := os.Open(il.historyFile); err == nil {
		il.line.ReadHistory(f)
		f.Close()
	}
	return il
}

func (il *inputLine) read(prompt string) (string, error) {
	input, err := il.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		il.line.AppendHistory(input)
	}
	return input, nil
}

func (il *inputLine) close() {
	if err := config.EnsureDir(); err == nil {
		if f, err := os.OpenFile(il.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			il.line.WriteHistory(f)
			f.Close()
		}
	}
	il.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// REPL is the interactive line-oriented chat session.
type REPL struct {
	orch     *orchestrator.Orchestrator
	cfg      *config.Config
	out      io.Writer
	renderer *glamour.TermRenderer

	// lastListing maps 1-based indexes of the last /history output to
	// chat ids, so /load and /delete can take a short number.
	lastListing []string
}

// NewREPL wires a REPL over an orchestrator.
func NewREPL(orch *orchestrator.Orchestrator, cfg *config.Config, out io.Writer) *REPL {
	r := &REPL{orch: orch, cfg: cfg, out: out}
	if cfg.UI.Markdown {
		if renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		); err == nil {
			r.renderer = renderer
		}
	}
	return r
}

// Run drives the REPL until /quit or EOF.
func (r *REPL) Run(ctx context.Context) error {
	il := newInputLine()
	defer il.close()

	fmt.Fprintln(r.out, welcomeStyle.Render("ChatCV — chat with my portfolio"))
	fmt.Fprintln(r.out, infoStyle.Render("Type /help for commands."))
	fmt.Fprintln(r.out)

	for {
		if !r.orch.State().ModeSet() {
			if done := r.pickMode(il); done {
				return nil
			}
			continue
		}

		input, err := il.read(promptStyle.Render("you> "))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, "/") {
			if quit := r.dispatch(ctx, trimmed); quit {
				return nil
			}
			continue
		}

		r.send(ctx, trimmed)
	}
}

// pickMode prompts until a valid mode is selected. Returns true on EOF.
func (r *REPL) pickMode(il *inputLine) bool {
	fmt.Fprintln(r.out, "Who do you want to talk to?")
	for i, mode := range modesInOrder() {
		fmt.Fprintf(r.out, "  [%d] %s %s — %s\n", i+1, mode.marker, mode.display, mode.desc)
	}

	input, err := il.read(promptStyle.Render("mode> "))
	if err != nil {
		return true
	}

	name := resolveModeChoice(strings.TrimSpace(input))
	if err := r.orch.ChangeMode(name); err != nil {
		fmt.Fprintln(r.out, warningStyle.Render(err.Error()))
		return false
	}

	mode := r.orch.State().Mode()
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, infoStyle.Render(mode.Description()))
	fmt.Fprintln(r.out, infoStyle.Render("Try: "+strings.Join(mode.Examples(), " | ")))
	fmt.Fprintln(r.out)
	return false
}

// send runs one synchronous round trip and prints the outcome.
func (r *REPL) send(ctx context.Context, text string) {
	out, err := r.orch.SendMessage(ctx, text)
	if err != nil {
		var warn *orchestrator.Warning
		if errors.As(err, &warn) {
			fmt.Fprintln(r.out, warningStyle.Render(warn.Text))
		}
		return
	}

	if out.ErrorText != "" {
		fmt.Fprintln(r.out, warningStyle.Render(out.ErrorText))
		return
	}

	fmt.Fprintln(r.out, r.renderAnswer(out.Answer))
	if len(out.Suggestions) > 0 {
		fmt.Fprintln(r.out, infoStyle.Render("Suggested: "+strings.Join(out.Suggestions, " | ")))
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) renderAnswer(answer string) string {
	if r.renderer != nil {
		if rendered, err := r.renderer.Render(answer); err == nil {
			return strings.TrimRight(rendered, "\n")
		}
	}
	return answerStyle.Render(answer)
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// dispatch handles a slash command. Returns true when the REPL should
// exit.
func (r *REPL) dispatch(ctx context.Context, input string) bool {
	cmd, arg := parseCommand(input)

	switch cmd {
	case "help", "h":
		r.printHelp()

	case "mode", "m":
		if arg == "" {
			fmt.Fprintln(r.out, infoStyle.Render("Current mode: "+string(r.orch.State().Mode())))
			return false
		}
		if err := r.orch.ChangeMode(arg); err != nil {
			fmt.Fprintln(r.out, warningStyle.Render(err.Error()))
		}

	case "new", "n":
		r.orch.StartNewChat()
		fmt.Fprintln(r.out, infoStyle.Render("Started a fresh conversation."))

	case "history":
		r.lastListing = WriteHistory(r.out, r.orch.Store(), r.cfg.Storage.RecentLimit)

	case "load":
		if id, ok := r.resolveChatArg(arg); ok {
			if c, err := r.orch.LoadChatFromHistory(id); err != nil {
				fmt.Fprintln(r.out, warningStyle.Render("Chat not found."))
			} else {
				fmt.Fprintln(r.out, infoStyle.Render("Resumed: "+c.Title))
				r.replay()
			}
		}

	case "delete", "del":
		if id, ok := r.resolveChatArg(arg); ok {
			r.orch.DeleteChatFromHistory(id)
			fmt.Fprintln(r.out, infoStyle.Render("Deleted."))
		}

	case "clear":
		r.orch.ClearAllHistory()
		fmt.Fprintln(r.out, infoStyle.Render("All chats deleted."))

	case "quit", "q", "exit":
		return true

	default:
		fmt.Fprintln(r.out, warningStyle.Render("Unknown command. Type /help."))
	}
	return false
}

// resolveChatArg turns a /load or /delete argument into a chat id: a
// small number indexes the last /history listing, anything else is taken
// as a raw id.
func (r *REPL) resolveChatArg(arg string) (string, bool) {
	if arg == "" {
		fmt.Fprintln(r.out, warningStyle.Render("Give a number from /history or a chat id."))
		return "", false
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(r.lastListing) {
			fmt.Fprintln(r.out, warningStyle.Render("No such entry; run /history first."))
			return "", false
		}
		return r.lastListing[n-1], true
	}
	return arg, true
}

// replay prints the loaded conversation so the user sees where they were.
func (r *REPL) replay() {
	for _, msg := range r.orch.State().History() {
		if msg.Role == "user" {
			fmt.Fprintln(r.out, promptStyle.Render("you> ")+msg.Content)
		} else {
			fmt.Fprintln(r.out, r.renderAnswer(msg.Content))
		}
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) printHelp() {
	help := []struct{ cmd, desc string }{
		{"/mode [cv|digital-twin]", "show or switch the chat mode (switching starts fresh)"},
		{"/new", "start a new conversation"},
		{"/history", "list recent chats"},
		{"/load <n|id>", "resume a chat from /history"},
		{"/delete <n|id>", "delete a chat"},
		{"/clear", "delete all chats"},
		{"/quit", "exit"},
	}
	for _, h := range help {
		fmt.Fprintf(r.out, "  %s  %s\n", util.PadRight(h.cmd, 26), infoStyle.Render(h.desc))
	}
}

// parseCommand splits "/cmd arg words" into its name and argument.
func parseCommand(input string) (cmd, arg string) {
	input = strings.TrimPrefix(input, "/")
	parts := strings.SplitN(input, " ", 2)
	cmd = strings.ToLower(parts[0])
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}
	return cmd, arg
}

// =============================================================================
// MODE CHOICES
// =============================================================================

type modeChoice struct {
	name    string
	display string
	marker  string
	desc    string
}

func modesInOrder() []modeChoice {
	return []modeChoice{
		{name: "cv", display: "CV Ask", marker: "💼", desc: "ask about experience, skills and projects"},
		{name: "digital-twin", display: "Digital Twin", marker: "🤖", desc: "chat with the digital twin persona"},
	}
}

// resolveModeChoice accepts a menu number or a mode name.
func resolveModeChoice(input string) string {
	modes := modesInOrder()
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(modes) {
		return modes[n-1].name
	}
	return input
}

// =============================================================================
// HISTORY LISTING
// =============================================================================

// WriteHistory prints the recent chat listing and returns the ids in
// display order, for short-number addressing.
func WriteHistory(out io.Writer, st *store.ConversationStore, limit int) []string {
	chats := st.ListRecent(limit)
	if len(chats) == 0 {
		fmt.Fprintln(out, infoStyle.Render("No past chats."))
		return nil
	}

	ids := make([]string, len(chats))
	for i, c := range chats {
		ids[i] = c.ID
		marker := " "
		if c.ID == st.CurrentID() {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %2d. %s  %s  %s\n",
			marker,
			i+1,
			util.PadRight(util.TruncateWidth(c.Title, 44), 44),
			util.PadRight(util.RelativeTime(c.LastUpdated), 10),
			infoStyle.Render(fmt.Sprintf("%d messages", len(c.Messages))),
		)
	}
	return ids
}
