package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/deepnoodle-ai/wonton/tui"
	"github.com/mitchellh/go-homedir"

	"github.com/deepnoodle-ai/lox"
)

const historyFileName = ".lox_history"

var (
	promptColor = tui.RGB{R: 250, G: 180, B: 80}
	mutedColor  = tui.RGB{R: 140, G: 140, B: 155}
)

// replLine classifies what the REPL prints to the scrollback.
type replLine int

const (
	lineInput replLine = iota
	lineOutput
	lineError
)

// replApp implements tui.InlineApplication for the interactive REPL.
type replApp struct {
	ctx         context.Context
	interpret   func(ctx context.Context, line string) (string, error)
	emit        func(kind replLine, text string)
	input       string
	cursorPos   int
	history     []string
	historyIdx  int
	historyPath string
}

func newReplApp(ctx context.Context, interpret func(context.Context, string) (string, error), historyPath string) *replApp {
	return &replApp{
		ctx:         ctx,
		interpret:   interpret,
		emit:        func(replLine, string) {},
		history:     loadHistory(historyPath),
		historyIdx:  -1,
		historyPath: historyPath,
	}
}

// runInteractiveRepl runs the REPL on the terminal with line editing and
// history kept in ~/.lox_history.
func (a *app) runInteractiveRepl(ctx context.Context) error {
	repl := newReplApp(ctx, a.interpretLine, historyFile())
	runner := tui.NewInlineApp(tui.InlineAppConfig{
		BracketedPaste: true,
	})
	repl.emit = func(kind replLine, text string) {
		switch kind {
		case lineInput:
			runner.Print(tui.Group(
				tui.Text("> ").Style(tui.NewStyle().WithFgRGB(promptColor).WithBold()),
				tui.Text("%s", text),
			))
		case lineError:
			runner.Print(tui.Text("%s", text).Fg(tui.ColorRed).Wrap())
		default:
			runner.Print(tui.Text("%s", text).Wrap())
		}
	}
	runner.Print(tui.Text("%s", replBanner).Style(tui.NewStyle().WithFgRGB(mutedColor)))
	return runner.Run(repl)
}

// interpretLine runs one REPL line and returns what it printed.
func (a *app) interpretLine(ctx context.Context, line string) (string, error) {
	var out bytes.Buffer
	err := lox.Interpret(ctx, line, a.loxOptions(&out, &out)...)
	return out.String(), err
}

// LiveView returns the prompt view for the live region.
func (r *replApp) LiveView() tui.View {
	inputRunes := []rune(r.input)
	var beforeCursor, cursorChar, afterCursor string
	if r.cursorPos < len(inputRunes) {
		beforeCursor = string(inputRunes[:r.cursorPos])
		cursorChar = string(inputRunes[r.cursorPos])
		afterCursor = string(inputRunes[r.cursorPos+1:])
	} else {
		beforeCursor = r.input
		cursorChar = " "
	}
	return tui.Group(
		tui.Text("> ").Style(tui.NewStyle().WithFgRGB(promptColor).WithBold()),
		tui.Text("%s", beforeCursor),
		tui.Text("%s", cursorChar).Reverse(),
		tui.Text("%s", afterCursor),
	)
}

// HandleEvent processes keyboard events.
func (r *replApp) HandleEvent(event tui.Event) []tui.Cmd {
	keyEvent, ok := event.(tui.KeyEvent)
	if !ok {
		return nil
	}
	if keyEvent.Paste != "" {
		r.insertString(keyEvent.Paste)
		return nil
	}

	switch keyEvent.Key {
	case tui.KeyEnter:
		return r.submit()

	case tui.KeyCtrlC:
		// Clear input if not empty, otherwise quit
		if len(r.input) > 0 {
			r.input = ""
			r.cursorPos = 0
			r.historyIdx = -1
			return nil
		}
		return []tui.Cmd{tui.Quit()}

	case tui.KeyCtrlD:
		if len(r.input) == 0 {
			return []tui.Cmd{tui.Quit()}
		}
		r.deleteChar()

	case tui.KeyBackspace:
		r.backspace()

	case tui.KeyArrowLeft:
		if r.cursorPos > 0 {
			r.cursorPos--
		}

	case tui.KeyArrowRight:
		if r.cursorPos < len([]rune(r.input)) {
			r.cursorPos++
		}

	case tui.KeyHome, tui.KeyCtrlA:
		r.cursorPos = 0

	case tui.KeyEnd, tui.KeyCtrlE:
		r.cursorPos = len([]rune(r.input))

	case tui.KeyCtrlU:
		r.input = ""
		r.cursorPos = 0

	case tui.KeyArrowUp:
		r.historyUp()

	case tui.KeyArrowDown:
		r.historyDown()

	default:
		if keyEvent.Rune != 0 {
			r.insertRune(keyEvent.Rune)
		}
	}
	return nil
}

func (r *replApp) submit() []tui.Cmd {
	line := strings.TrimSpace(r.input)
	r.input = ""
	r.cursorPos = 0
	r.historyIdx = -1
	if line == "" {
		return nil
	}
	if line == ":quit" || line == ":exit" {
		return []tui.Cmd{tui.Quit()}
	}

	r.emit(lineInput, line)
	r.history = append(r.history, line)
	appendToHistory(r.historyPath, line)

	output, err := r.interpret(r.ctx, line)
	for _, text := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
		if text != "" {
			r.emit(lineOutput, text)
		}
	}
	if err != nil {
		r.emit(lineError, describeError(err))
	}
	return nil
}

func (r *replApp) insertRune(c rune) {
	inputRunes := []rune(r.input)
	inputRunes = append(inputRunes[:r.cursorPos], append([]rune{c}, inputRunes[r.cursorPos:]...)...)
	r.input = string(inputRunes)
	r.cursorPos++
	r.historyIdx = -1
}

func (r *replApp) insertString(s string) {
	for _, c := range s {
		r.insertRune(c)
	}
}

func (r *replApp) backspace() {
	if r.cursorPos > 0 {
		inputRunes := []rune(r.input)
		inputRunes = append(inputRunes[:r.cursorPos-1], inputRunes[r.cursorPos:]...)
		r.input = string(inputRunes)
		r.cursorPos--
		r.historyIdx = -1
	}
}

func (r *replApp) deleteChar() {
	inputRunes := []rune(r.input)
	if r.cursorPos < len(inputRunes) {
		inputRunes = append(inputRunes[:r.cursorPos], inputRunes[r.cursorPos+1:]...)
		r.input = string(inputRunes)
	}
}

func (r *replApp) historyUp() {
	if len(r.history) == 0 {
		return
	}
	if r.historyIdx == -1 {
		r.historyIdx = len(r.history)
	}
	if r.historyIdx > 0 {
		r.historyIdx--
		r.input = r.history[r.historyIdx]
		r.cursorPos = len([]rune(r.input))
	}
}

func (r *replApp) historyDown() {
	if r.historyIdx == -1 {
		return
	}
	r.historyIdx++
	if r.historyIdx >= len(r.history) {
		r.input = ""
		r.historyIdx = -1
	} else {
		r.input = r.history[r.historyIdx]
	}
	r.cursorPos = len([]rune(r.input))
}

func historyFile() string {
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFileName)
}

func loadHistory(path string) []string {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	lines := strings.Split(string(data), "\n")
	history := make([]string, 0, len(lines))
	for _, line := range lines {
		if line != "" {
			history = append(history, line)
		}
	}
	return history
}

func appendToHistory(path, line string) {
	if path == "" || line == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	f.WriteString(line + "\n")
}
