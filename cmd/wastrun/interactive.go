package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wastrun/harness"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	dirStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err        error
	scriptFile string
	total      int
	passed     int
	failed     int
	current    string
	lastErr    string
	done       bool
	fatal      error
	bar        progress.Model
}

func newInteractiveModel(scriptFile string) *interactiveModel {
	return &interactiveModel{
		scriptFile: scriptFile,
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

type stepMsg struct {
	idx, total int
	dir        string
	err        error
}

type doneMsg struct{ err error }

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case stepMsg:
		m.total = msg.total
		m.current = msg.dir
		if msg.err != nil {
			m.failed++
			m.lastErr = msg.err.Error()
		} else {
			m.passed++
		}

	case doneMsg:
		m.done = true
		m.fatal = msg.err
	}
	return m, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("wastrun"))
	b.WriteString(" ")
	b.WriteString(m.scriptFile)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Directives: %d/%d  ", m.passed+m.failed, m.total)
	b.WriteString(passStyle.Render(fmt.Sprintf("%d ok", m.passed)))
	b.WriteString("  ")
	b.WriteString(failStyle.Render(fmt.Sprintf("%d failed", m.failed)))
	b.WriteString("\n")

	var percent float64
	if m.total > 0 {
		percent = float64(m.passed+m.failed) / float64(m.total)
	}
	b.WriteString(m.bar.ViewAs(percent))
	b.WriteString("\n\n")

	if m.current != "" {
		b.WriteString("Current: ")
		b.WriteString(dirStyle.Render(m.current))
		b.WriteString("\n")
	}
	if m.lastErr != "" {
		b.WriteString(failStyle.Render("Last error: " + m.lastErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		if m.fatal != nil {
			b.WriteString(failStyle.Render(fmt.Sprintf("FAIL: %v", m.fatal)))
		} else {
			b.WriteString(passStyle.Render("PASS"))
		}
		b.WriteString("\n\n")
	}
	b.WriteString(helpStyle.Render("q quit"))
	return b.String()
}

// runInteractive runs scriptFile through the driver with a TUI showing
// live pass/fail counts and the directive currently in flight. The driver
// runs in its own goroutine while the Bubble Tea program runs: the
// driver's single OnStep callback sends each stepMsg straight to the
// program with p.Send, and a doneMsg follows when the run ends, since the
// driver itself has no notion of a UI loop.
func runInteractive(scriptFile string, noExhaustion, optimize bool) error {
	ctx := context.Background()

	data, err := os.ReadFile(scriptFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	d, adapter, closeRuntime, err := newDriver(ctx, false)
	if err != nil {
		return fmt.Errorf("create driver: %w", err)
	}
	defer closeRuntime(ctx)

	script, err := adapter.ParseTextScript(string(data))
	if err != nil {
		return fmt.Errorf("parse script: %w", err)
	}

	p := tea.NewProgram(newInteractiveModel(scriptFile))

	d.OnStep(func(idx, total int, dir harness.Directive, stepErr error) {
		p.Send(stepMsg{idx: idx, total: total, dir: directiveLabel(dir), err: stepErr})
	})

	go func() {
		_, runErr := d.Run(ctx, script, noExhaustion, optimize)
		p.Send(doneMsg{err: runErr})
	}()

	_, err = p.Run()
	return err
}

func directiveLabel(dir harness.Directive) string {
	switch v := dir.(type) {
	case harness.TextModule:
		if v.ID != nil {
			return "module $" + *v.ID
		}
		return "module"
	case harness.QuotedModule:
		return "module quote"
	case harness.BinaryModule:
		return "module binary"
	case harness.RegisterDirective:
		return "register " + v.Name
	case harness.ActionDirective:
		return "action"
	case harness.AssertReturnD:
		return "assert_return"
	case harness.AssertTrapD:
		return "assert_trap"
	case harness.AssertExhaustionD:
		return "assert_exhaustion"
	case harness.AssertTrapModuleD:
		return "assert_trap (module)"
	case harness.AssertMalformedD, harness.AssertMalformedBinaryD, harness.AssertMalformedQuoteD:
		return "assert_malformed"
	case harness.AssertInvalidD, harness.AssertInvalidBinaryD, harness.AssertInvalidQuoteD:
		return "assert_invalid"
	case harness.AssertUnlinkableD:
		return "assert_unlinkable"
	default:
		return fmt.Sprintf("%T", dir)
	}
}
