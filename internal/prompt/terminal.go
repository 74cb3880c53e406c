package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	listWidth     = 60
	maxListHeight = 20
)

var (
	labelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	answerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
)

// Terminal runs one bubbletea program per question.
type Terminal struct {
	in  io.Reader
	out io.Writer
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out}
}

func (t *Terminal) Ask(ctx context.Context, questions ...Question) (Answers, error) {
	return Collect(ctx, t.askOne, questions...)
}

func (t *Terminal) askOne(ctx context.Context, q Question) (string, error) {
	program := tea.NewProgram(
		newQuestionModel(q),
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
	)

	final, err := program.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return "", ErrAborted
		}
		return "", fmt.Errorf("ask %s: %w", q.Key, err)
	}

	m, ok := final.(questionModel)
	if !ok || !m.done {
		return "", ErrAborted
	}
	return m.answer, nil
}

// choiceItem adapts Choice to list.Item.
type choiceItem struct {
	choice Choice
}

func (i choiceItem) Title() string       { return i.choice.Label }
func (i choiceItem) Description() string { return "" }
func (i choiceItem) FilterValue() string { return i.choice.Label }

type questionModel struct {
	question Question
	list     list.Model
	input    textinput.Model

	answer  string
	label   string
	errMsg  string
	done    bool
	aborted bool
}

func newQuestionModel(q Question) questionModel {
	m := questionModel{question: q}

	switch q.Kind {
	case KindList:
		items := make([]list.Item, 0, len(q.Choices))
		selected := 0
		for i, c := range q.Choices {
			items = append(items, choiceItem{choice: c})
			if c.Value == q.Default {
				selected = i
			}
		}

		delegate := list.NewDefaultDelegate()
		delegate.ShowDescription = false
		delegate.SetSpacing(0)

		height := len(items) + 6
		if height > maxListHeight {
			height = maxListHeight
		}

		l := list.New(items, delegate, listWidth, height)
		l.Title = q.Label
		l.Styles.Title = labelStyle
		l.SetShowHelp(false)
		l.SetShowStatusBar(false)
		l.SetFilteringEnabled(len(items) > 8)
		l.Filter = fuzzyFilter
		l.KeyMap.Quit.SetEnabled(false)
		l.KeyMap.ForceQuit.SetEnabled(false)
		l.Select(selected)
		m.list = l

	default:
		input := textinput.New()
		input.Placeholder = q.Default
		input.CharLimit = 64
		input.Width = listWidth
		input.Focus()
		m.input = input
	}

	return m
}

func (m questionModel) Init() tea.Cmd {
	if m.question.Kind == KindInput {
		return textinput.Blink
	}
	return nil
}

func (m questionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok && m.question.Kind == KindList {
		m.list.SetWidth(size.Width)
		return m, nil
	}

	key, isKey := msg.(tea.KeyMsg)
	if isKey {
		switch key.Type {
		case tea.KeyCtrlC:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyEsc:
			if m.question.Kind == KindInput || m.list.FilterState() == list.Unfiltered {
				m.aborted = true
				return m, tea.Quit
			}
		case tea.KeyEnter:
			if m.question.Kind == KindList && m.list.FilterState() != list.Filtering {
				return m.submitChoice()
			}
			if m.question.Kind == KindInput {
				return m.submitInput()
			}
		}
	}

	var cmd tea.Cmd
	if m.question.Kind == KindList {
		m.list, cmd = m.list.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
		if isKey {
			m.errMsg = ""
		}
	}
	return m, cmd
}

func (m questionModel) submitChoice() (tea.Model, tea.Cmd) {
	item, ok := m.list.SelectedItem().(choiceItem)
	if !ok {
		return m, nil
	}
	m.answer = item.choice.Value
	m.label = item.choice.Label
	m.done = true
	return m, tea.Quit
}

func (m questionModel) submitInput() (tea.Model, tea.Cmd) {
	value := trimmed(m.input.Value())
	if value == "" {
		value = m.question.Default
	}
	if m.question.Validate != nil {
		if err := m.question.Validate(value); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
	}
	m.answer = value
	m.label = value
	m.done = true
	return m, tea.Quit
}

func (m questionModel) View() string {
	if m.done {
		return labelStyle.Render("? "+m.question.Label) + " " + answerStyle.Render(m.label) + "\n"
	}
	if m.aborted {
		return ""
	}

	if m.question.Kind == KindList {
		return m.list.View() + "\n"
	}

	var sb strings.Builder
	sb.WriteString(labelStyle.Render("? " + m.question.Label))
	sb.WriteString("\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n")
	if m.errMsg != "" {
		sb.WriteString(errorStyle.Render(">> " + m.errMsg))
		sb.WriteString("\n")
	}
	return sb.String()
}

// fuzzyFilter ranks choices by edit distance, ignoring case and accents.
func fuzzyFilter(term string, targets []string) []list.Rank {
	matches := fuzzy.RankFindNormalizedFold(term, targets)
	sort.Stable(matches)

	ranks := make([]list.Rank, 0, len(matches))
	for _, match := range matches {
		ranks = append(ranks, list.Rank{Index: match.OriginalIndex})
	}
	return ranks
}

func trimmed(value string) string {
	return strings.TrimSpace(value)
}
