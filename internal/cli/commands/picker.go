package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/leapstack-labs/ifclint/internal/pairs"
)

// pairPicker is a bubbletea model that asks which model set to check.
type pairPicker struct {
	pairs  []pairs.Pair
	input  textinput.Model
	chosen pairs.Pair
	errMsg string
	done   bool
}

func newPairPicker(ps []pairs.Pair) pairPicker {
	ti := textinput.New()
	ti.Placeholder = "number or prefix"
	ti.CharLimit = 128
	ti.Focus()
	return pairPicker{pairs: ps, input: ti}
}

func (m pairPicker) Init() tea.Cmd {
	return textinput.Blink
}

func (m pairPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			p, err := pairs.Select(m.pairs, m.input.Value())
			if err != nil {
				m.errMsg = err.Error()
				m.input.Reset()
				return m, nil
			}
			m.chosen, m.done = p, true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m pairPicker) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString("Model sets:\n")
	for i, p := range m.pairs {
		fmt.Fprintf(&b, "  %2d. %-24s %s\n", i+1, p.Prefix, pairFiles(p))
	}
	fmt.Fprintf(&b, "\nCheck which set? %s\n", m.input.View())
	if m.errMsg != "" {
		fmt.Fprintf(&b, "  %s\n", m.errMsg)
	}
	return b.String()
}

// pairFiles summarises which discipline models a set has.
func pairFiles(p pairs.Pair) string {
	var parts []string
	for _, f := range []struct{ label, path string }{
		{"STR", p.Structural},
		{"ARCH", p.Architectural},
		{"MEP", p.MEP},
		{"model", p.Other},
	} {
		if f.path != "" {
			parts = append(parts, f.label+"="+filepath.Base(f.path))
		}
	}
	return strings.Join(parts, " ")
}

// pickPair runs the picker and returns the chosen set.
func pickPair(ps []pairs.Pair) (pairs.Pair, error) {
	result, err := tea.NewProgram(newPairPicker(ps)).Run()
	if err != nil {
		return pairs.Pair{}, err
	}
	final, ok := result.(pairPicker)
	if !ok || !final.done {
		return pairs.Pair{}, fmt.Errorf("selection cancelled")
	}
	return final.chosen, nil
}
