package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/handmade/internal/registry"
)

// MenuItem represents a selectable module in the menu.
type MenuItem struct {
	ModuleID string
	Title    string
}

// MenuModel is the Bubble Tea model for the module picker.
type MenuModel struct {
	items        []MenuItem
	cursor       int
	width        int
	height       int
	quitting     bool
	selected     *MenuItem // Set when user selects a module
	openSessions bool      // True if user pressed Tab for the session list
}

// NewMenuModel lists every registered module except the stub.
func NewMenuModel(width, height int) MenuModel {
	modules := registry.List()
	items := make([]MenuItem, 0, len(modules))
	for _, m := range modules {
		if m.ID == registry.StubID {
			continue
		}
		items = append(items, MenuItem{ModuleID: m.ID, Title: m.Title})
	}

	return MenuModel{
		items:  items,
		width:  width,
		height: height,
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, tea.Quit // Exit menu to start the module
		}

	case MenuActionSessions:
		m.openSessions = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText("  H A N D M A D E  ", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Select a module", m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%-10s %s", cursor, item.ModuleID, item.Title)
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Run  |  Tab: Sessions  |  Q: Quit"
	b.WriteString(centerText(controls, m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsSessions returns true if user asked for the session list.
func (m MenuModel) WantsSessions() bool {
	return m.openSessions
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	if len(text) >= width {
		return text
	}
	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}

// MenuResult is what the user picked in a standalone menu run.
type MenuResult struct {
	ModuleID      string
	Quit          bool
	WantsSessions bool
	Width         int
	Height        int
}

// RunMenu shows the module picker and blocks until the user chooses.
func RunMenu(width, height int) (MenuResult, error) {
	p := tea.NewProgram(NewMenuModel(width, height), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return MenuResult{Quit: true}, err
	}

	m, ok := final.(MenuModel)
	if !ok {
		return MenuResult{Quit: true}, nil
	}
	res := MenuResult{
		Quit:          m.IsQuitting(),
		WantsSessions: m.WantsSessions(),
		Width:         m.width,
		Height:        m.height,
	}
	if sel := m.Selected(); sel != nil {
		res.ModuleID = sel.ModuleID
	}
	return res, nil
}
