package inbox

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the inbox TUI.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Answer  key.Binding // Open the composer for the selected request.
	Approve key.Binding // Permission requests only.
	Deny    key.Binding // Permission requests only.
	Refresh key.Binding
	Submit  key.Binding // Composer: send the answer.
	Cancel  key.Binding // Composer: discard and go back to the list.
	Quit    key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// (j/k) alongside standard arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Answer: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "answer"),
	),
	Approve: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "approve"),
	),
	Deny: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "deny"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("C-d", "send"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
