package display

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Select   key.Binding
	Toggle   key.Binding
	Back     key.Binding
	Quit     key.Binding
	Kill     key.Binding
	Next     key.Binding
	Prev     key.Binding
	Search   key.Binding
	More     key.Binding
	Map      key.Binding
	Logout   key.Binding
	Register key.Binding
	Reviews  key.Binding
	Narrate  key.Binding
	Go       key.Binding
	Copy     key.Binding
	Submit   key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev step")),
	Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next step")),
	Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Toggle:   key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "tick")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	Kill:     key.NewBinding(key.WithKeys("ctrl+c")),
	Next:     key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	Prev:     key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	More:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view more/less")),
	Map:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "supermarkets")),
	Logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
	Register: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "sign up")),
	Reviews:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reviews")),
	Narrate:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "read step")),
	Go:       key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "let's go")),
	Copy:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy link")),
	Submit:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "post review")),
}
