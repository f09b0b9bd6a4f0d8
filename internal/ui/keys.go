package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"tasklanes/internal/config"
)

type keyMap struct {
	Quit      key.Binding
	Add       key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Toggle    key.Binding
	Sort      key.Binding
	Search    key.Binding
	Edit      key.Binding
	Delete    key.Binding
	NextField key.Binding
	PrevField key.Binding
	Save      key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
	Yes       key.Binding
	No        key.Binding
}

func newKeyMap(k config.Keymap) keyMap {
	return keyMap{
		Quit:      binding("quit", k.Quit, "ctrl+c"),
		Add:       binding("add", k.Add),
		Up:        binding("up", k.Up, "up"),
		Down:      binding("down", k.Down, "down"),
		Left:      binding("lane left", k.Left, "left"),
		Right:     binding("lane right", k.Right, "right"),
		Toggle:    binding("check", k.Toggle),
		Sort:      binding("sort", k.Sort),
		Search:    binding("search", k.Search),
		Edit:      binding("edit", k.Edit),
		Delete:    binding("delete", k.Delete),
		NextField: binding("next field", k.NextField),
		PrevField: binding("prev field", "shift+tab"),
		Save:      binding("save", k.Save),
		Confirm:   binding("confirm", k.Confirm),
		Cancel:    binding("cancel", k.Cancel),
		Yes:       binding("yes", "y", "Y"),
		No:        binding("no", "n", "N"),
	}
}

func binding(desc string, keys ...string) key.Binding {
	var ks []string
	for _, k := range keys {
		if k != "" {
			ks = append(ks, k)
		}
	}
	return key.NewBinding(key.WithKeys(ks...), key.WithHelp(helpLabel(ks), desc))
}

func helpLabel(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	if keys[0] == " " {
		return "space"
	}
	return keys[0]
}

func renderHelp(pairs ...key.Binding) string {
	parts := make([]string, 0, len(pairs))
	for _, b := range pairs {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
