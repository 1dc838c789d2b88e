// Package results turns translations into launcher result items, each with
// an action that copies its text to the clipboard.
package results

import (
	"fmt"

	"github.com/minios-linux/quicktrans/i18n"
	"github.com/minios-linux/quicktrans/tokenize"
)

// Namer renders language codes for display. langmeta.Catalog implements it.
type Namer interface {
	Name(code string) string
}

// Clipboard replaces the current clipboard text.
type Clipboard interface {
	WriteAll(text string) error
}

// Action is a host-invokable operation bound to one item.
type Action struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	// Run performs the action.
	Run func() error `json:"-"`
}

// Item is one result row shown by the host.
type Item struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Subtext string   `json:"subtext"`
	Actions []Action `json:"actions"`
}

// Builder creates items for one plugin. It holds no per-query state.
type Builder struct {
	// ID prefixes item and action IDs ("<ID>/copy").
	ID        string
	Names     Namer
	Clipboard Clipboard
}

// Build returns one item per translation, in order.
func (b *Builder) Build(translations []string, q tokenize.Query) []Item {
	subtext := b.subtext(q)
	copyID := b.ID + "/copy"

	items := make([]Item, 0, len(translations))
	for _, text := range translations {
		text := text
		items = append(items, Item{
			ID:      copyID,
			Text:    text,
			Subtext: subtext,
			Actions: []Action{{
				ID:   copyID,
				Text: i18n.T("Copy result to clipboard"),
				Run:  func() error { return b.Clipboard.WriteAll(text) },
			}},
		})
	}
	return items
}

// subtext is not localized: the language names it carries are English.
func (b *Builder) subtext(q tokenize.Query) string {
	if q.HasSource() {
		return fmt.Sprintf("From %s to %s", b.Names.Name(q.Source), b.Names.Name(q.Target))
	}
	return fmt.Sprintf("To %s", b.Names.Name(q.Target))
}
