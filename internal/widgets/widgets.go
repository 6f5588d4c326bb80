// Package widgets answers the UI shell's widget-placement queries.
package widgets

import "sort"

type Location string

const (
	LocationTop    Location = "top"
	LocationBottom Location = "bottom"
	LocationLeft   Location = "left"
	LocationRight  Location = "right"
)

type Section string

const (
	SectionStart Section = "start"
	SectionEnd   Section = "end"
)

// Widget is a descriptor the host's UI composition system places into
// a panel slot.
type Widget struct {
	ID      string `json:"id"`
	Label   string `json:"label,omitempty"`
	Content string `json:"content"`
}

// Provider contributes widgets for panel slots. Widgets must return
// an empty list for every (location, section) pair it has nothing for.
type Provider interface {
	ID() string
	Widgets(loc Location, sec Section) []Widget
}

var reg = map[string]Provider{}

func Register(p Provider) {
	reg[p.ID()] = p
}

// At collects the widgets all registered providers contribute to the
// given slot, in provider-id order.
func At(loc Location, sec Section) []Widget {
	ids := make([]string, 0, len(reg))
	for id := range reg {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := []Widget{}
	for _, id := range ids {
		out = append(out, reg[id].Widgets(loc, sec)...)
	}
	return out
}
