// Package tooltip builds the hover card of a country rectangle and places
// it next to the pointer without leaving the chart.
package tooltip

import (
	"strings"

	"github.com/matzehuels/gdpmap/pkg/format"
	"github.com/matzehuels/gdpmap/pkg/hierarchy"
)

// Row keys.
const (
	KeyValue  = "GDP (current US$)"
	KeyChange = "GDP growth (annual %)"
)

// Row is one key/value line of a tooltip.
type Row struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Content is the text of a tooltip.
type Content struct {
	Title string `json:"title"`
	Rows  []Row  `json:"rows"`
}

// For returns the tooltip of a country. Nodes without a growth value get
// no growth row.
func For(n *hierarchy.Node) Content {
	return New(n.Name, n.Value, n.Change)
}

// New returns the tooltip of a named value with an optional growth rate.
func New(title string, value float64, change *float64) Content {
	c := Content{
		Title: title,
		Rows:  []Row{{Key: KeyValue, Value: format.Value(value)}},
	}
	if change != nil {
		c.Rows = append(c.Rows, Row{Key: KeyChange, Value: format.Change(*change)})
	}
	return c
}

// String renders c as plain text, one line per row.
func (c Content) String() string {
	var b strings.Builder
	b.WriteString(c.Title)
	for _, r := range c.Rows {
		b.WriteString("\n")
		b.WriteString(r.Key)
		b.WriteString(": ")
		b.WriteString(r.Value)
	}
	return b.String()
}
