package alertfeed

import (
	"encoding/xml"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rajasatyajit/bousai/internal/models"
)

// IssuedUnknown is shown when the bulletin carries no usable timestamp
const IssuedUnknown = "不明"

// municipalWarning is the Warning type listing individual municipalities
const municipalWarning = "市町村等"

const issuedLayout = "2006/01/02 15:04"

// localLayout covers timestamps published without an offset
const localLayout = "2006-01-02T15:04:05"

// node is a namespace-agnostic element tree. Bulletins mix several JMA
// namespaces, so matching is done on local names only.
type node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Content string     `xml:",chardata"`
	Nodes   []node `xml:",any"`
}

func (n *node) name() string { return n.XMLName.Local }

func (n *node) text() string { return strings.TrimSpace(n.Content) }

func (n *node) attr(local string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// children returns the direct children with the given local name
func (n *node) children(local string) []*node {
	var out []*node
	for i := range n.Nodes {
		if n.Nodes[i].name() == local {
			out = append(out, &n.Nodes[i])
		}
	}
	return out
}

func (n *node) child(local string) *node {
	for i := range n.Nodes {
		if n.Nodes[i].name() == local {
			return &n.Nodes[i]
		}
	}
	return nil
}

// find returns the first descendant with the given local name in document order
func (n *node) find(local string) *node {
	for i := range n.Nodes {
		c := &n.Nodes[i]
		if c.name() == local {
			return c
		}
		if found := c.find(local); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every descendant with the given local name in document
// order. Matches are not searched further.
func (n *node) findAll(local string) []*node {
	var out []*node
	for i := range n.Nodes {
		c := &n.Nodes[i]
		if c.name() == local {
			out = append(out, c)
			continue
		}
		out = append(out, c.findAll(local)...)
	}
	return out
}

// Document is a parsed warning bulletin
type Document struct {
	Issued string
	Areas  []models.AreaAlert
}

// ParseDocument extracts the issue time and the per-area warning kinds
func ParseDocument(data []byte) (Document, error) {
	var root node
	if err := xml.Unmarshal(data, &root); err != nil {
		return Document{}, fmt.Errorf("parse bulletin: %w", err)
	}

	doc := Document{Issued: IssuedUnknown}
	if ts := root.find("ReportDateTime"); ts != nil {
		doc.Issued = FormatIssued(ts.text())
	}

	warningAreas := root.findAll("WarningArea")
	if len(warningAreas) > 0 {
		doc.Areas = warningAreaAlerts(warningAreas)
	} else {
		doc.Areas = itemAlerts(pickWarning(root.findAll("Warning")))
	}

	return doc, nil
}

func warningAreaAlerts(areas []*node) []models.AreaAlert {
	var out []models.AreaAlert
	for _, wa := range areas {
		var name string
		if n := wa.find("Name"); n != nil {
			name = n.text()
		}

		var kinds []string
		for _, k := range wa.findAll("Kind") {
			kinds = append(kinds, names(k)...)
		}

		out = mergeArea(out, name, kinds)
	}
	return out
}

// pickWarning chooses the one Warning block to read. Prefecture bulletins
// repeat the same areas under several Warning types, so the municipal one
// wins and otherwise the first.
func pickWarning(warnings []*node) *node {
	for _, w := range warnings {
		if strings.Contains(w.attr("type"), municipalWarning) {
			return w
		}
	}
	if len(warnings) > 0 {
		return warnings[0]
	}
	return nil
}

// itemAlerts reads the Warning/Item layout used by the prefecture bulletins
func itemAlerts(w *node) []models.AreaAlert {
	if w == nil {
		return nil
	}

	var out []models.AreaAlert
	for _, item := range w.children("Item") {
		var name string
		if area := item.child("Area"); area != nil {
			if n := area.child("Name"); n != nil {
				name = n.text()
			}
		}

		var kinds []string
		for _, k := range item.children("Kind") {
			kinds = append(kinds, names(k)...)
		}
		out = mergeArea(out, name, kinds)
	}
	return out
}

// mergeArea appends kinds under name, folding repeated areas and kinds into
// their first occurrence. Areas without kinds are dropped.
func mergeArea(out []models.AreaAlert, name string, kinds []string) []models.AreaAlert {
	if len(kinds) == 0 {
		return out
	}

	idx := -1
	for i := range out {
		if out[i].Area == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		out = append(out, models.AreaAlert{Area: name})
		idx = len(out) - 1
	}

	for _, k := range kinds {
		if !slices.Contains(out[idx].Kinds, k) {
			out[idx].Kinds = append(out[idx].Kinds, k)
		}
	}
	return out
}

func names(kind *node) []string {
	var out []string
	for _, n := range kind.children("Name") {
		if t := n.text(); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// FormatIssued turns an RFC 3339 timestamp into "YYYY/MM/DD HH:MM", keeping
// the wall-clock time of the original offset. A timestamp without an offset
// is taken as-is.
func FormatIssued(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, localLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(issuedLayout)
		}
	}
	return IssuedUnknown
}
