package device

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var boundsRe = regexp.MustCompile(`^\[(-?\d+),(-?\d+)\]\[(-?\d+),(-?\d+)\]$`)

// Element is one widget from a uiautomator hierarchy dump.
type Element struct {
	Text       string
	ResourceID string
	Bounds     Bounds
}

// Bounds is a widget rectangle in screen pixels.
type Bounds struct {
	X1, Y1, X2, Y2 int
}

func (b Bounds) Center() (int, int) {
	return (b.X1 + b.X2) / 2, (b.Y1 + b.Y2) / 2
}

// ParseHierarchy extracts every node of a uiautomator XML dump in
// document order. Nodes without valid bounds are skipped.
func ParseHierarchy(dump string) ([]Element, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(dump))
	if err != nil {
		return nil, fmt.Errorf("parse hierarchy: %w", err)
	}

	var out []Element
	doc.Find("node").Each(func(_ int, s *goquery.Selection) {
		b, ok := parseBounds(s.AttrOr("bounds", ""))
		if !ok {
			return
		}
		out = append(out, Element{
			Text:       s.AttrOr("text", ""),
			ResourceID: s.AttrOr("resource-id", ""),
			Bounds:     b,
		})
	})

	if len(out) == 0 {
		return nil, fmt.Errorf("parse hierarchy: no nodes found")
	}
	return out, nil
}

func parseBounds(s string) (Bounds, bool) {
	m := boundsRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Bounds{}, false
	}

	var v [4]int
	for i := range v {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Bounds{}, false
		}
		v[i] = n
	}
	return Bounds{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}, true
}

// ByText returns the elements whose text equals text.
func ByText(els []Element, text string) []Element {
	var out []Element
	for _, e := range els {
		if e.Text == text {
			out = append(out, e)
		}
	}
	return out
}

// ByResourceID returns the elements with the given resource id.
func ByResourceID(els []Element, id string) []Element {
	var out []Element
	for _, e := range els {
		if e.ResourceID == id {
			out = append(out, e)
		}
	}
	return out
}
