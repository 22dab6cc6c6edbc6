// Package goquery implements distill.Extractor on top of goquery and its
// cascadia CSS selector engine.
package goquery

import (
	"iter"

	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/distill"
	"golang.org/x/net/html"
)

// Selector is a compiled CSS selector.
type Selector struct {
	text string
	sel  cascadia.Selector
}

// Compile parses a CSS selector.
// Returns ESELECTOR if the selector is malformed.
//
// goquery's Find silently matches nothing for malformed selectors, so
// compilation goes through cascadia directly to surface the error.
func Compile(text string) (*Selector, error) {
	sel, err := cascadia.Compile(text)
	if err != nil {
		return nil, distill.WrapError(distill.ESELECTOR, err, "invalid selector %q", text)
	}
	return &Selector{text: text, sel: sel}, nil
}

// String returns the selector source text.
func (s *Selector) String() string {
	return s.text
}

// Match yields the elements below scope that match s, in document order.
// The scope element itself is never yielded.
func (s *Selector) Match(scope *html.Node) iter.Seq[*html.Node] {
	return func(yield func(*html.Node) bool) {
		if scope == nil {
			return
		}
		s.walk(scope, yield)
	}
}

// First returns the first element below scope that matches s.
func (s *Selector) First(scope *html.Node) (*html.Node, bool) {
	for n := range s.Match(scope) {
		return n, true
	}
	return nil, false
}

// walk visits descendants of n depth-first in document order.
// It returns false once yield asks to stop.
func (s *Selector) walk(n *html.Node, yield func(*html.Node) bool) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if s.sel.Match(c) && !yield(c) {
			return false
		}
		if !s.walk(c, yield) {
			return false
		}
	}
	return true
}

// selectorCache memoises compiled selectors by source text for a single
// extraction.
type selectorCache map[string]*Selector

func (c selectorCache) compile(text string) (*Selector, error) {
	if s, ok := c[text]; ok {
		return s, nil
	}
	s, err := Compile(text)
	if err != nil {
		return nil, err
	}
	c[text] = s
	return s, nil
}
