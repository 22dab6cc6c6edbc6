package goquery

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/distill"
	"golang.org/x/net/html"
)

// Ensure Extractor implements distill.Extractor at compile time.
var _ distill.Extractor = (*Extractor)(nil)

// Extractor applies templates to HTML using CSS selectors.
//
// Each element matched by an object selector becomes an independent
// extraction root; property selectors only see that root's descendants.
// Extractor holds no state between calls and is safe for concurrent use.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses rawHTML and returns one ExtractedObject per template, in
// template order. Any selector that fails to compile aborts the whole call.
func (e *Extractor) Extract(rawHTML string, objects []distill.ObjectTemplate) (distill.Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, distill.WrapError(distill.EINVALID, err, "failed to parse HTML")
	}

	cache := make(selectorCache)
	result := make(distill.Result, 0, len(objects))

	for _, obj := range objects {
		extracted, err := e.extractObject(doc.Get(0), obj, cache)
		if err != nil {
			return nil, err
		}
		result = append(result, extracted)
	}

	return result, nil
}

func (e *Extractor) extractObject(document *html.Node, obj distill.ObjectTemplate, cache selectorCache) (*distill.ExtractedObject, error) {
	sel, err := cache.compile(obj.Selector)
	if err != nil {
		return nil, fmt.Errorf("object %q: %w", obj.ObjectID, err)
	}

	extracted := &distill.ExtractedObject{
		ObjectID: obj.ObjectID,
		Records:  []*distill.Record{},
	}

	for root := range sel.Match(document) {
		rec, err := e.extractRecord(root, obj.Properties, cache)
		if err != nil {
			return nil, fmt.Errorf("object %q: %w", obj.ObjectID, err)
		}
		extracted.Records = append(extracted.Records, rec)
	}

	return extracted, nil
}

// extractRecord builds a record holding exactly one value per property.
// Properties that do not match, or whose source yields nothing, are coerced
// from the empty string.
func (e *Extractor) extractRecord(root *html.Node, props []distill.PropertyTemplate, cache selectorCache) (*distill.Record, error) {
	rec := distill.NewRecord(len(props))

	for _, prop := range props {
		sel, err := cache.compile(prop.Selector)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", prop.ID, err)
		}

		var raw string
		if n, ok := sel.First(root); ok {
			raw, err = readSource(n, prop.Source)
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", prop.ID, err)
			}
		}

		rec.Set(prop.ID, distill.Coerce(raw, prop.ValueType))
	}

	return rec, nil
}

// readSource pulls the raw string for src out of n. A missing attribute
// reads as "".
func readSource(n *html.Node, src distill.Source) (string, error) {
	sel := goquery.NewDocumentFromNode(n).Selection

	switch s := src.(type) {
	case distill.InnerText:
		inner, err := sel.Html()
		if err != nil {
			return "", distill.WrapError(distill.EINTERNAL, err, "failed to render inner HTML")
		}
		return inner, nil
	case distill.Attribute:
		val, _ := sel.Attr(s.Name)
		return val, nil
	default:
		return "", distill.Errorf(distill.EINVALID, "unsupported value source %T", src)
	}
}
