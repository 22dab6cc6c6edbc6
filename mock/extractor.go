package mock

import "github.com/fwojciec/distill"

var _ distill.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of distill.Extractor.
type Extractor struct {
	ExtractFn func(html string, objects []distill.ObjectTemplate) (distill.Result, error)
}

func (e *Extractor) Extract(html string, objects []distill.ObjectTemplate) (distill.Result, error) {
	return e.ExtractFn(html, objects)
}
