// Package json implements the JSON template codec and result renderer.
package json

import (
	"bytes"
	"encoding/json"

	"github.com/fwojciec/distill"
)

// Ensure TemplateCodec implements distill.TemplateCodec at compile time.
var _ distill.TemplateCodec = (*TemplateCodec)(nil)

// TemplateCodec reads and writes templates as JSON.
type TemplateCodec struct{}

// NewTemplateCodec creates a new TemplateCodec.
func NewTemplateCodec() *TemplateCodec {
	return &TemplateCodec{}
}

// objectTemplate is the wire form of distill.ObjectTemplate.
type objectTemplate struct {
	ObjectID    string             `json:"object_id"`
	CSSSelector string             `json:"css_selector"`
	Properties  []propertyTemplate `json:"properties"`
}

// propertyTemplate is the wire form of distill.PropertyTemplate.
type propertyTemplate struct {
	ID          string    `json:"id"`
	CSSSelector string    `json:"css_selector"`
	ValueType   string    `json:"value_type"`
	ValueFrom   valueFrom `json:"value_from"`
}

// valueFrom encodes distill.Source as either the string "InnerText" or
// {"Property": "<attribute>"}.
type valueFrom struct {
	source distill.Source
}

const (
	innerTextToken = "InnerText"
	propertyKey    = "Property"
)

func (v valueFrom) MarshalJSON() ([]byte, error) {
	switch s := v.source.(type) {
	case distill.InnerText:
		return marshal(innerTextToken)
	case distill.Attribute:
		return marshal(map[string]string{propertyKey: s.Name})
	default:
		return nil, distill.Errorf(distill.EENCODE, "unsupported value source %T", v.source)
	}
}

func (v *valueFrom) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var token string
		if err := json.Unmarshal(data, &token); err != nil {
			return err
		}
		if token != innerTextToken {
			return distill.Errorf(distill.ETEMPLATE, "unknown value_from %q", token)
		}
		v.source = distill.InnerText{}
		return nil
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return distill.WrapError(distill.ETEMPLATE, err, "invalid value_from")
	}
	name, ok := m[propertyKey]
	if !ok || len(m) != 1 {
		return distill.Errorf(distill.ETEMPLATE, "value_from must be %q or {%q: <attribute>}", innerTextToken, propertyKey)
	}
	v.source = distill.Attribute{Name: name}
	return nil
}

// DecodeTemplate parses a JSON template.
func (c *TemplateCodec) DecodeTemplate(text string) ([]distill.ObjectTemplate, error) {
	var wire []objectTemplate
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		if distill.ErrorCode(err) == distill.ETEMPLATE {
			return nil, err
		}
		return nil, distill.WrapError(distill.ETEMPLATE, err, "invalid JSON template")
	}

	objects := make([]distill.ObjectTemplate, 0, len(wire))
	for _, w := range wire {
		obj := distill.ObjectTemplate{
			ObjectID:   w.ObjectID,
			Selector:   w.CSSSelector,
			Properties: make([]distill.PropertyTemplate, 0, len(w.Properties)),
		}
		for _, p := range w.Properties {
			typ, err := distill.ParseValueType(p.ValueType)
			if err != nil {
				return nil, err
			}
			if p.ValueFrom.source == nil {
				return nil, distill.Errorf(distill.ETEMPLATE, "property %q: value_from required", p.ID)
			}
			obj.Properties = append(obj.Properties, distill.PropertyTemplate{
				ID:        p.ID,
				Selector:  p.CSSSelector,
				ValueType: typ,
				Source:    p.ValueFrom.source,
			})
		}
		objects = append(objects, obj)
	}

	return objects, nil
}

// EncodeTemplate renders templates as compact JSON.
func (c *TemplateCodec) EncodeTemplate(objects []distill.ObjectTemplate) (string, error) {
	wire := make([]objectTemplate, 0, len(objects))
	for _, obj := range objects {
		w := objectTemplate{
			ObjectID:    obj.ObjectID,
			CSSSelector: obj.Selector,
			Properties:  make([]propertyTemplate, 0, len(obj.Properties)),
		}
		for _, p := range obj.Properties {
			w.Properties = append(w.Properties, propertyTemplate{
				ID:          p.ID,
				CSSSelector: p.Selector,
				ValueType:   string(p.ValueType),
				ValueFrom:   valueFrom{source: p.Source},
			})
		}
		wire = append(wire, w)
	}

	b, err := marshal(wire)
	if err != nil {
		if distill.ErrorCode(err) == distill.EENCODE {
			return "", err
		}
		return "", distill.WrapError(distill.EENCODE, err, "failed to encode template")
	}
	return string(b), nil
}
