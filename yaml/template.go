// Package yaml implements the YAML template codec and result renderer
// using gopkg.in/yaml.v3.
package yaml

import (
	"bytes"

	"github.com/fwojciec/distill"
	"gopkg.in/yaml.v3"
)

// documentMarker prefixes every document this package writes, so that
// templates it renders are recognised by distill.DetectTemplateEncoding.
const documentMarker = "---\n"

// Ensure TemplateCodec implements distill.TemplateCodec at compile time.
var _ distill.TemplateCodec = (*TemplateCodec)(nil)

// TemplateCodec reads and writes templates as YAML.
type TemplateCodec struct{}

// NewTemplateCodec creates a new TemplateCodec.
func NewTemplateCodec() *TemplateCodec {
	return &TemplateCodec{}
}

type objectTemplate struct {
	ObjectID    string             `yaml:"object_id"`
	CSSSelector string             `yaml:"css_selector"`
	Properties  []propertyTemplate `yaml:"properties"`
}

type propertyTemplate struct {
	ID          string    `yaml:"id"`
	CSSSelector string    `yaml:"css_selector"`
	ValueType   string    `yaml:"value_type"`
	ValueFrom   valueFrom `yaml:"value_from"`
}

// valueFrom encodes distill.Source as the scalar InnerText or the mapping
// {Property: <attribute>}. The tagged scalar "!Property <attribute>" is
// accepted on input.
type valueFrom struct {
	source distill.Source
}

const (
	innerTextToken = "InnerText"
	propertyKey    = "Property"
	propertyTag    = "!" + propertyKey
)

func (v valueFrom) MarshalYAML() (any, error) {
	switch s := v.source.(type) {
	case distill.InnerText:
		return innerTextToken, nil
	case distill.Attribute:
		n := &yaml.Node{Kind: yaml.MappingNode}
		n.Content = []*yaml.Node{stringNode(propertyKey), stringNode(s.Name)}
		return n, nil
	default:
		return nil, distill.Errorf(distill.EENCODE, "unsupported value source %T", v.source)
	}
}

func (v *valueFrom) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == propertyTag {
			v.source = distill.Attribute{Name: node.Value}
			return nil
		}
		if node.Value != innerTextToken {
			return distill.Errorf(distill.ETEMPLATE, "line %d: unknown value_from %q", node.Line, node.Value)
		}
		v.source = distill.InnerText{}
		return nil
	case yaml.MappingNode:
		if len(node.Content) == 2 && node.Content[0].Value == propertyKey && node.Content[1].Kind == yaml.ScalarNode {
			v.source = distill.Attribute{Name: node.Content[1].Value}
			return nil
		}
	}
	return distill.Errorf(distill.ETEMPLATE, "line %d: value_from must be %s or {%s: <attribute>}", node.Line, innerTextToken, propertyKey)
}

// DecodeTemplate parses a YAML template. An empty document decodes to an
// empty template.
func (c *TemplateCodec) DecodeTemplate(text string) ([]distill.ObjectTemplate, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, wrapDecodeError(err)
	}
	if len(doc.Content) == 0 {
		return []distill.ObjectTemplate{}, nil
	}

	var wire []objectTemplate
	if err := doc.Content[0].Decode(&wire); err != nil {
		return nil, wrapDecodeError(err)
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

func wrapDecodeError(err error) error {
	if distill.ErrorCode(err) == distill.ETEMPLATE {
		return err
	}
	return distill.WrapError(distill.ETEMPLATE, err, "invalid YAML template")
}

// EncodeTemplate renders templates as a block-style YAML document.
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

	return encode(wire, "failed to encode template")
}

// encode writes v as a YAML document with two-space indentation.
func encode(v any, msg string) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(documentMarker)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		if distill.ErrorCode(err) == distill.EENCODE {
			return "", err
		}
		return "", distill.WrapError(distill.EENCODE, err, "%s", msg)
	}
	if err := enc.Close(); err != nil {
		return "", distill.WrapError(distill.EENCODE, err, "%s", msg)
	}
	return buf.String(), nil
}
