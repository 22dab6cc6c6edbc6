package yaml

import (
	"math"
	"strconv"
	"strings"

	"github.com/fwojciec/distill"
	"gopkg.in/yaml.v3"
)

// Ensure Renderer implements distill.Renderer at compile time.
var _ distill.Renderer = (*Renderer)(nil)

// Renderer encodes results as a YAML document. Record keys keep template
// order and Unavailable encodes as null.
type Renderer struct{}

// NewRenderer creates a new Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render encodes result as a YAML sequence of objects.
func (r *Renderer) Render(result distill.Result) (string, error) {
	root := &yaml.Node{Kind: yaml.SequenceNode}
	for _, obj := range result {
		records := &yaml.Node{Kind: yaml.SequenceNode}
		for _, rec := range obj.Records {
			records.Content = append(records.Content, recordNode(rec))
		}

		n := &yaml.Node{Kind: yaml.MappingNode}
		n.Content = []*yaml.Node{
			stringNode("object_id"), stringNode(obj.ObjectID),
			stringNode("records"), records,
		}
		root.Content = append(root.Content, n)
	}

	return encode(root, "failed to encode result")
}

func recordNode(rec *distill.Record) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for k, v := range rec.All() {
		n.Content = append(n.Content, stringNode(k), valueNode(v))
	}
	return n
}

func stringNode(s string) *yaml.Node {
	n := &yaml.Node{}
	n.SetString(s)
	return n
}

func valueNode(v distill.Value) *yaml.Node {
	switch v.Kind() {
	case distill.KindInteger:
		i, _ := v.Integer()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(i, 10)}
	case distill.KindFloat:
		f, _ := v.Float()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(f)}
	case distill.KindString:
		s, _ := v.Str()
		return stringNode(s)
	case distill.KindBoolean:
		b, _ := v.Boolean()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// formatFloat spells f so that it reads back as a float, not an integer.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
