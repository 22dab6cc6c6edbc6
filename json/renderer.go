package json

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/fwojciec/distill"
)

// Ensure Renderer implements distill.Renderer at compile time.
var _ distill.Renderer = (*Renderer)(nil)

// Renderer encodes results as compact JSON. Record keys keep template
// order; Unavailable and non-finite floats encode as null. Floats always
// carry a fraction or exponent so they stay distinct from integers.
type Renderer struct{}

// NewRenderer creates a new Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

type extractedObject struct {
	ObjectID string   `json:"object_id"`
	Records  []record `json:"records"`
}

// record marshals a distill.Record as a JSON object in key order.
type record struct {
	r *distill.Record
}

func (r record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	i := 0
	for k, v := range r.r.All() {
		if i > 0 {
			buf.WriteByte(',')
		}
		i++

		key, err := marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := marshal(jsonValue(v))
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// jsonValue maps v onto a value encoding/json can represent.
func jsonValue(v distill.Value) any {
	if f, ok := v.Float(); ok {
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil
		}
		return json.RawMessage(formatFloat(f))
	}
	return v.Interface()
}

// formatFloat writes f so that it reads back as a float: whole numbers keep
// a ".0" fraction.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// Render encodes result as a JSON array.
func (r *Renderer) Render(result distill.Result) (string, error) {
	wire := make([]extractedObject, 0, len(result))
	for _, obj := range result {
		w := extractedObject{
			ObjectID: obj.ObjectID,
			Records:  make([]record, 0, len(obj.Records)),
		}
		for _, rec := range obj.Records {
			w.Records = append(w.Records, record{r: rec})
		}
		wire = append(wire, w)
	}

	b, err := marshal(wire)
	if err != nil {
		return "", distill.WrapError(distill.EENCODE, err, "failed to encode result")
	}
	return string(b), nil
}
