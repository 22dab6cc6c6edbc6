package json_test

import (
	"testing"

	"github.com/fwojciec/distill"
	"github.com/fwojciec/distill/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTemplate() []distill.ObjectTemplate {
	return []distill.ObjectTemplate{
		{
			ObjectID: "detail-info",
			Selector: "div#detail_info",
			Properties: []distill.PropertyTemplate{
				{ID: "email", Selector: "div#email", ValueType: distill.ValueTypeString, Source: distill.InnerText{}},
				{ID: "address", Selector: "div#address", ValueType: distill.ValueTypeString, Source: distill.InnerText{}},
			},
		},
		{
			ObjectID: "book-info",
			Selector: "div#book_info",
			Properties: []distill.PropertyTemplate{
				{ID: "isn", Selector: "div#isn", ValueType: distill.ValueTypeInteger, Source: distill.InnerText{}},
				{ID: "link", Selector: "a", ValueType: distill.ValueTypeString, Source: distill.Attribute{Name: "href"}},
			},
		},
	}
}

func TestTemplateCodec_EncodeTemplate(t *testing.T) {
	t.Parallel()

	t.Run("encodes the wire schema", func(t *testing.T) {
		t.Parallel()

		text, err := json.NewTemplateCodec().EncodeTemplate(sampleTemplate()[:1])

		require.NoError(t, err)
		assert.Equal(t, `[{"object_id":"detail-info","css_selector":"div#detail_info","properties":[{"id":"email","css_selector":"div#email","value_type":"Str","value_from":"InnerText"},{"id":"address","css_selector":"div#address","value_type":"Str","value_from":"InnerText"}]}]`, text)
	})

	t.Run("encodes attribute sources as property objects", func(t *testing.T) {
		t.Parallel()

		text, err := json.NewTemplateCodec().EncodeTemplate(sampleTemplate()[1:])

		require.NoError(t, err)
		assert.Contains(t, text, `"value_from":{"Property":"href"}`)
		assert.Contains(t, text, `"value_type":"Int"`)
	})

	t.Run("does not escape markup characters", func(t *testing.T) {
		t.Parallel()

		text, err := json.NewTemplateCodec().EncodeTemplate([]distill.ObjectTemplate{{ObjectID: "x", Selector: "ul > li"}})

		require.NoError(t, err)
		assert.Contains(t, text, `"ul > li"`)
	})

	t.Run("rejects a missing source", func(t *testing.T) {
		t.Parallel()

		_, err := json.NewTemplateCodec().EncodeTemplate([]distill.ObjectTemplate{{
			ObjectID:   "x",
			Selector:   "div",
			Properties: []distill.PropertyTemplate{{ID: "p", Selector: "p", ValueType: distill.ValueTypeString}},
		}})

		require.Error(t, err)
		assert.Equal(t, distill.EENCODE, distill.ErrorCode(err))
	})
}

func TestTemplateCodec_DecodeTemplate(t *testing.T) {
	t.Parallel()

	t.Run("round trips", func(t *testing.T) {
		t.Parallel()

		codec := json.NewTemplateCodec()
		text, err := codec.EncodeTemplate(sampleTemplate())
		require.NoError(t, err)

		got, err := codec.DecodeTemplate(text)

		require.NoError(t, err)
		assert.Equal(t, sampleTemplate(), got)
	})

	t.Run("decodes hand-written templates", func(t *testing.T) {
		t.Parallel()

		text := `[
  {
    "object_id": "user-info",
    "css_selector": "div#user_info",
    "properties": [
      {"id": "age", "css_selector": "span.age", "value_type": "Int", "value_from": "InnerText"},
      {"id": "active", "css_selector": "input", "value_type": "Bool", "value_from": {"Property": "value"}}
    ]
  }
]`

		got, err := json.NewTemplateCodec().DecodeTemplate(text)

		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Len(t, got[0].Properties, 2)
		assert.Equal(t, distill.ValueTypeInteger, got[0].Properties[0].ValueType)
		assert.Equal(t, distill.InnerText{}, got[0].Properties[0].Source)
		assert.Equal(t, distill.ValueTypeBoolean, got[0].Properties[1].ValueType)
		assert.Equal(t, distill.Attribute{Name: "value"}, got[0].Properties[1].Source)
	})

	t.Run("accepts duplicate ids", func(t *testing.T) {
		t.Parallel()

		text := `[{"object_id":"a","css_selector":"div","properties":[
{"id":"x","css_selector":"i","value_type":"Str","value_from":"InnerText"},
{"id":"x","css_selector":"b","value_type":"Str","value_from":"InnerText"}]},
{"object_id":"a","css_selector":"p","properties":[]}]`

		got, err := json.NewTemplateCodec().DecodeTemplate(text)

		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Len(t, got[0].Properties, 2)
	})

	t.Run("does not validate selectors", func(t *testing.T) {
		t.Parallel()

		text := `[{"object_id":"a","css_selector":"div[","properties":[]}]`

		got, err := json.NewTemplateCodec().DecodeTemplate(text)

		require.NoError(t, err)
		assert.Equal(t, "div[", got[0].Selector)
	})

	tests := []struct {
		name string
		text string
	}{
		{"malformed json", `[{"object_id":`},
		{"not a list", `{"object_id":"a"}`},
		{"unknown value type", `[{"object_id":"a","css_selector":"div","properties":[{"id":"x","css_selector":"i","value_type":"Date","value_from":"InnerText"}]}]`},
		{"missing value type", `[{"object_id":"a","css_selector":"div","properties":[{"id":"x","css_selector":"i","value_from":"InnerText"}]}]`},
		{"unknown value_from token", `[{"object_id":"a","css_selector":"div","properties":[{"id":"x","css_selector":"i","value_type":"Str","value_from":"OuterText"}]}]`},
		{"unknown value_from key", `[{"object_id":"a","css_selector":"div","properties":[{"id":"x","css_selector":"i","value_type":"Str","value_from":{"Attr":"href"}}]}]`},
		{"missing value_from", `[{"object_id":"a","css_selector":"div","properties":[{"id":"x","css_selector":"i","value_type":"Str"}]}]`},
	}

	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := json.NewTemplateCodec().DecodeTemplate(tt.text)

			require.Error(t, err)
			assert.Equal(t, distill.ETEMPLATE, distill.ErrorCode(err))
		})
	}
}
