package distill

import (
	"path/filepath"
	"strings"
)

// ValueType is the declared target type of a property.
type ValueType string

// ValueType constants. The values double as the template wire tokens.
const (
	ValueTypeString  ValueType = "Str"
	ValueTypeInteger ValueType = "Int"
	ValueTypeFloat   ValueType = "Float"
	ValueTypeBoolean ValueType = "Bool"
)

// ParseValueType returns the ValueType for a wire token.
// Returns ETEMPLATE for unknown tokens.
func ParseValueType(token string) (ValueType, error) {
	switch t := ValueType(token); t {
	case ValueTypeString, ValueTypeInteger, ValueTypeFloat, ValueTypeBoolean:
		return t, nil
	}
	return "", Errorf(ETEMPLATE, "unknown value type %q", token)
}

// Source tells the extractor where a property's raw string comes from.
// It is a closed set: InnerText or Attribute.
type Source interface {
	source()
}

// InnerText sources the raw value from the matched element's inner markup.
type InnerText struct{}

// Attribute sources the raw value from a named attribute of the matched element.
type Attribute struct {
	Name string
}

func (InnerText) source() {}
func (Attribute) source() {}

// PropertyTemplate describes one named field of an object.
type PropertyTemplate struct {
	ID        string
	Selector  string
	ValueType ValueType
	Source    Source
}

// ObjectTemplate describes a repeatable unit of extraction. Each element
// matched by Selector yields one record holding every property.
type ObjectTemplate struct {
	ObjectID   string
	Selector   string
	Properties []PropertyTemplate
}

// TemplateCodec converts templates to and from one textual encoding.
type TemplateCodec interface {
	// DecodeTemplate parses template text.
	// Returns ETEMPLATE if the text is malformed.
	DecodeTemplate(text string) ([]ObjectTemplate, error)

	// EncodeTemplate renders templates so that DecodeTemplate returns them unchanged.
	EncodeTemplate(objects []ObjectTemplate) (string, error)
}

// TemplateEncoding identifies a template text encoding.
type TemplateEncoding string

// Supported template encodings.
const (
	TemplateJSON TemplateEncoding = "json"
	TemplateYAML TemplateEncoding = "yaml"
)

// yamlDocumentMarker starts a YAML document.
const yamlDocumentMarker = "---"

// DetectTemplateEncoding reports TemplateYAML when text begins with a YAML
// document marker and TemplateJSON otherwise.
func DetectTemplateEncoding(text string) TemplateEncoding {
	if strings.HasPrefix(strings.TrimSpace(text), yamlDocumentMarker) {
		return TemplateYAML
	}
	return TemplateJSON
}

// DetectTemplateFileEncoding uses the file extension when it is conclusive
// and falls back to DetectTemplateEncoding on the contents.
func DetectTemplateFileEncoding(path, text string) TemplateEncoding {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return TemplateJSON
	case ".yaml", ".yml":
		return TemplateYAML
	}
	return DetectTemplateEncoding(text)
}
