package main

import (
	"os"

	"github.com/fwojciec/distill"
	distilljson "github.com/fwojciec/distill/json"
	distillyaml "github.com/fwojciec/distill/yaml"
)

// Load reads and decodes the selected template.
func (f *TemplateFlags) Load() ([]distill.ObjectTemplate, error) {
	var text string
	var enc distill.TemplateEncoding

	switch {
	case f.Template != "":
		text = string(f.Template)
		enc = distill.DetectTemplateEncoding(text)
	case f.TemplateFile != "":
		b, err := os.ReadFile(f.TemplateFile)
		if err != nil {
			return nil, distill.WrapError(distill.EINVALID, err, "cannot read template file %q", f.TemplateFile)
		}
		text = string(b)
		enc = distill.DetectTemplateFileEncoding(f.TemplateFile, text)
	default:
		return nil, distill.Errorf(distill.EINVALID, "one of --template or --template-file is required")
	}

	return codecFor(enc).DecodeTemplate(text)
}

func codecFor(enc distill.TemplateEncoding) distill.TemplateCodec {
	if enc == distill.TemplateYAML {
		return distillyaml.NewTemplateCodec()
	}
	return distilljson.NewTemplateCodec()
}

func rendererFor(format distill.OutputFormat) distill.Renderer {
	switch format {
	case distill.FormatJSON:
		return distilljson.NewRenderer()
	case distill.FormatText:
		return distill.TextRenderer{}
	default:
		return distillyaml.NewRenderer()
	}
}
