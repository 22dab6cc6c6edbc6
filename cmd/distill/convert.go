package main

import (
	"fmt"

	"github.com/fwojciec/distill"
)

// Run executes the convert command.
func (c *ConvertCmd) Run(deps *Dependencies) error {
	objects, err := c.Load()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", distill.ErrorMessage(err))
		return err
	}

	text, err := codecFor(distill.TemplateEncoding(c.To)).EncodeTemplate(objects)
	if err != nil {
		return err
	}

	return writeLine(deps.Stdout, text)
}
