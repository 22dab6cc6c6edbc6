package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/distill"
	"github.com/fwojciec/distill/fs"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	objects, err := c.Load()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", distill.ErrorMessage(err))
		return err
	}

	var runs []*distill.Run
	if len(c.URL) == 0 {
		b, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		run, err := deps.Crawler.Distill(deps.Ctx, "", string(b), objects)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", distill.ErrorMessage(err))
			return err
		}
		runs = append(runs, run)
	} else {
		runs, err = deps.Crawler.Crawl(deps.Ctx, c.URL, objects)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", distill.ErrorMessage(err))
			return err
		}
	}

	format := distill.ParseOutputFormat(c.OutputFormat)
	renderer := rendererFor(format)
	if c.OutDir != "" {
		return writeResults(deps, fs.NewResultStore(c.OutDir, extensionFor(format)), renderer, runs)
	}

	for _, run := range runs {
		if err := writeResult(deps.Stdout, renderer, run.Result); err != nil {
			return err
		}
		if run.ID != "" {
			fmt.Fprintf(deps.Stderr, "Saved run %s\n", run.ID)
		}
	}

	return nil
}

// writeResult renders result on its own line.
func writeResult(w io.Writer, renderer distill.Renderer, result distill.Result) error {
	out, err := renderer.Render(result)
	if err != nil {
		return err
	}
	return writeLine(w, out)
}

// writeLine writes s followed by a newline unless s already ends in one.
func writeLine(w io.Writer, s string) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := io.WriteString(w, s)
	return err
}

// writeResults stages every rendered run in store and commits them together.
func writeResults(deps *Dependencies, store distill.ResultStore, renderer distill.Renderer, runs []*distill.Run) (err error) {
	defer func() {
		if err != nil {
			_ = store.Abort()
		}
	}()

	for _, run := range runs {
		out, err := renderer.Render(run.Result)
		if err != nil {
			return err
		}
		if err := store.Save(deps.Ctx, run, out); err != nil {
			return err
		}
		if run.ID != "" {
			fmt.Fprintf(deps.Stderr, "Saved run %s\n", run.ID)
		}
	}

	if err := store.Commit(); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stderr, "Wrote %d result(s)\n", len(runs))
	return nil
}

func extensionFor(format distill.OutputFormat) string {
	switch format {
	case distill.FormatJSON:
		return "json"
	case distill.FormatText:
		return "txt"
	default:
		return "yaml"
	}
}
