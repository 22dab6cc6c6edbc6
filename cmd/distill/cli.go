package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/distill"
	"github.com/fwojciec/distill/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Stdin   io.Reader
	Logger  *slog.Logger
	Runs    distill.RunService
	Crawler *crawl.Crawler
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB      string `name:"db" env:"DISTILL_DB" help:"SQLite database path for saved runs"`
	Verbose bool   `short:"v" help:"Log operations to stderr"`

	Extract ExtractCmd `cmd:"" default:"withargs" help:"Extract records from HTML (default command)"`
	Convert ConvertCmd `cmd:"" help:"Convert a template between JSON and YAML"`
	Runs    RunsCmd    `cmd:"" help:"List saved runs"`
	Show    ShowCmd    `cmd:"" help:"Print the result of a saved run"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a saved run"`
}

// TemplateFlags selects where the template comes from.
type TemplateFlags struct {
	Template     TemplateText `short:"t" xor:"template" help:"Template text: JSON, or YAML starting with ---"`
	TemplateFile string       `short:"f" name:"template-file" xor:"template" help:"Template file (.json, .yaml or .yml)"`
}

// TemplateText is inline template text. The value is taken verbatim from
// the next argument, so YAML starting with "---" need not be joined to the
// flag with "=".
type TemplateText string

// Decode implements kong.MapperValue.
func (t *TemplateText) Decode(ctx *kong.DecodeContext) error {
	token := ctx.Scan.Pop()
	if token.IsEOL() {
		return fmt.Errorf("expected template text")
	}
	text, ok := token.Value.(string)
	if !ok {
		return fmt.Errorf("expected template text but got %v", token.Value)
	}
	*t = TemplateText(text)
	return nil
}

// ExtractCmd is the default command.
type ExtractCmd struct {
	TemplateFlags `embed:""`

	URL          []string      `short:"u" name:"url" sep:"none" help:"URL to fetch (repeatable). Reads stdin when absent"`
	OutputFormat string        `short:"o" name:"output-format" default:"yaml" help:"Output format: json, yaml or text"`
	Timeout      time.Duration `default:"10s" help:"Fetch timeout per page"`
	Retries      int           `default:"0" help:"Retries per URL after transient failures"`
	Concurrency  int           `short:"c" default:"4" help:"Concurrent fetch limit"`
	Rate         float64       `default:"0" help:"Requests per second per host (0 disables)"`
	Render       bool          `help:"Render pages with headless Chrome"`
	Save         bool          `help:"Save runs to the database"`
	OutDir       string        `name:"out-dir" type:"path" help:"Write one file per URL under this directory instead of stdout"`
}

// ConvertCmd is the "convert" subcommand.
type ConvertCmd struct {
	TemplateFlags `embed:""`

	To string `enum:"json,yaml" default:"yaml" help:"Target encoding: json or yaml"`
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	URL   string `short:"u" name:"url" help:"Only runs of this source URL"`
	Limit int    `short:"n" default:"20" help:"Maximum number of runs"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID           string `arg:"" help:"Run ID"`
	OutputFormat string `short:"o" name:"output-format" default:"yaml" help:"Output format: json, yaml or text"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    string `arg:"" help:"Run ID"`
	Force bool   `help:"Confirm deletion"`
}
