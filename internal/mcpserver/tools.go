package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/deadfiles/internal/output"
	"github.com/panbanda/deadfiles/internal/service/analysis"
	"github.com/panbanda/deadfiles/pkg/analyzer/deadfile"
	"github.com/panbanda/deadfiles/pkg/config"
)

// FindDeadFilesInput is the input of the find_dead_files tool.
type FindDeadFilesInput struct {
	Root    string   `json:"root,omitempty" jsonschema:"Project directory. Entries, patterns and bare imports resolve from here. Defaults to the configured root or the current directory."`
	Entry   []string `json:"entry,omitempty" jsonschema:"Entry point files, relative to root. Defaults to the configured entries."`
	Include []string `json:"include,omitempty" jsonschema:"Glob patterns defining candidate files. Defaults to every JS/TS source file under root."`
	Ignore  []string `json:"ignore,omitempty" jsonschema:"Glob patterns pruning traversal and candidates. Defaults to **/node_modules/**; an empty list disables ignoring."`
	Format  string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

func getFormat(format string) output.Format {
	switch format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(report *deadfile.Report, format output.Format) (string, error) {
	switch format {
	case output.FormatJSON:
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	case output.FormatMarkdown:
		var buf bytes.Buffer
		if err := output.NewDeadFileReport(report).RenderMarkdown(&buf); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		return output.MarshalTOON(report)
	}
}

func toolResult(report *deadfile.Report, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(report, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func handleFindDeadFiles(ctx context.Context, req *mcp.CallToolRequest, input FindDeadFilesInput) (*mcp.CallToolResult, any, error) {
	searchDir := input.Root
	if searchDir == "" {
		searchDir = "."
	}
	loaded, err := loadConfig(searchDir)
	if err != nil {
		return toolError(err.Error())
	}

	svc := analysis.New(analysis.WithConfig(loaded.Config))
	opts := analysis.DetectOptions{
		Root:    input.Root,
		Entry:   input.Entry,
		Include: input.Include,
		Ignore:  input.Ignore,
	}
	report, err := svc.FindDeadFiles(ctx, opts)
	if err != nil {
		var entryErr *deadfile.EntryError
		if errors.As(err, &entryErr) {
			return toolError("cannot resolve entry points: " + err.Error())
		}
		return toolError(err.Error())
	}
	return toolResult(report, getFormat(input.Format))
}

// loadConfig prefers a config file in dir, then $DEADFILES_CONFIG, then
// the defaults.
func loadConfig(dir string) (*config.LoadResult, error) {
	if config.FindConfigFile(dir) == "" {
		if path := os.Getenv("DEADFILES_CONFIG"); path != "" {
			return config.LoadConfig(config.WithPath(path))
		}
	}
	return config.LoadConfig(config.WithSearchDir(dir))
}
