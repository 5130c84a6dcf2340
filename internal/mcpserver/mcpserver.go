// Package mcpserver exposes dead-file detection as MCP tools over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server and registers the deadfiles tools.
type Server struct {
	server *mcp.Server
}

// NewServer creates a new MCP server with all tools and prompts registered.
func NewServer(version string) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "deadfiles",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_dead_files",
		Description: describeFindDeadFiles(),
		Annotations: &mcp.ToolAnnotations{
			Title:          "Find dead files",
			ReadOnlyHint:   true,
			IdempotentHint: true,
		},
	}, handleFindDeadFiles)
}

func describeFindDeadFiles() string {
	return `Finds JavaScript and TypeScript files that are never reached by following imports from the given entry points.

USE WHEN:
- Cleaning up a project before a refactor or release
- Checking whether a file can be deleted safely
- Auditing leftovers after removing a feature

INTERPRETING RESULTS:
- dead_files: included files no entry point reaches; candidates for removal
- dynamic_dependencies: files with require()/import() of computed paths; their targets are unknown, so files they load at runtime may be reported dead
- unparsed_dependencies: reached files that could not be read or parsed; their imports were not followed
- unresolved_dependencies: specifiers that did not map to a file (missing packages, builtins such as fs)
- ignored_dependencies: reached files matching an ignore pattern; their imports were not followed

METRICS RETURNED:
- Every bucket as an ordered list of canonical absolute paths (specifiers for unresolved)
- root: the directory relative patterns and entries were resolved from

Note: entries that cannot be resolved fail the whole call.`
}
