package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

// promptFrontmatter is the YAML header of a prompt file.
type promptFrontmatter struct {
	Description string `yaml:"description"`
	Arguments   []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Required    bool   `yaml:"required"`
		Default     string `yaml:"default"`
	} `yaml:"arguments"`
}

// promptTemplate is a parsed prompt file. Its body may reference
// arguments as {{name}}.
type promptTemplate struct {
	prompt   *mcp.Prompt
	body     string
	defaults map[string]string
}

// loadPrompts parses every embedded prompt, named after its file.
func loadPrompts() ([]promptTemplate, error) {
	names, err := fs.Glob(promptFiles, "prompts/*.md")
	if err != nil {
		return nil, err
	}

	templates := make([]promptTemplate, 0, len(names))
	for _, name := range names {
		content, err := promptFiles.ReadFile(name)
		if err != nil {
			return nil, err
		}
		fm, body, err := parseFrontmatter(content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		prompt := &mcp.Prompt{
			Name:        strings.TrimSuffix(strings.TrimPrefix(name, "prompts/"), ".md"),
			Description: fm.Description,
		}
		defaults := make(map[string]string)
		for _, arg := range fm.Arguments {
			defaults[arg.Name] = arg.Default
			prompt.Arguments = append(prompt.Arguments, &mcp.PromptArgument{
				Name:        arg.Name,
				Description: arg.Description,
				Required:    arg.Required,
			})
		}
		templates = append(templates, promptTemplate{prompt: prompt, body: body, defaults: defaults})
	}
	return templates, nil
}

func (s *Server) registerPrompts() {
	templates, err := loadPrompts()
	if err != nil {
		return
	}
	for _, tmpl := range templates {
		s.server.AddPrompt(tmpl.prompt, tmpl.handler())
	}
}

// parseFrontmatter splits the YAML header from the body. Content without
// a header is all body.
func parseFrontmatter(content []byte) (promptFrontmatter, string, error) {
	var fm promptFrontmatter
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return fm, string(content), nil
	}

	rest := content[4:]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end == -1 {
		return fm, string(content), nil
	}
	if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
		return fm, "", fmt.Errorf("frontmatter: %w", err)
	}
	return fm, strings.TrimPrefix(string(rest[end+5:]), "\n"), nil
}

// render substitutes arguments into the body. Missing optional arguments
// take their declared default.
func (p promptTemplate) render(args map[string]string) (string, error) {
	pairs := make([]string, 0, 2*len(p.prompt.Arguments))
	for _, arg := range p.prompt.Arguments {
		value := args[arg.Name]
		if value == "" {
			if arg.Required {
				return "", fmt.Errorf("missing required argument %q", arg.Name)
			}
			value = p.defaults[arg.Name]
		}
		pairs = append(pairs, "{{"+arg.Name+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(p.body), nil
}

func (p promptTemplate) handler() mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		var args map[string]string
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		text, err := p.render(args)
		if err != nil {
			return nil, err
		}
		return &mcp.GetPromptResult{
			Description: p.prompt.Description,
			Messages: []*mcp.PromptMessage{
				{Role: "user", Content: &mcp.TextContent{Text: text}},
			},
		}, nil
	}
}
