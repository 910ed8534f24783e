// Package mcp exposes discovered skills to MCP clients over stdio. Agents
// connect to the server to enumerate available skills and pull a skill's
// full instructions on demand.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"

	"github.com/skilletlabs/skillet/pkg/discovery"
	"github.com/skilletlabs/skillet/pkg/version"
)

const serverInstructions = `This server exposes agent skills: reusable instruction documents with a
name and a description of when to use them. Call list_skills to see what is
available, then get_skill to load the full instructions for one skill.`

// Server is an MCP server backed by skill discovery.
type Server struct {
	mcpServer *server.MCPServer
	discovery *discovery.Discovery
}

// NewServer creates the MCP server and registers the skill tools.
func NewServer(disc *discovery.Discovery) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"skillet",
			version.Get().Version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
			server.WithInstructions(serverInstructions),
		),
		discovery: disc,
	}

	s.mcpServer.AddTool(listSkillsTool(), s.handleListSkills)
	s.mcpServer.AddTool(getSkillTool(), s.handleGetSkill)

	return s
}

// ServeStdio runs the server over stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func listSkillsTool() mcp.Tool {
	return mcp.NewTool("list_skills",
		mcp.WithDescription("List all discovered skills with their names and descriptions."),
	)
}

func getSkillTool() mcp.Tool {
	return mcp.NewTool("get_skill",
		mcp.WithDescription("Load the full instructions of a skill by name."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The skill name as returned by list_skills, e.g. 'code-review' or 'acme/toolkit/deploy'."),
		),
	)
}

type skillListing struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Scope       string `json:"scope"`
}

func (s *Server) handleListSkills(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.discovery.Discover()
	if err != nil {
		return mcp.NewToolResultError(errors.Wrap(err, "failed to discover skills").Error()), nil
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	listings := make([]skillListing, 0, len(names))
	for _, name := range names {
		entry := entries[name]
		listings = append(listings, skillListing{
			Name:        entry.Name,
			Description: entry.Descriptor.Description,
			Scope:       string(entry.Scope),
		})
	}

	encoded, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(errors.Wrap(err, "failed to encode skill list").Error()), nil
	}
	return mcp.NewToolResultText(string(encoded)), nil
}

func (s *Server) handleGetSkill(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, ok := request.GetArguments()["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("'name' argument is required"), nil
	}

	entry, err := s.discovery.Get(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("skill '%s' not found", name)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Skill: %s\n\n", entry.Name)
	fmt.Fprintf(&sb, "%s\n", entry.Descriptor.Description)
	if len(entry.Descriptor.AllowedTools) > 0 {
		fmt.Fprintf(&sb, "\nAllowed tools: %s\n", strings.Join(entry.Descriptor.AllowedTools, ", "))
	}
	fmt.Fprintf(&sb, "\n%s\n", entry.Descriptor.Body)

	return mcp.NewToolResultText(sb.String()), nil
}
