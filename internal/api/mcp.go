package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/postforge/internal/export"
	"github.com/kalambet/postforge/internal/pipeline"
	"github.com/kalambet/postforge/internal/store"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store    store.Store
	Analyzer *pipeline.Analyzer
	Auto     *pipeline.AutoGenerator
}

// NewMCPServer creates an MCP server exposing the generation pipeline as
// tools and the project list as a resource.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"postforge",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("postforge — keyword-to-blog-post generation: SERP analysis, SEO planning, content writing, and export."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("analyze_keyword",
			mcp.WithDescription("Fetch and analyze Google search results for a keyword. Results are cached for 24 hours."),
			mcp.WithString("keyword", mcp.Description("The keyword to analyze"), mcp.Required()),
			mcp.WithString("model", mcp.Description("Model id to analyze with (defaults to the cheapest model)")),
		),
		mcpAnalyzeKeyword(deps),
	)

	s.AddTool(
		mcp.NewTool("generate_post",
			mcp.WithDescription("Run the full pipeline for a keyword: SERP analysis, SEO plan, blog content, and images."),
			mcp.WithString("keyword", mcp.Description("Primary keyword for the post"), mcp.Required()),
			mcp.WithArray("secondary_keywords", mcp.Description("Optional secondary keywords")),
			mcp.WithString("target_audience", mcp.Description("Target audience (defaults to General)")),
			mcp.WithString("content_length", mcp.Description("Content length label, e.g. \"Medium (1,500-2,500 words)\"")),
			mcp.WithString("notes", mcp.Description("Additional context for the writer")),
			mcp.WithString("model", mcp.Description("Model id to generate with")),
		),
		mcpGeneratePost(deps),
	)

	s.AddTool(
		mcp.NewTool("export_post",
			mcp.WithDescription("Render generated content of a stored project into html, markdown, wordpress, or text."),
			mcp.WithString("project_id", mcp.Description("Project whose content to export"), mcp.Required()),
			mcp.WithString("format", mcp.Description("Export format: html, markdown, wordpress, or text")),
		),
		mcpExportPost(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"postforge://projects",
			"Blog Projects",
			mcp.WithResourceDescription("All blog projects, most recently updated first"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceProjects(deps),
	)

	return s
}

func mcpAnalyzeKeyword(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keyword, err := req.RequireString("keyword")
		if err != nil {
			return mcpError("keyword is required"), nil
		}
		model := req.GetString("model", "")

		result, err := deps.Analyzer.Analyze(ctx, keyword, model)
		if err != nil {
			return mcpError(fmt.Sprintf("analysis failed: %v", err)), nil
		}

		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGeneratePost(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keyword, err := req.RequireString("keyword")
		if err != nil {
			return mcpError("keyword is required"), nil
		}

		result, err := deps.Auto.Run(ctx, pipeline.AutoInput{
			Keyword:           keyword,
			SecondaryKeywords: req.GetStringSlice("secondary_keywords", nil),
			TargetAudience:    req.GetString("target_audience", ""),
			ContentLength:     req.GetString("content_length", ""),
			Notes:             req.GetString("notes", ""),
			Model:             req.GetString("model", ""),
		})
		if err != nil {
			return mcpError(fmt.Sprintf("generation failed: %v", err)), nil
		}

		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpExportPost(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectID, err := req.RequireString("project_id")
		if err != nil {
			return mcpError("project_id is required"), nil
		}
		format := req.GetString("format", export.FormatText)

		project, err := deps.Store.GetProject(projectID)
		if err != nil {
			return mcpError(fmt.Sprintf("project not found: %v", err)), nil
		}
		if len(project.GeneratedContent) == 0 {
			return mcpError("project has no generated content"), nil
		}

		var content export.Content
		if err := json.Unmarshal(project.GeneratedContent, &content); err != nil {
			return mcpError(fmt.Sprintf("invalid generated content: %v", err)), nil
		}

		return mcpText(string(export.Render(content, format))), nil
	}
}

func mcpResourceProjects(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		projects, err := deps.Store.ListProjects()
		if err != nil {
			return nil, fmt.Errorf("failed to list projects: %w", err)
		}
		if projects == nil {
			projects = []store.Project{}
		}

		b, err := json.Marshal(projects)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal projects: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
