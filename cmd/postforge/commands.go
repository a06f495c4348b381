package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/postforge/internal/config"
	"github.com/kalambet/postforge/internal/llm"
)

// --- models ---

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available generation models",
	Run: func(cmd *cobra.Command, args []string) {
		for _, m := range llm.Models() {
			fmt.Printf("  %s  %s (%s, cost: %s)\n",
				colorize(colorBold, m.ID), m.Name, m.Provider, m.CostLevel)
		}
	},
}

// --- generate ---

var generateCmd = &cobra.Command{
	Use:   "generate <keyword>",
	Short: "Run the full pipeline for a keyword",
	Long: `Run the full pipeline for a keyword: SERP analysis, SEO plan,
blog content, and images.

Examples:
  postforge generate "best standing desks"
  postforge generate "best standing desks" --length "Long (2,500-4,000 words)" --model gpt-4o
  postforge generate "best standing desks" --save`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keyword := strings.Join(args, " ")
		secondary, _ := cmd.Flags().GetStringSlice("secondary")
		audience, _ := cmd.Flags().GetString("audience")
		length, _ := cmd.Flags().GetString("length")
		notes, _ := cmd.Flags().GetString("notes")
		model, _ := cmd.Flags().GetString("model")
		save, _ := cmd.Flags().GetBool("save")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		printStep("Generating post for %q...", keyword)
		resp, err := client.post("/api/auto-generate", map[string]any{
			"keyword":           keyword,
			"secondaryKeywords": secondary,
			"targetAudience":    audience,
			"contentLength":     length,
			"notes":             notes,
			"model":             model,
		})
		if err != nil {
			return err
		}

		var result struct {
			SerpAnalysis json.RawMessage   `json:"serpAnalysis"`
			Seoplan      json.RawMessage   `json:"seoplan"`
			Content      json.RawMessage   `json:"content"`
			Images       []json.RawMessage `json:"images"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}
		printSuccess("Generated content with %d images", len(result.Images))

		if save {
			projectID, err := saveProject(client, keyword, secondary, audience, length, notes, result.SerpAnalysis, result.Seoplan, result.Content)
			if err != nil {
				return err
			}
			printSuccess("Saved project %s", projectID)
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func saveProject(client *apiClient, keyword string, secondary []string, audience, length, notes string, serpAnalysis, seoplan, content json.RawMessage) (string, error) {
	resp, err := client.post("/api/projects", map[string]any{
		"primaryKeyword":    keyword,
		"secondaryKeywords": secondary,
		"targetAudience":    audience,
		"contentLength":     length,
		"notes":             notes,
	})
	if err != nil {
		return "", err
	}

	var project struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(resp, &project); err != nil {
		return "", err
	}

	patchResp, err := client.patch("/api/projects/"+project.ID, map[string]any{
		"serpAnalysis":     serpAnalysis,
		"seoplan":          seoplan,
		"generatedContent": content,
	})
	if err != nil {
		return "", err
	}
	defer patchResp.Body.Close()

	if patchResp.StatusCode >= 400 {
		return "", fmt.Errorf("server returned %d saving generated content", patchResp.StatusCode)
	}
	return project.ID, nil
}

func init() {
	generateCmd.Flags().StringSlice("secondary", nil, "secondary keywords")
	generateCmd.Flags().String("audience", "", "target audience")
	generateCmd.Flags().String("length", "", `content length label, e.g. "Medium (1,500-2,500 words)"`)
	generateCmd.Flags().String("notes", "", "additional context for the writer")
	generateCmd.Flags().String("model", "", "model id (see 'postforge models')")
	generateCmd.Flags().Bool("save", false, "save the result as a new project")
}

// --- export ---

var exportCmd = &cobra.Command{
	Use:   "export <project-id>",
	Short: "Export a project's generated content",
	Long: `Export a project's generated content in one of the supported
formats: html, markdown, wordpress, or text.

Examples:
  postforge export 4f7c... --format html --output post.html
  postforge export 4f7c... --format markdown`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get("/api/projects/" + args[0])
		if err != nil {
			return err
		}

		var project struct {
			GeneratedContent json.RawMessage `json:"generatedContent"`
		}
		if err := decodeJSON(resp, &project); err != nil {
			return err
		}
		if len(project.GeneratedContent) == 0 {
			return fmt.Errorf("project has no generated content")
		}

		exportResp, err := client.post("/api/content/export", map[string]any{
			"content": project.GeneratedContent,
			"format":  format,
		})
		if err != nil {
			return err
		}
		defer exportResp.Body.Close()

		if exportResp.StatusCode >= 400 {
			body, _ := io.ReadAll(exportResp.Body)
			return fmt.Errorf("server returned %d: %s", exportResp.StatusCode, string(body))
		}

		payload, err := io.ReadAll(exportResp.Body)
		if err != nil {
			return err
		}

		if output == "" {
			_, err := os.Stdout.Write(payload)
			return err
		}
		if err := os.WriteFile(output, payload, 0o644); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		printSuccess("Exported to %s", output)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "text", "export format: html, markdown, wordpress, or text")
	exportCmd.Flags().String("output", "", "output file path (default: stdout)")
}

// --- projects ---

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage blog projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, most recently updated first",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get("/api/projects")
		if err != nil {
			return err
		}

		var projects []struct {
			ID             string `json:"id"`
			PrimaryKeyword string `json:"primaryKeyword"`
			Status         string `json:"status"`
			UpdatedAt      string `json:"updatedAt"`
		}
		if err := decodeJSON(resp, &projects); err != nil {
			return err
		}

		if len(projects) == 0 {
			fmt.Println("No projects found.")
			return nil
		}

		for _, p := range projects {
			fmt.Printf("%s  %-10s  %s  %s\n",
				colorize(colorCyan, p.ID[:8]),
				p.Status,
				p.UpdatedAt,
				p.PrimaryKeyword,
			)
		}
		return nil
	},
}

var projectsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single project as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get("/api/projects/" + args[0])
		if err != nil {
			return err
		}

		var project any
		if err := decodeJSON(resp, &project); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(project)
	},
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete("/api/projects/" + args[0])
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("%s", result["message"])
		return nil
	},
}

func init() {
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsShowCmd)
	projectsCmd.AddCommand(projectsDeleteCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
