package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/parsebill/ratesheet/internal/config"
	"github.com/parsebill/ratesheet/internal/extract"
	"github.com/parsebill/ratesheet/internal/intelligence"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	extraction *extract.Service
	classifier *intelligence.Classifier
	mcpServer  *server.MCPServer
	logger     *zap.Logger
}

// NewServer creates a new MCP server instance
func NewServer(
	cfg *config.Config,
	extraction *extract.Service,
	classifier *intelligence.Classifier,
	logger *zap.Logger,
) (*Server, error) {
	if extraction == nil {
		return nil, fmt.Errorf("extraction service cannot be nil")
	}
	if classifier == nil {
		return nil, fmt.Errorf("classifier cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:     cfg,
		extraction: extraction,
		classifier: classifier,
		mcpServer:  mcpServer,
		logger:     logger,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	// Register the extraction tool
	extractFileTool := mcp.NewTool(
		"ratesheet_extract_file",
		mcp.WithDescription("Extract normalized billing items from a pricing document"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the document (spreadsheet, CSV, JSON, PDF, image or text)"),
		),
	)
	s.mcpServer.AddTool(extractFileTool, s.handleExtractFile)

	// Register the raw-text tool
	extractTextTool := mcp.NewTool(
		"ratesheet_extract_text",
		mcp.WithDescription("Extract raw text from a PDF, image or plain-text document"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the document"),
		),
	)
	s.mcpServer.AddTool(extractTextTool, s.handleExtractText)

	// Register the directory scan tool
	scanDirectoryTool := mcp.NewTool(
		"ratesheet_scan_directory",
		mcp.WithDescription("List supported pricing documents in a directory with optional name filtering"),
		mcp.WithString("directory",
			mcp.Description("Directory path to scan (uses default if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional filter matched against file names"),
		),
	)
	s.mcpServer.AddTool(scanDirectoryTool, s.handleScanDirectory)

	// Register the billing-model recommendation tool
	recommendModelTool := mcp.NewTool(
		"ratesheet_recommend_model",
		mcp.WithDescription("Extract a pricing document and recommend a billing model for its items"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the document"),
		),
	)
	s.mcpServer.AddTool(recommendModelTool, s.handleRecommendModel)

	// Register the server info tool
	serverInfoTool := mcp.NewTool(
		"ratesheet_server_info",
		mcp.WithDescription("Get server information, available tools, directory contents, and usage guidance"),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleExtractFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := s.extraction.ExtractFile(ctx, extract.ExtractFileRequest{Path: path})
	if result.Status == extract.StatusFailed {
		return mcp.NewToolResultError(fmt.Sprintf("extraction failed for %s: %s", result.FileName, result.Error)), nil
	}

	responseText, err := s.formatExtractFileResult(&result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleExtractText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := extract.ExtractTextRequest{Path: path}
	result, err := s.extraction.ExtractText(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatExtractTextResult(result)), nil
}

func (s *Server) handleScanDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	directory := s.config.DocumentDirectory // default
	if dir, ok := args["directory"].(string); ok && dir != "" {
		directory = dir
	}

	query := ""
	if q, ok := args["query"].(string); ok {
		query = q
	}

	req := extract.ScanDirectoryRequest{
		Directory: directory,
		Query:     query,
	}

	result, err := s.extraction.ScanDirectory(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.TotalCount == 0 {
		responseText = fmt.Sprintf("No pricing documents found in directory: %s", result.Directory)
		if query != "" {
			responseText += fmt.Sprintf(" (searched for: %s)", query)
		}
	} else {
		responseText = s.formatScanDirectoryResult(result)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleRecommendModel(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := s.extraction.ExtractFile(ctx, extract.ExtractFileRequest{Path: path})
	if result.Status == extract.StatusFailed {
		return mcp.NewToolResultError(fmt.Sprintf("extraction failed for %s: %s", result.FileName, result.Error)), nil
	}

	rec := s.classifier.Recommend(result.Items)
	return mcp.NewToolResultText(s.formatRecommendation(&result, &rec)), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := extract.ServerInfoRequest{}
	result, err := s.extraction.ServerInfo(req, s.config.ServerName, s.config.Version, s.config.DocumentDirectory)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatServerInfoResult(result)), nil
}

// Formatting methods
func (s *Server) formatExtractFileResult(result *extract.ExtractFileResult) (string, error) {
	text := fmt.Sprintf("Successfully extracted: %s\n", result.FileName)
	text += fmt.Sprintf("Format: %s\n", result.Format)
	text += fmt.Sprintf("Items: %d\n", len(result.Items))
	text += fmt.Sprintf("Confidence: %.1f\n", result.Confidence)
	text += fmt.Sprintf("Elapsed: %dms\n", result.ElapsedMS)

	// Guidance based on source fidelity
	switch {
	case result.Confidence >= extract.ConfidenceWorkbook:
		text += "\n💡 INFO: Structured source; field mapping is reliable.\n"
	case result.Confidence >= extract.ConfidenceRecognizedBase:
		text += "\n🔍 RECOMMENDATION: Items were reconstructed from text. Review prices and intervals before importing.\n"
	default:
		text += "\n⚠️  WARNING: Low extraction confidence. The document may not contain usable pricing lines.\n"
	}

	items, err := json.MarshalIndent(result.Items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode items: %w", err)
	}

	text += "\nItems (JSON):\n"
	text += string(items)
	return text, nil
}

func (s *Server) formatExtractTextResult(result *extract.ExtractTextResult) string {
	text := fmt.Sprintf("Raw text from: %s\n", result.FileName)
	text += fmt.Sprintf("Format: %s\n", result.Format)
	if result.Pages > 0 {
		text += fmt.Sprintf("Pages: %d\n", result.Pages)
	}
	text += "\nContent:\n"
	text += result.Text
	return text
}

func (s *Server) formatScanDirectoryResult(result *extract.ScanDirectoryResult) string {
	text := fmt.Sprintf("Found %d pricing document(s) in directory: %s\n", result.TotalCount, result.Directory)
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Format: %s\n", file.Format)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
		if i < len(result.Files)-1 {
			text += "\n"
		}
	}

	return text
}

func (s *Server) formatRecommendation(result *extract.ExtractFileResult, rec *intelligence.Recommendation) string {
	text := fmt.Sprintf("Billing Model Recommendation for: %s\n", result.FileName)
	text += fmt.Sprintf("Items analyzed: %d\n\n", rec.ItemCount)

	text += fmt.Sprintf("Recommended model: %s\n", rec.Model.DisplayName())
	text += fmt.Sprintf("Confidence: %.0f%%\n", rec.Confidence)

	text += "\nRationale:\n"
	for _, line := range rec.Rationale {
		text += fmt.Sprintf("  • %s\n", line)
	}

	text += "\nItem type shares:\n"
	text += fmt.Sprintf("  Metered: %.0f%%\n", rec.Shares.Metered*100)
	text += fmt.Sprintf("  Recurring: %.0f%%\n", rec.Shares.Recurring*100)
	text += fmt.Sprintf("  One-time: %.0f%%\n", rec.Shares.OneTime*100)

	if rec.Revenue.HighMonthly > 0 {
		text += fmt.Sprintf("\nEstimated monthly revenue: %.2f - %.2f %s\n",
			rec.Revenue.LowMonthly, rec.Revenue.HighMonthly, rec.Revenue.Currency)
		text += fmt.Sprintf("Basis: %s\n", rec.Revenue.Basis)
	}

	text += "\n⚠️  This recommendation is advisory. Review the shares and rationale before committing to a model.\n"
	return text
}

func (s *Server) formatServerInfoResult(result *extract.ServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Default Directory: %s\n", result.DefaultDirectory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n\n", result.MaxFileSize/(1024*1024))

	// Directory contents
	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("📂 Directory Contents (%d documents found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 { // Limit to first 10 files for readability
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "📂 Directory Contents: No pricing documents found in default directory\n\n"
	}

	// Available tools
	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Description: %s\n", tool.Description)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	// Supported formats
	if len(result.SupportedFormats) > 0 {
		text += "\n📄 Supported Formats:\n"
		for _, format := range result.SupportedFormats {
			text += fmt.Sprintf("  • %s\n", format)
		}
	}

	// Usage guidance
	text += "\n" + result.UsageGuidance

	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		s.logger.Debug("starting ratesheet MCP server in stdio mode",
			zap.String("document_directory", s.config.DocumentDirectory),
		)
	}

	// Use the mark3labs/mcp-go server.ServeStdio function
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	// The mark3labs library handles transports differently; stdio is the
	// only transport wired up so far.
	s.logger.Warn("server mode not yet implemented, falling back to stdio",
		zap.String("address", s.config.Address()),
	)
	return s.runStdioMode(ctx)
}
