package extract

import (
	"fmt"
	"sync"
	"time"

	"github.com/parsebill/ratesheet/internal/descriptions"
)

// ServerInfoRequest asks for server capabilities and configuration.
type ServerInfoRequest struct{}

// ToolInfo describes one registered tool for server-info responses.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}

// ServerInfoResult reports server capabilities, configuration and the
// current contents of the default document directory.
type ServerInfoResult struct {
	ServerName        string     `json:"server_name"`
	Version           string     `json:"version"`
	DefaultDirectory  string     `json:"default_directory"`
	MaxFileSize       int64      `json:"max_file_size"`
	SupportedFormats  []string   `json:"supported_formats"`
	DirectoryContents []FileInfo `json:"directory_contents"`
	AvailableTools    []ToolInfo `json:"available_tools"`
	UsageGuidance     string     `json:"usage_guidance"`
}

// infoCache keeps the last directory listing so repeated server-info
// calls do not rescan on every request.
type infoCache struct {
	mu         sync.Mutex
	directory  string
	files      []FileInfo
	lastUpdate time.Time
	ttl        time.Duration
}

// ServerInfo assembles the capability report for the given identity and
// default directory.
func (s *Service) ServerInfo(_ ServerInfoRequest, serverName, version, defaultDirectory string) (*ServerInfoResult, error) {
	return &ServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DefaultDirectory:  defaultDirectory,
		MaxFileSize:       s.maxFileSize,
		SupportedFormats:  SupportedExtensions(),
		DirectoryContents: s.cachedScan(defaultDirectory),
		AvailableTools:    availableTools(),
		UsageGuidance:     s.usageGuidance(),
	}, nil
}

// cachedScan lists the directory, reusing the previous listing while it is
// fresh. Scan failures degrade to an empty listing rather than failing the
// whole info call.
func (s *Service) cachedScan(dir string) []FileInfo {
	s.info.mu.Lock()
	defer s.info.mu.Unlock()

	if s.info.directory == dir && time.Since(s.info.lastUpdate) < s.info.ttl {
		return s.info.files
	}

	res, err := s.scan.ScanDirectory(ScanDirectoryRequest{Directory: dir})
	if err != nil {
		return []FileInfo{}
	}

	s.info.directory = dir
	s.info.files = res.Files
	s.info.lastUpdate = time.Now()
	return res.Files
}

// availableTools returns the registered tool roster.
func availableTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "ratesheet_extract_file",
			Description: descriptions.GetToolDescription("ratesheet_extract_file"),
			Usage:       "Use this tool to turn a pricing document into normalized billing items.",
			Parameters:  "path (required): Full path to the document (spreadsheet, CSV, JSON, PDF, image or text)",
		},
		{
			Name:        "ratesheet_extract_text",
			Description: descriptions.GetToolDescription("ratesheet_extract_text"),
			Usage:       "Use this tool to inspect the raw text behind a PDF, image or plain-text document.",
			Parameters:  "path (required): Full path to the document",
		},
		{
			Name:        "ratesheet_scan_directory",
			Description: descriptions.GetToolDescription("ratesheet_scan_directory"),
			Usage:       "Use this tool to list the supported pricing documents under a directory.",
			Parameters: "directory (optional): Directory to scan (uses the default directory if empty), " +
				"query (optional): Filter file names by substring or word match",
		},
		{
			Name:        "ratesheet_recommend_model",
			Description: descriptions.GetToolDescription("ratesheet_recommend_model"),
			Usage:       "Use this tool to extract a document and get an advisory billing-model recommendation for its items.",
			Parameters:  "path (required): Full path to the document",
		},
		{
			Name:        "ratesheet_server_info",
			Description: descriptions.GetToolDescription("ratesheet_server_info"),
			Usage:       "Use this tool to get server capabilities, configuration and directory contents.",
			Parameters:  "No parameters required",
		},
	}
}

// usageGuidance returns the workflow guide shown in server-info responses.
func (s *Service) usageGuidance() string {
	maxFileSizeMB := s.maxFileSize / (1024 * 1024)

	return fmt.Sprintf(`Ratesheet Server Usage Guide:

1. START WITH DISCOVERY:
   - Use 'ratesheet_scan_directory' to find supported pricing documents
   - Use 'ratesheet_server_info' to get capabilities and the default directory contents

2. EXTRACT ITEMS:
   - Use 'ratesheet_extract_file' on each document
   - Check 'status' and 'confidence' in the response:
     * spreadsheet/CSV/JSON sources carry the highest confidence
     * PDF and scanned-image sources are reconstructed from text and deserve review
     * a single zero-priced one-time item means the document had no usable pricing lines

3. INSPECT WHEN IN DOUBT:
   - Use 'ratesheet_extract_text' to see the raw text the parser worked from

4. RECOMMEND A MODEL:
   - Use 'ratesheet_recommend_model' after extraction for an advisory billing-model read
   - The shares and rationale matter more than the single label

IMPORTANT NOTES:
- Always use absolute file paths
- The server can handle files up to %dMB
- Image sources require a working text-recognition engine; without one the image path is disabled
- Unsupported formats fail that file only and name the rejected extension`, maxFileSizeMB)
}
