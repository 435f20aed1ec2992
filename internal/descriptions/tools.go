package descriptions

// Comprehensive tool descriptions with practical examples and use cases

const (
	// Extraction Tools
	ExtractFileDescription = `Extract normalized billing items from a pricing document.

**When to use:** You have a spreadsheet, CSV, JSON export, PDF or scanned image of a price list and need its line items as structured billing data.

**Why it's useful:** One call handles format detection, parsing, price normalization and billing-type inference, returning items with consistent ids, minor-unit amounts and per-item metadata.

**Examples:**
• Spreadsheet import: "Extract billing items from pricing.xlsx to review the plan lineup"
• Vendor rate card: "Pull the line items out of vendor-rates.pdf"
• Scanned sheet: "Extract items from scanned-pricelist.png via text recognition"

**Common workflows:**
1. Import: Extract file → Review items → Feed billing configuration
2. Comparison: Extract several files → Compare prices across vendors
3. Capture: Scan to hot folder → Extract frame → Confirm recognized items

**Best practices:** Check the per-file status and confidence in the response; a low confidence means the source was a degenerate PDF or noisy scan and the items deserve manual review.`

	ExtractTextDescription = `Extract raw text from a PDF, image, or plain-text document without item normalization.

**When to use:** You want the underlying text of a document to inspect it yourself, or the item extraction produced something surprising and you need to see what the parser saw.

**Why it's useful:** Exposes the exact reconstructed text the pipeline works from, which makes extraction results explainable.

**Examples:**
• Debugging: "Show the raw text of ratesheet.pdf to see why only one item came back"
• Inspection: "Get the recognized text from scan.jpg before trusting the items"

**Common workflows:**
1. Diagnosis: Extract items → unexpected result → Extract text → adjust the source document
2. Manual review: Extract text → read pricing prose directly

**Best practices:** Only PDF, image and plain-text sources carry raw text; tabular formats are already structured and are rejected by this tool.`

	ScanDirectoryDescription = `Discover pricing documents in a directory with optional name filtering.

**When to use:** Need to find which files under a directory the extractor can process, or locate a specific document by part of its name.

**Why it's useful:** Lists only supported formats, with size and modification times, so batch extraction can be planned without trial and error.

**Examples:**
• Inventory: "List every supported pricing document under /data/pricing"
• Lookup: "Find files matching 'enterprise' in the documents directory"

**Common workflows:**
1. Batch preparation: Scan directory → pick files → extract each
2. Discovery: Scan with a query → confirm the expected upload arrived

**Best practices:** Combine with ratesheet_extract_file on the returned paths; unsupported files are omitted rather than reported as errors.`

	RecommendModelDescription = `Recommend a billing model for a set of extracted items.

**When to use:** After extracting items from one or more documents, to get an advisory read on whether the catalog looks usage-based, subscription, hybrid or per-seat.

**Why it's useful:** Encodes the share-based decision rules with rationale strings and a rough revenue range, so the suggestion can be justified or discarded.

**Examples:**
• Model selection: "Given the items from pricing.csv, which billing model fits?"
• Sanity check: "Does this vendor's catalog look like a hybrid model?"

**Common workflows:**
1. Configuration: Extract items → recommend model → configure billing around it
2. Review: Extract from several documents → recommend per batch → compare

**Best practices:** The recommendation is advisory only; the shares and rationale in the response matter more than the single label.`

	ServerInfoDescription = `Get server status, available tools, supported formats, and usage guidance.

**When to use:** Starting a session with the ratesheet server, troubleshooting, or discovering what the server can process.

**Why it's useful:** Reports the configured document directory, size limits, supported extensions and every registered tool in one call.

**Examples:**
• Session start: "Check the server is up and which directory it reads from"
• Troubleshooting: "See why scan.tiff was rejected by listing supported formats"

**Common workflows:**
1. Startup: Server info → scan directory → extract files
2. Debugging: Server info → verify configuration → retry the failing call

**Best practices:** Run once at the start of a session; the supported-format list is the authoritative allow-list for uploads.`
)

// ToolDescriptions maps tool names to their comprehensive descriptions
var ToolDescriptions = map[string]string{
	"ratesheet_extract_file":    ExtractFileDescription,
	"ratesheet_extract_text":    ExtractTextDescription,
	"ratesheet_scan_directory":  ScanDirectoryDescription,
	"ratesheet_recommend_model": RecommendModelDescription,
	"ratesheet_server_info":     ServerInfoDescription,
}

// GetToolDescription returns the comprehensive description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a list of all available tool names
func GetAllToolNames() []string {
	var names []string
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	return names
}
