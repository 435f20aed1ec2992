package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/parsebill/ratesheet/internal/billing"
	"github.com/parsebill/ratesheet/internal/capture"
	"github.com/parsebill/ratesheet/internal/extract"
	"github.com/parsebill/ratesheet/internal/intelligence"
	"github.com/parsebill/ratesheet/internal/recognize"
)

var (
	outputFormat = flag.String("format", "text", "Output format: text, json")
	recommend    = flag.Bool("recommend", false, "Recommend a billing model for the extracted items")
	watchDir     = flag.String("watch", "", "Watch a spool directory for scanned images instead of reading file arguments")
	language     = flag.String("lang", "eng", "Text recognition language for image documents")
	fileTimeout  = flag.Duration("timeout", 2*time.Minute, "Per-file processing timeout")
	verbose      = flag.Bool("verbose", false, "Enable verbose output")
	help         = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if *watchDir == "" && flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: document path required\n\n")
		printUsage()
		os.Exit(1)
	}

	logger := zap.NewNop()
	if *verbose {
		dev, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
			os.Exit(1)
		}
		logger = dev
	}
	defer logger.Sync() //nolint:errcheck

	engine, err := recognize.NewEngine(recognize.EngineTesseract, *language)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up text recognition: %v\n", err)
		os.Exit(1)
	}

	svc := extract.NewService(extract.ServiceConfig{
		FileTimeout: *fileTimeout,
		Recognizer:  recognize.NewRecognizer(recognize.Config{Engine: engine, Logger: logger}),
		Logger:      logger,
	})

	classifier := intelligence.NewClassifier(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *watchDir != "" {
		if err := runWatch(ctx, svc, classifier, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error watching spool directory: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runBatch(ctx, svc, classifier); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// batchOutput is the JSON shape emitted with -format json.
type batchOutput struct {
	Files          []extract.ExtractFileResult  `json:"files"`
	Completed      int                          `json:"completed"`
	Failed         int                          `json:"failed"`
	Items          int                          `json:"items"`
	Recommendation *intelligence.Recommendation `json:"recommendation,omitempty"`
}

// runBatch extracts every file named on the command line. The process
// exits non-zero only when no file succeeds.
func runBatch(ctx context.Context, svc *extract.Service, classifier *intelligence.Classifier) error {
	reqs := make([]extract.ExtractFileRequest, 0, flag.NArg())
	for _, path := range flag.Args() {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
		reqs = append(reqs, extract.ExtractFileRequest{Path: path})
	}

	batch := svc.ExtractBatch(ctx, reqs)

	out := batchOutput{
		Files:     batch.Files,
		Completed: batch.Completed,
		Failed:    batch.Failed,
		Items:     batch.Items,
	}

	if *recommend {
		rec := classifier.Recommend(collectItems(batch.Files))
		out.Recommendation = &rec
	}

	if err := outputResults(&out); err != nil {
		return fmt.Errorf("outputting results: %w", err)
	}

	if batch.Completed == 0 {
		return fmt.Errorf("no files could be processed")
	}
	return nil
}

// runWatch feeds spooled scanner frames through the pipeline until
// interrupted. Each frame is processed as an in-memory image document.
func runWatch(ctx context.Context, svc *extract.Service, classifier *intelligence.Classifier, logger *zap.Logger) error {
	device := capture.NewSpoolDevice(capture.SpoolConfig{Dir: *watchDir, Logger: logger})
	manager := capture.NewManager(logger)

	session, err := manager.Acquire(ctx, device)
	if err != nil {
		return err
	}
	defer session.Close() //nolint:errcheck

	fmt.Printf("👀 Watching %s for scanned pricing documents (Ctrl-C to stop)\n\n", *watchDir)

	for {
		frame, err := session.Capture(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, capture.ErrNoFrame) {
				fmt.Println("\nStopped watching.")
				return nil
			}
			return err
		}

		result := svc.ExtractFile(ctx, extract.ExtractFileRequest{Name: frame.Name, Data: frame.Data})
		printFileResult(&result)

		if *recommend && result.Status == extract.StatusCompleted {
			rec := classifier.Recommend(result.Items)
			fmt.Printf("    Suggested model: %s (%.0f%% confidence)\n\n", rec.Model.DisplayName(), rec.Confidence)
		}
	}
}

func collectItems(files []extract.ExtractFileResult) []billing.Item {
	var items []billing.Item
	for _, f := range files {
		if f.Status == extract.StatusCompleted {
			items = append(items, f.Items...)
		}
	}
	return items
}

func outputResults(out *batchOutput) error {
	switch *outputFormat {
	case "json":
		return outputJSON(out)
	case "text":
		return outputText(out)
	default:
		return fmt.Errorf("unsupported output format: %s", *outputFormat)
	}
}

func outputJSON(out *batchOutput) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func outputText(out *batchOutput) error {
	for i := range out.Files {
		printFileResult(&out.Files[i])
	}

	fmt.Printf("Processed %d file(s): %d completed, %d failed, %d items\n",
		len(out.Files), out.Completed, out.Failed, out.Items)

	if out.Recommendation != nil {
		rec := out.Recommendation
		fmt.Println()
		fmt.Printf("Recommended billing model: %s (%.0f%% confidence)\n", rec.Model.DisplayName(), rec.Confidence)
		for _, line := range rec.Rationale {
			fmt.Printf("  • %s\n", line)
		}
	}

	return nil
}

func printFileResult(result *extract.ExtractFileResult) {
	if result.Status != extract.StatusCompleted {
		fmt.Printf("❌ %s: %s\n\n", result.FileName, result.Error)
		return
	}

	fmt.Printf("✅ %s (%s, confidence %.1f)\n", result.FileName, result.Format, result.Confidence)
	for _, item := range result.Items {
		line := fmt.Sprintf("    [%s] %s: %s %.4f", item.ID, item.Product, item.Currency, item.Price)
		switch {
		case item.EventName != "":
			line += fmt.Sprintf(" per %s event", item.EventName)
		case item.Interval != "":
			line += fmt.Sprintf(" per %s", item.Interval)
		}
		fmt.Println(line)
	}
	fmt.Println()
}

func printHelp() {
	fmt.Println("Ratesheet Extract - Turn pricing documents into normalized billing items")
	fmt.Println()
	fmt.Println("Reads spreadsheets, CSV/TSV exports, JSON price lists, PDFs, scanned images")
	fmt.Println("and plain-text rate sheets, and emits one normalized item per pricing line.")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -format       Output format: text (default), json")
	fmt.Println("  -recommend    Recommend a billing model for the extracted items")
	fmt.Println("  -watch        Watch a spool directory for scanned images instead of file arguments")
	fmt.Println("  -lang         Text recognition language for image documents (default eng)")
	fmt.Println("  -timeout      Per-file processing timeout (default 2m)")
	fmt.Println("  -verbose      Enable verbose output")
	fmt.Println("  -help         Show this help message")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  ratesheet-extract pricing.xlsx")
	fmt.Println("  ratesheet-extract -format json plans.csv rates.json > items.json")
	fmt.Println("  ratesheet-extract -recommend pricing.pdf")
	fmt.Println("  ratesheet-extract -watch /var/spool/scans -recommend")
	fmt.Println()
	fmt.Println("EXIT STATUS:")
	fmt.Println("  0 if at least one file was processed successfully, 1 otherwise.")
	fmt.Println("  Per-file failures are reported inline and never abort the batch.")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Println("  ratesheet-extract [OPTIONS] <document> [<document>...]")
	fmt.Println("  ratesheet-extract -watch <directory> [OPTIONS]")
}
