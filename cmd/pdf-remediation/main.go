package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/ivanbueno-jcc/pdf-remediation/internal/config"
	"github.com/ivanbueno-jcc/pdf-remediation/internal/pdfix"
	"github.com/ivanbueno-jcc/pdf-remediation/internal/pipeline"
	"github.com/ivanbueno-jcc/pdf-remediation/internal/verapdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
)

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" {
			fmt.Printf("pdf-remediation\nVersion: %s\nBuild Time: %s\n", version, buildTime)
			return
		}
	}

	pflag.Usage = usage

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fail("Failed to load configuration: %v", err)
	}

	args := pflag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}
	operation := args[0]

	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags)

	// Expected terminal failures print a one-line message, never a trace
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := pdfix.NewExecEngine(cfg.EngineBinary, cfg.ProfilePath)
	validator := verapdf.NewExecValidator(cfg.JarPath, cfg.Flavour)
	pipe := pipeline.New(cfg, engine, validator)

	switch operation {
	case "fix":
		folder := requireFolder(args)
		log.Printf("Processing %s files.", folder)
		if err := pipe.Fix(ctx, folder); err != nil {
			fail("%v", err)
		}
	case "validate":
		folder := requireFolder(args)
		log.Printf("Processing %s files.", folder)
		if err := pipe.Validate(ctx, folder); err != nil {
			fail("%v", err)
		}
	case "report":
		folder := requireFolder(args)
		if err := pipe.Report(ctx, folder); err != nil {
			fail("%v", err)
		}
	case "license-status":
		status, err := engine.License(ctx)
		if err != nil {
			fail("%v", err)
		}
		if status.Authorized() {
			fmt.Println("License is active.")
		} else {
			fmt.Println("License is not active.")
		}
		fmt.Println(string(status.Raw))
	case "license-activate":
		if len(args) < 2 {
			fail("Missing argument. Please provide a license key.")
		}
		if err := engine.Activate(ctx, args[1]); err != nil {
			fail("License activation failed: %v", err)
		}
		fmt.Println("License activated successfully.")
	case "license-deactivate":
		status, err := engine.License(ctx)
		if err == nil && !status.Authorized() {
			fmt.Println("License is not active. Deactivation not required.")
			return
		}
		if err := engine.Deactivate(ctx); err != nil {
			fail("%v", err)
		}
		fmt.Println("License has been successfully deactivated.")
	default:
		fail("Unknown operation: %s (expected fix, validate, report, license-status, license-activate or license-deactivate)", operation)
	}
}

// requireFolder enforces the positional folder argument shared by the
// pipeline operations.
func requireFolder(args []string) string {
	if len(args) < 2 || args[1] == "" {
		fail("Missing argument. Please provide an existing folder under the input root containing PDF files.")
	}
	return args[1]
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <operation> [folder|license-key]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nPDF/UA batch remediation and validation pipeline\n\n")
	fmt.Fprintf(os.Stderr, "Operations:\n")
	fmt.Fprintf(os.Stderr, "  fix <folder>              remediate, re-validate and report\n")
	fmt.Fprintf(os.Stderr, "  validate <folder>         validate without remediation\n")
	fmt.Fprintf(os.Stderr, "  report <folder>           rebuild reports from persisted validator XML\n")
	fmt.Fprintf(os.Stderr, "  license-status            show engine license state\n")
	fmt.Fprintf(os.Stderr, "  license-activate <key>    activate the engine license\n")
	fmt.Fprintf(os.Stderr, "  license-deactivate        release the engine license\n")
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	pflag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nEnvironment Variables (prefix PDFREM_):\n")
	fmt.Fprintf(os.Stderr, "  PDFREM_INPUT, PDFREM_OUTPUT, PDFREM_REPORTS, PDFREM_ENGINE,\n")
	fmt.Fprintf(os.Stderr, "  PDFREM_PROFILE, PDFREM_JAR, PDFREM_FLAVOUR, PDFREM_WORKERS,\n")
	fmt.Fprintf(os.Stderr, "  PDFREM_CHUNKSIZE, PDFREM_JOBTIMEOUT, PDFREM_STATE, PDFREM_COMPANY\n")
}
