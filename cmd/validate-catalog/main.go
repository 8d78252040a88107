package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Gunvolt24/shop_backend/pkg/validate"
)

// CLI-приложение для проверки файла каталога товаров перед импортом.
// Валидные товары печатаются в stdout (JSONL), итог — в stderr.
func main() {
	inputPath := flag.String("in", "", "path to catalog (.json or .jsonl). If empty, reads JSONL from stdin.")
	formatStr := flag.String("format", "auto", "input format: auto|json|jsonl")
	strict := flag.Bool("strict", false, "exit with code 1 if any record is invalid")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validator := validate.NewValidator()
	format := validate.InputFormat(*formatStr)

	path := *inputPath
	if path == "" {
		// stdin: считаем, что JSONL
		path = "/dev/stdin"
		if format == validate.FormatAuto {
			format = validate.FormatJSONL
		}
	}

	summary, err := validate.ValidateCatalogFile(ctx, validator, path, format, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "validation: %v (%s)\n", err, summary)
		os.Exit(1)
	}
	if *strict && summary.Invalid > 0 {
		fmt.Fprintf(os.Stderr, "validation failed (%s)\n", summary)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "validation ok (%s)\n", summary)
}
