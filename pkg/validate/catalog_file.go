package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gunvolt24/shop_backend/internal/ports"
)

// InputFormat допустимые значения.
type InputFormat string

const (
	FormatAuto  InputFormat = "auto"
	FormatJSON  InputFormat = "json"
	FormatJSONL InputFormat = "jsonl"
)

// Summary — итог проверки файла каталога.
type Summary struct {
	Valid   int
	Invalid int
}

func (s Summary) String() string { return fmt.Sprintf("%d valid / %d invalid", s.Valid, s.Invalid) }

// ValidateCatalogFile — валидирует файл каталога товаров и пишет валидные записи в writer (JSONL).
// JSON-файл может содержать один товар или массив товаров.
func ValidateCatalogFile(ctx context.Context, validator ports.Validator, filePath string, format InputFormat, ow io.Writer) (Summary, error) {
	if format == FormatAuto {
		format = detectFormat(filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return Summary{}, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	switch format {
	case FormatJSON:
		raw, err := io.ReadAll(file)
		if err != nil {
			return Summary{}, fmt.Errorf("read file: %w", err)
		}
		return validateJSONDocument(ctx, validator, raw, ow)

	case FormatJSONL:
		result, err := ValidateJSONLStream(ctx, validator, file, ow)
		return Summary{Valid: result.ValidLinesCount, Invalid: result.InvalidLinesCount}, err

	default:
		return Summary{}, fmt.Errorf("unsupported format: %s", format)
	}
}

// detectFormat — формат по расширению; по умолчанию JSON.
func detectFormat(filePath string) InputFormat {
	if strings.EqualFold(filepath.Ext(filePath), ".jsonl") {
		return FormatJSONL
	}
	return FormatJSON
}

// validateJSONDocument — один объект или массив объектов.
func validateJSONDocument(ctx context.Context, validator ports.Validator, raw []byte, ow io.Writer) (Summary, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		product, err := ProductFromJSON(ctx, validator, trimmed)
		if err != nil {
			return Summary{Invalid: 1}, err
		}
		return Summary{Valid: 1}, writeLine(ow, product)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return Summary{Invalid: 1}, fmt.Errorf("%w: invalid json: %v", ErrInvalidInput, err)
	}

	var sum Summary
	for _, item := range items {
		product, err := ProductFromJSON(ctx, validator, item)
		if err != nil {
			sum.Invalid++
			continue
		}
		if err := writeLine(ow, product); err != nil {
			return sum, err
		}
		sum.Valid++
	}
	return sum, nil
}
