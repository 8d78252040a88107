package validate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/internal/ports"
)

// JSONLResult — статистика валидации потока JSONL.
type JSONLResult struct {
	ValidLinesCount   int
	InvalidLinesCount int
}

// ProductFromJSON — строгий разбор одного товара (неизвестные поля и хвост запрещены) и валидация.
func ProductFromJSON(ctx context.Context, validator ports.Validator, raw []byte) (*domain.Product, error) {
	var product domain.Product
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&product); err != nil {
		return nil, fmt.Errorf("%w: invalid json: %v", ErrInvalidInput, err)
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		return nil, fmt.Errorf("%w: invalid json: trailing data", ErrInvalidInput)
	}
	if err := validator.Validate(ctx, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// ValidateJSONLStream — читает JSONL, валидирует каждую строку, валидные пишет в writer
// каноническим JSON одной строкой. Пустые строки пропускаются.
func ValidateJSONLStream(ctx context.Context, validator ports.Validator, ir io.Reader, ow io.Writer) (JSONLResult, error) {
	var res JSONLResult

	scanner := bufio.NewScanner(ir)
	// запас на большие строки (описания товаров)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		product, err := ProductFromJSON(ctx, validator, line)
		if err != nil {
			res.InvalidLinesCount++
			continue
		}
		if err := writeLine(ow, product); err != nil {
			return res, err
		}
		res.ValidLinesCount++
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("scan: %w", err)
	}
	return res, nil
}

// writeLine — компактный JSON + перевод строки.
func writeLine(ow io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	data = append(data, '\n')
	if _, err := ow.Write(data); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	return nil
}
