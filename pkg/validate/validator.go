package validate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/internal/ports"
	"github.com/go-playground/validator/v10"
)

// Проверка, что StructValidator удовлетворяет интерфейсу Validator.
var _ ports.Validator = (*StructValidator)(nil)

// ErrInvalidInput — алиас доменной ошибки валидации (для errors.Is на внешних слоях).
var ErrInvalidInput = domain.ErrValidation

// bcryptMaxBytes — предел длины пароля для bcrypt в байтах.
const bcryptMaxBytes = 72

// StructValidator — валидация входных структур по тегам `validate`.
type StructValidator struct {
	v *validator.Validate
}

// NewValidator — конструктор StructValidator с кастомными правилами.
func NewValidator() *StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// В сообщениях — имена полей как в JSON.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// money — не больше двух знаков после запятой.
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.Float64 && f.Kind() != reflect.Float32 {
			return false
		}
		cents := f.Float() * 100
		return math.Abs(cents-math.Round(cents)) < 1e-6
	})

	// bcryptlen — bcrypt обрезает пароль по 72 байтам, а max считает руны.
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		return f.Kind() == reflect.String && len(f.String()) <= bcryptMaxBytes
	})

	return &StructValidator{v: v}
}

// Validate — проверяет структуру; при ошибке возвращает ErrInvalidInput с перечнем полей.
func (s *StructValidator) Validate(_ context.Context, in any) error {
	if in == nil {
		return fmt.Errorf("%w: пустой объект", ErrInvalidInput)
	}
	err := s.v.Struct(in)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

// describe — человекочитаемое описание ошибки поля.
func describe(fe validator.FieldError) string {
	field := trimRoot(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return field + " обязателен"
	case "gte":
		if fe.Param() == "0" {
			return field + " должен быть неотрицательным"
		}
		return field + " должен быть >= " + fe.Param()
	case "gt":
		return field + " должен быть > " + fe.Param()
	case "lte", "max":
		return field + " превышает допустимое значение " + fe.Param()
	case "min":
		return field + " меньше допустимого значения " + fe.Param()
	case "email":
		return field + " некорректен"
	case "bcryptlen":
		return field + " длиннее 72 байт"
	case "money":
		return field + " допускает не более двух знаков после запятой"
	default:
		return field + " не проходит правило " + fe.Tag()
	}
}

// trimRoot — "Product.price" → "price", "NewOrderInput.items[0].quantity" → "items[0].quantity".
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
