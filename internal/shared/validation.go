package shared

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format of Date.
const DateLayout = "2006-01-02"

// Date is a calendar date serialised as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(d.Format(DateLayout))), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" {
		*d = Date{}
		return nil
	}
	s, err := strconv.Unquote(raw)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	*d = Date{Time: t}
	return nil
}

// RuleTable maps "<json field>.<tag>" to the ErrorCode reported when that rule fails.
type RuleTable map[string]ErrorCode

// Validator evaluates request shapes before they reach business logic.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewValidator builds a Validator that reports json field names and knows
// three extra rules: "dob=<years>" minimum age, "bcryptlen" (at most
// MaxPasswordBytes bytes) and "authority" (non-empty, no whitespace, so the
// name survives a space separated token scope).
func NewValidator() *Validator {
	v := &Validator{validate: validator.New(), now: time.Now}
	v.validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	v.validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(Date); ok {
			if d.IsZero() {
				return nil
			}
			return d.Time
		}
		return nil
	}, Date{})
	_ = v.validate.RegisterValidation("dob", v.minimumAge)
	_ = v.validate.RegisterValidation("bcryptlen", fitsBcrypt)
	_ = v.validate.RegisterValidation("authority", isAuthorityName)
	return v
}

// Check validates req. The first failing rule is translated through rules;
// failures without an entry become ErrInvalidKey carrying a generic message.
func (v *Validator) Check(req any, rules RuleTable) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return Render(ErrInvalidKey, "")
	}
	first := fieldErrs[0]
	if code, ok := rules[first.Field()+"."+first.Tag()]; ok {
		return Render(code, first.Param())
	}
	return &CodedError{Code: ErrInvalidKey, Message: FieldMessage(first)}
}

// FieldMessage renders a human readable message for a single failed rule.
func FieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "uppercase":
		return fmt.Sprintf("%s must be uppercase", fe.Field())
	case "bcryptlen":
		return fmt.Sprintf("%s must be at most %d bytes", fe.Field(), MaxPasswordBytes)
	case "authority":
		return fmt.Sprintf("%s must not be blank or contain whitespace", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func (v *Validator) minimumAge(fl validator.FieldLevel) bool {
	dob, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	years, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	// Compare calendar dates: today in the server's zone against the UTC
	// midnight of the birth date.
	today := NewDate(v.now())
	return !NewDate(dob).AddDate(years, 0, 0).After(today.Time)
}

func fitsBcrypt(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxPasswordBytes
}

func isAuthorityName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	return name != "" && strings.IndexFunc(name, unicode.IsSpace) < 0
}
