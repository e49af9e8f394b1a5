package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/minters-xyz/go-minters/service/persist"
)

// ValField pairs a value with its validation tag
type ValField struct {
	Value any
	Tag   string
}

// ValidationMap maps field names to the value/tag pairs to validate
type ValidationMap map[string]ValField

// WithTag builds a ValField
func WithTag(value any, tag string) ValField {
	return ValField{Value: value, Tag: tag}
}

// New returns a validator with the custom rules used across handlers registered
func New() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("eth_addr_optional", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || isHexAddress(s)
	})
	return v
}

// ValidateFields validates each entry in the map and returns an error naming
// every failing field
func ValidateFields(v *validator.Validate, fields ValidationMap) error {
	var failed []string

	for name, field := range fields {
		if err := v.Var(field.Value, field.Tag); err != nil {
			failed = append(failed, name)
		}
	}

	if len(failed) > 0 {
		return ErrInvalidFields{Fields: failed}
	}

	return nil
}

// ErrInvalidFields is returned when one or more request fields fail validation
type ErrInvalidFields struct {
	Fields []string
}

func (e ErrInvalidFields) Error() string {
	return fmt.Sprintf("invalid or missing fields: %s", strings.Join(e.Fields, ", "))
}

// ErrCreatorShares is returned when creator contribution percentages do not sum to 100
type ErrCreatorShares struct {
	Total int
}

func (e ErrCreatorShares) Error() string {
	return fmt.Sprintf("creator contribution percentages must sum to 100, got %d", e.Total)
}

// ValidateCreators enforces the contribution invariant before any upload or
// chain call is made
func ValidateCreators(creators []persist.Creator) error {
	if len(creators) == 0 {
		return ErrInvalidFields{Fields: []string{"creators"}}
	}

	total := 0
	for _, creator := range creators {
		total += creator.ContributionPercent
	}

	if total != 100 {
		return ErrCreatorShares{Total: total}
	}

	return nil
}

func isHexAddress(s string) bool {
	if !strings.HasPrefix(s, "0x") || len(s) != 42 {
		return false
	}
	for _, r := range s[2:] {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') && (r < 'A' || r > 'F') {
			return false
		}
	}
	return true
}
