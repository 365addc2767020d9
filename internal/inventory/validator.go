package inventory

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

// validatorInstance returns the shared, lazily-constructed validator used to
// reject malformed wire entries before they reach the domain layer.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New()
	})
	return validateInst
}

// validateTile rejects a wire tile entry that fails its struct tags (e.g. an
// empty relativePath), per spec §4.2's implicit well-formedness requirement
// that every tile have a primary key.
func validateTile(v interface{}) error {
	if err := validatorInstance().Struct(v); err != nil {
		return fmt.Errorf("invalid tile entry: %w", err)
	}
	return nil
}
