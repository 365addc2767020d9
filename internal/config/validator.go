package config

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

// validatorInstance returns the shared, lazily-constructed validator used
// throughout the config package.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New()
	})
	return validateInst
}

// Validate runs struct-tag validation over a fully-parsed Config.
func Validate(cfg *Config) error {
	return validatorInstance().Struct(cfg)
}
