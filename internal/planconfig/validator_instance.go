package planconfig

import (
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	stepIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// validatorInstance lazily builds the shared validator.Validate, registering
// the step_id rule once, mirroring the config package's own singleton.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("step_id", func(fl validator.FieldLevel) bool {
			return stepIDPattern.MatchString(fl.Field().String())
		})
		validateInst = v
	})
	return validateInst
}
