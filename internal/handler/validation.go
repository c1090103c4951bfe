package handler

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/innerlight/circles-backend/internal/service"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding rules. Safe to call repeatedly.
// A failed registration panics at startup instead of on the first bind.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := v.RegisterValidation("energy", validateEnergy); err != nil {
			panic(fmt.Sprintf("handler: register energy validator: %v", err))
		}
	})
}

func validateEnergy(fl validator.FieldLevel) bool {
	return ValidEnergy(fl.Field().String())
}

// ValidEnergy reports whether label is an acceptable energy label
func ValidEnergy(label string) bool {
	return service.ValidEnergy(label)
}
