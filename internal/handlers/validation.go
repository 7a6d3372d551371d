package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterCustomValidations installs binding validations that gin's
// default engine cannot express, currently the "dgt0" check for
// decimal amounts that must be strictly positive.
func RegisterCustomValidations(logger *slog.Logger) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		logger.Warn("Unexpected binding validator engine, custom validations skipped")
		return
	}
	if err := v.RegisterValidation("dgt0", decimalGreaterThanZero); err != nil {
		logger.Warn("Failed to register dgt0 validation", slog.String("error", err.Error()))
	}
}

func decimalGreaterThanZero(fl validator.FieldLevel) bool {
	d, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return d.IsPositive()
}
