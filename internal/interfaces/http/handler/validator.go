package handler

import (
	"github.com/edutrack/backend/internal/domain/ledger"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs custom binding validators on gin's validator
// engine. Safe to call more than once.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("feekey", validFeeKey)
}

// validFeeKey accepts lowercase letters, numbers and underscores only
func validFeeKey(fl validator.FieldLevel) bool {
	_, err := ledger.ParseFeeKey(fl.Field().String())
	return err == nil
}
