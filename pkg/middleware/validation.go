package middleware

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// InitValidator initializes the validator with custom validators
func InitValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		registerCustom(validate)

		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			registerCustom(v)
		}
	})

	return validate
}

// GetValidator returns the singleton validator instance
func GetValidator() *validator.Validate {
	if validate == nil {
		return InitValidator()
	}
	return validate
}

func registerCustom(v *validator.Validate) {
	_ = v.RegisterValidation("order_type", validateOrderType)
	_ = v.RegisterValidation("pallet_code", validatePalletCode)
	_ = v.RegisterValidation("sku", validateSKU)

	// Use JSON tag names for error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}

var (
	palletCodeRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{1,63}$`)
	skuRegex        = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]{0,63}$`)
)

func validateOrderType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "receiving", "processing", "stock_move", "packing":
		return true
	default:
		return false
	}
}

func validatePalletCode(fl validator.FieldLevel) bool {
	return palletCodeRegex.MatchString(fl.Field().String())
}

func validateSKU(fl validator.FieldLevel) bool {
	return skuRegex.MatchString(fl.Field().String())
}
