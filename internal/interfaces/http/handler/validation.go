package handler

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/retailbooks/backend/internal/domain/accounting"
	"github.com/retailbooks/backend/internal/domain/partner"
	"github.com/retailbooks/backend/internal/domain/stock"
)

// SetupValidator configures gin's binding validator with the domain enum tags
// used by request DTOs. Call once before the router is set up.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	// Use JSON tag names for field names in validation errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	enums := map[string]validator.Func{
		"voucher_type": func(fl validator.FieldLevel) bool {
			return accounting.VoucherType(fl.Field().String()).IsValid()
		},
		"account_type": func(fl validator.FieldLevel) bool {
			return accounting.AccountType(fl.Field().String()).IsValid()
		},
		"transaction_type": func(fl validator.FieldLevel) bool {
			return stock.TransactionType(fl.Field().String()).IsValid()
		},
		"party_type": func(fl validator.FieldLevel) bool {
			return partner.PartyType(fl.Field().String()).IsValid()
		},
	}
	for tag, fn := range enums {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}
