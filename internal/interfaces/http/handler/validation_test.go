package handler

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator(t *testing.T) {
	require.NoError(t, SetupValidator())
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	// gin's validator resolves rules from the binding tag, not validate.
	type doc struct {
		VoucherType     string `json:"voucher_type" binding:"voucher_type"`
		TransactionType string `json:"transaction_type" binding:"transaction_type"`
		PartyType       string `json:"party_type" binding:"party_type"`
		AccountType     string `json:"account_type" binding:"account_type"`
	}

	t.Run("accepts known enum values", func(t *testing.T) {
		assert.NoError(t, v.Struct(doc{
			VoucherType:     "JOURNAL",
			TransactionType: "SALE",
			PartyType:       "CUSTOMER",
			AccountType:     "ASSET",
		}))
	})

	t.Run("rejects unknown enum values", func(t *testing.T) {
		err := v.Struct(doc{
			VoucherType:     "LEDGER",
			TransactionType: "SALE",
			PartyType:       "CUSTOMER",
			AccountType:     "ASSET",
		})
		require.Error(t, err)

		// Field names in errors come from the json tag.
		errs, ok := err.(validator.ValidationErrors)
		require.True(t, ok)
		require.Len(t, errs, 1)
		assert.Equal(t, "voucher_type", errs[0].Field())
	})
}
