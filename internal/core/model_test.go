package core_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"concilia/internal/core"
)

func TestDirectionMapping(t *testing.T) {
	assert.Equal(t, core.MovementCredit, core.MovementDirectionFor(core.LedgerIn))
	assert.Equal(t, core.MovementDebit, core.MovementDirectionFor(core.LedgerOut))
	assert.Equal(t, core.LedgerIn, core.LedgerDirectionFor(core.MovementCredit))
	assert.Equal(t, core.LedgerOut, core.LedgerDirectionFor(core.MovementDebit))
}

func TestMovementSignedAmount(t *testing.T) {
	credit := core.Movement{Amount: decimal.NewFromInt(100), Direction: core.MovementCredit}
	debit := core.Movement{Amount: decimal.NewFromInt(100), Direction: core.MovementDebit}
	assert.Equal(t, "100", credit.SignedAmount().String())
	assert.Equal(t, "-100", debit.SignedAmount().String())
}

func TestMovementValidate(t *testing.T) {
	tests := []struct {
		name    string
		m       core.Movement
		wantErr bool
	}{
		{"valid credit", core.Movement{Amount: decimal.NewFromInt(10), Direction: core.MovementCredit}, false},
		{"zero amount is valid", core.Movement{Amount: decimal.Zero, Direction: core.MovementDebit}, false},
		{"negative amount", core.Movement{Amount: decimal.NewFromInt(-10), Direction: core.MovementCredit}, true},
		{"unknown direction", core.Movement{Amount: decimal.NewFromInt(10), Direction: "sideways"}, true},
		{"reconciled and ignored", core.Movement{Amount: decimal.NewFromInt(10), Direction: core.MovementCredit, Reconciled: true, Ignored: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, core.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLedgerEntryValidate(t *testing.T) {
	valid := core.LedgerEntry{Direction: core.LedgerIn, Amount: decimal.NewFromInt(50)}
	assert.NoError(t, valid.Validate())

	assert.Error(t, core.LedgerEntry{Direction: "credit", Amount: decimal.NewFromInt(50)}.Validate(),
		"movement-side vocabulary is rejected on ledger entries")
	assert.Error(t, core.LedgerEntry{Direction: core.LedgerOut, Amount: decimal.NewFromInt(-1)}.Validate())
}

func TestCategoryValidate(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name    string
		c       core.Category
		wantErr bool
	}{
		{"valid", core.Category{ID: id, Name: "Fornecedores", Direction: core.LedgerOut}, false},
		{"missing id", core.Category{Name: "Fornecedores", Direction: core.LedgerOut}, true},
		{"missing name", core.Category{ID: id, Direction: core.LedgerOut}, true},
		{"bad direction", core.Category{ID: id, Name: "Fornecedores", Direction: "out"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCategoryPatternValidate(t *testing.T) {
	catID := uuid.New()
	valid := core.CategoryPattern{Pattern: "aluguel galpao", Direction: core.LedgerOut, CategoryID: catID}
	assert.NoError(t, valid.Validate())

	assert.Error(t, core.CategoryPattern{Direction: core.LedgerOut, CategoryID: catID}.Validate())
	assert.Error(t, core.CategoryPattern{Pattern: "aluguel", Direction: core.LedgerOut}.Validate())
	assert.Error(t, core.CategoryPattern{Pattern: "aluguel", Direction: "x", CategoryID: catID}.Validate())
}
