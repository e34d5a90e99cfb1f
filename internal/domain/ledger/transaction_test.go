package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/imperium/internal/domain/ledger"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

var fixedTime = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestNewTransaction_ComputesBalanceAfter(t *testing.T) {
	// Arrange
	empireID := shared.MustNewEmpireID(1)

	// Act
	tx, err := ledger.NewTransaction(empireID, 1, fixedTime, ledger.TransactionTypeResearchCharge, -300, 500, "research energy L1",
		ledger.Reference{EntityType: "queue_entry", EntityID: "e-1"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(200), tx.BalanceAfter())
	assert.Equal(t, ledger.CategoryResearch, tx.Category())
	assert.True(t, tx.IsExpense())
	assert.Equal(t, "e-1", tx.Reference().EntityID)
	assert.False(t, tx.ID().IsZero())
}

func TestNewTransaction_RejectsInvalidInput(t *testing.T) {
	empireID := shared.MustNewEmpireID(1)

	tests := []struct {
		name    string
		empire  shared.EmpireID
		seq     int64
		txType  ledger.TransactionType
		amount  int64
		before  int64
		wantErr string
	}{
		{"zero amount", empireID, 1, ledger.TransactionTypeOther, 0, 10, "amount"},
		{"zero empire", shared.EmpireID{}, 1, ledger.TransactionTypeOther, 5, 10, "empire_id"},
		{"bad sequence", empireID, 0, ledger.TransactionTypeOther, 5, 10, "sequence"},
		{"unknown type", empireID, 1, ledger.TransactionType("bribe"), 5, 10, "transaction_type"},
		{"negative result", empireID, 1, ledger.TransactionTypeConstructionCharge, -11, 10, "balance_after"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.NewTransaction(tt.empire, tt.seq, fixedTime, tt.txType, tt.amount, tt.before, "", ledger.Reference{})

			var invalid *ledger.ErrInvalidTransaction
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.wantErr, invalid.Field)
		})
	}
}

func TestValidate_DetectsBrokenInvariant(t *testing.T) {
	tx := ledger.ReconstructTransaction(ledger.NewTransactionID(), shared.MustNewEmpireID(1), 1, fixedTime,
		ledger.TransactionTypePayout, ledger.CategoryIncome, 100, 0, 90, "", ledger.Reference{})

	var violation *ledger.ErrBalanceInvariantViolation
	require.ErrorAs(t, tx.Validate(), &violation)
	assert.Equal(t, int64(100), violation.Expected)
}

func TestTransactionType_RefundsShareChargeCategory(t *testing.T) {
	pairs := map[ledger.TransactionType]ledger.TransactionType{
		ledger.TransactionTypeConstructionCharge:   ledger.TransactionTypeConstructionRefund,
		ledger.TransactionTypeResearchCharge:       ledger.TransactionTypeResearchRefund,
		ledger.TransactionTypeUnitProductionCharge: ledger.TransactionTypeUnitProductionRefund,
		ledger.TransactionTypeDefenseCharge:        ledger.TransactionTypeDefenseRefund,
	}

	for charge, refund := range pairs {
		chargeCategory, err := charge.ToCategory()
		require.NoError(t, err)
		refundCategory, err := refund.ToCategory()
		require.NoError(t, err)

		assert.Equal(t, chargeCategory, refundCategory)
		assert.True(t, refund.IsRefund())
		assert.False(t, charge.IsRefund())
	}
}

func TestClampHistoryLimit(t *testing.T) {
	assert.Equal(t, 50, ledger.ClampHistoryLimit(0))
	assert.Equal(t, 1, ledger.ClampHistoryLimit(-4))
	assert.Equal(t, 200, ledger.ClampHistoryLimit(1000))
	assert.Equal(t, 17, ledger.ClampHistoryLimit(17))
}

func buildChain(t *testing.T, amounts ...int64) []*ledger.Transaction {
	t.Helper()
	empireID := shared.MustNewEmpireID(3)
	var balance int64
	var chain []*ledger.Transaction
	for i, amount := range amounts {
		tx, err := ledger.NewTransaction(empireID, int64(i+1), fixedTime.Add(time.Duration(i)*time.Second),
			ledger.TransactionTypeOther, amount, balance, "", ledger.Reference{})
		require.NoError(t, err)
		balance = tx.BalanceAfter()
		chain = append(chain, tx)
	}
	return chain
}

func TestReplay_ConsistentChain(t *testing.T) {
	chain := buildChain(t, 500, -300, 300, -120)

	report := ledger.Replay(chain, 380)

	assert.True(t, report.Consistent())
	assert.Equal(t, int64(380), report.ReplayedTotal)
	assert.Equal(t, 4, report.Transactions)
}

func TestReplay_DetectsBalanceDrift(t *testing.T) {
	chain := buildChain(t, 500, -300)

	report := ledger.Replay(chain, 250)

	require.False(t, report.Consistent())
	assert.Equal(t, "current_balance", report.Mismatches[0].Field)
	assert.Equal(t, int64(200), report.Mismatches[0].Expected)
}

func TestReplay_DetectsTamperedRow(t *testing.T) {
	chain := buildChain(t, 500)
	tampered := ledger.ReconstructTransaction(ledger.NewTransactionID(), shared.MustNewEmpireID(3), 2, fixedTime,
		ledger.TransactionTypeOther, ledger.CategoryOther, -100, 450, 350, "", ledger.Reference{})
	chain = append(chain, tampered)

	report := ledger.Replay(chain, 400)

	require.False(t, report.Consistent())
	assert.Equal(t, "balance_before", report.Mismatches[0].Field)
	assert.Equal(t, int64(2), report.Mismatches[0].Sequence)
}
