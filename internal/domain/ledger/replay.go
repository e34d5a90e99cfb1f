package ledger

import "fmt"

// ReplayMismatch describes the first row where the ledger stops adding up
type ReplayMismatch struct {
	Sequence int64
	Expected int64
	Actual   int64
	Field    string
}

func (m ReplayMismatch) String() string {
	return fmt.Sprintf("#%d %s: expected %d, got %d", m.Sequence, m.Field, m.Expected, m.Actual)
}

// ReplayReport is the outcome of replaying an empire's ledger from zero
type ReplayReport struct {
	Transactions   int
	ReplayedTotal  int64
	CurrentBalance int64
	Mismatches     []ReplayMismatch
}

// Consistent reports whether every row and the live balance agree with the running sum
func (r *ReplayReport) Consistent() bool {
	return len(r.Mismatches) == 0
}

// Replay walks transactions in creation order starting from a zero balance and
// checks each row's balanceBefore/balanceAfter against the running sum, then
// compares the total with the empire's current balance.
func Replay(transactions []*Transaction, currentBalance int64) *ReplayReport {
	report := &ReplayReport{
		Transactions:   len(transactions),
		CurrentBalance: currentBalance,
	}

	var running int64
	for i, tx := range transactions {
		if want := int64(i + 1); tx.Sequence() != want {
			report.Mismatches = append(report.Mismatches, ReplayMismatch{
				Sequence: tx.Sequence(), Expected: want, Actual: tx.Sequence(), Field: "sequence",
			})
		}
		if tx.BalanceBefore() != running {
			report.Mismatches = append(report.Mismatches, ReplayMismatch{
				Sequence: tx.Sequence(), Expected: running, Actual: tx.BalanceBefore(), Field: "balance_before",
			})
		}
		running += tx.Amount()
		if tx.BalanceAfter() != running {
			report.Mismatches = append(report.Mismatches, ReplayMismatch{
				Sequence: tx.Sequence(), Expected: running, Actual: tx.BalanceAfter(), Field: "balance_after",
			})
		}
	}

	report.ReplayedTotal = running
	if running != currentBalance {
		report.Mismatches = append(report.Mismatches, ReplayMismatch{
			Expected: running, Actual: currentBalance, Field: "current_balance",
		})
	}
	return report
}
