package signals

import (
	"time"

	"github.com/spendsense/spendsense/internal/domain"
)

// ComputeAll runs every detector over the user's transactions and accounts
// for one window and assembles the results into a SignalSet keyed by
// (user, window).
func ComputeAll(userID string, txs []domain.Transaction, accounts []domain.Account, window domain.TimeWindow, asOf time.Time) domain.SignalSet {
	return domain.SignalSet{
		UserID:        userID,
		Window:        window,
		Subscriptions: DetectSubscriptions(txs, window, asOf),
		Credit:        DetectCreditUtilization(txs, accounts, window, asOf),
		Savings:       DetectSavingsBehavior(txs, accounts, window, asOf),
		Income:        DetectIncomeStability(txs, accounts, window, asOf),
		ComputedAt:    asOf,
	}
}
