// Package demo generates deterministic sample users for local runs and
// end-to-end smoke tests. Each user's ledger is shaped to land in a known
// persona, so a demo run produces predictable output without real data.
package demo

import (
	"fmt"
	"time"

	"github.com/spendsense/spendsense/internal/domain"
)

// User bundles one seeded user's records.
type User struct {
	UserID       string
	Accounts     []domain.Account
	Transactions []domain.Transaction
}

// Users returns the demo population relative to asOf. The same asOf always
// yields the same records.
func Users(asOf time.Time) []User {
	asOf = asOf.UTC().Truncate(24 * time.Hour)
	return []User{
		highUtilizationUser(asOf),
		subscriptionHeavyUser(asOf),
		savingsBuilderUser(asOf),
	}
}

// highUtilizationUser carries a Visa at 68% utilization with interest
// posting and near-minimum payments.
func highUtilizationUser(asOf time.Time) User {
	const userID = "demo_high_util"
	minPayment := 48.0
	lastPayment := 50.0

	accounts := []domain.Account{
		{
			ID:      "demo_high_util_chk",
			UserID:  userID,
			Type:    domain.AccountDepository,
			Subtype: "checking",
			Name:    "Everyday Checking",
			Mask:    "0001",
			Balance: 1800,
		},
		{
			ID:                   "demo_high_util_visa",
			UserID:               userID,
			Type:                 domain.AccountCredit,
			Subtype:              "credit card",
			Name:                 "Visa",
			Mask:                 "4523",
			Balance:              3400,
			Limit:                5000,
			LastPaymentAmount:    &lastPayment,
			MinimumPaymentAmount: &minPayment,
		},
	}

	var txs []domain.Transaction
	// Biweekly payroll into checking.
	for i := 0; i < 6; i++ {
		txs = append(txs, deposit(userID, "demo_high_util_chk",
			fmt.Sprintf("%s_pay_%d", userID, i),
			asOf.AddDate(0, 0, -14*(i+1)), 1900, "Acme Corp Payroll", []string{"Income", "Payroll"}))
	}
	// Card spend and the monthly interest charge.
	for i := 0; i < 3; i++ {
		monthStart := asOf.AddDate(0, 0, -30*(i+1))
		txs = append(txs,
			debit(userID, "demo_high_util_visa",
				fmt.Sprintf("%s_spend_%d", userID, i),
				monthStart.AddDate(0, 0, 3), 220, "Harvest Market", []string{"Food", "Groceries"}, "in store"),
			debit(userID, "demo_high_util_visa",
				fmt.Sprintf("%s_interest_%d", userID, i),
				monthStart.AddDate(0, 0, 20), 62, "Interest Charge", []string{"Fees", "Interest Charge"}, "other"),
			debit(userID, "demo_high_util_chk",
				fmt.Sprintf("%s_rent_%d", userID, i),
				monthStart.AddDate(0, 0, 1), 1400, "Maple Street Apartments", []string{"Housing", "Rent"}, "other"),
		)
	}
	return User{UserID: userID, Accounts: accounts, Transactions: txs}
}

// subscriptionHeavyUser pays five recurring merchants on monthly cadences.
func subscriptionHeavyUser(asOf time.Time) User {
	const userID = "demo_subscriptions"
	accounts := []domain.Account{
		{
			ID:      "demo_subscriptions_chk",
			UserID:  userID,
			Type:    domain.AccountDepository,
			Subtype: "checking",
			Name:    "Everyday Checking",
			Mask:    "0002",
			Balance: 3200,
		},
	}

	merchants := []struct {
		name   string
		amount float64
	}{
		{"Netflix", 15.99},
		{"Spotify", 11.99},
		{"CloudDrive Plus", 9.99},
		{"FitStream", 29.99},
		{"NewsDaily", 7.99},
	}

	var txs []domain.Transaction
	for i := 0; i < 6; i++ {
		txs = append(txs, deposit(userID, "demo_subscriptions_chk",
			fmt.Sprintf("%s_pay_%d", userID, i),
			asOf.AddDate(0, 0, -14*(i+1)), 2400, "Orchard Labs Payroll", []string{"Income", "Payroll"}))
	}
	for m, merchant := range merchants {
		// Monthly charges starting a few days back, so every window holds
		// at least three occurrences per merchant.
		for i := 0; i < 4; i++ {
			txs = append(txs, debit(userID, "demo_subscriptions_chk",
				fmt.Sprintf("%s_sub_%d_%d", userID, m, i),
				asOf.AddDate(0, 0, -30*i-(m+2)), merchant.amount, merchant.name,
				[]string{"Entertainment", "Subscription"}, "online"))
		}
	}
	// Light non-recurring spend keeps the subscription share above 10%.
	for i := 0; i < 4; i++ {
		txs = append(txs, debit(userID, "demo_subscriptions_chk",
			fmt.Sprintf("%s_misc_%d", userID, i),
			asOf.AddDate(0, 0, -20*(i+1)), 85, "Harvest Market", []string{"Food", "Groceries"}, "in store"))
	}
	return User{UserID: userID, Accounts: accounts, Transactions: txs}
}

// savingsBuilderUser moves money into savings every payday and keeps card
// utilization low.
func savingsBuilderUser(asOf time.Time) User {
	const userID = "demo_savings"
	accounts := []domain.Account{
		{
			ID:      "demo_savings_chk",
			UserID:  userID,
			Type:    domain.AccountDepository,
			Subtype: "checking",
			Name:    "Everyday Checking",
			Mask:    "0003",
			Balance: 2600,
		},
		{
			ID:      "demo_savings_sav",
			UserID:  userID,
			Type:    domain.AccountDepository,
			Subtype: "savings",
			Name:    "Rainy Day Savings",
			Mask:    "0004",
			Balance: 12400,
		},
		{
			ID:      "demo_savings_card",
			UserID:  userID,
			Type:    domain.AccountCredit,
			Subtype: "credit card",
			Name:    "Rewards Card",
			Mask:    "7710",
			Balance: 450,
			Limit:   8000,
		},
	}

	var txs []domain.Transaction
	for i := 0; i < 6; i++ {
		payday := asOf.AddDate(0, 0, -14*(i+1))
		txs = append(txs,
			deposit(userID, "demo_savings_chk",
				fmt.Sprintf("%s_pay_%d", userID, i),
				payday, 2600, "Birchwood Health Payroll", []string{"Income", "Payroll"}),
			deposit(userID, "demo_savings_sav",
				fmt.Sprintf("%s_transfer_%d", userID, i),
				payday.AddDate(0, 0, 1), 400, "Scheduled Transfer", []string{"Transfer", "Savings"}),
		)
	}
	for i := 0; i < 3; i++ {
		monthStart := asOf.AddDate(0, 0, -30*(i+1))
		txs = append(txs,
			debit(userID, "demo_savings_chk",
				fmt.Sprintf("%s_rent_%d", userID, i),
				monthStart.AddDate(0, 0, 1), 1300, "Maple Street Apartments", []string{"Housing", "Rent"}, "other"),
			debit(userID, "demo_savings_chk",
				fmt.Sprintf("%s_groceries_%d", userID, i),
				monthStart.AddDate(0, 0, 9), 320, "Harvest Market", []string{"Food", "Groceries"}, "in store"),
		)
	}
	return User{UserID: userID, Accounts: accounts, Transactions: txs}
}

func deposit(userID, accountID, txID string, date time.Time, amount float64, merchant string, category []string) domain.Transaction {
	return domain.Transaction{
		ID:             txID,
		UserID:         userID,
		AccountID:      accountID,
		Date:           date,
		Amount:         amount,
		Currency:       "USD",
		MerchantName:   merchant,
		Category:       category,
		PaymentChannel: "other",
	}
}

func debit(userID, accountID, txID string, date time.Time, amount float64, merchant string, category []string, channel string) domain.Transaction {
	return domain.Transaction{
		ID:             txID,
		UserID:         userID,
		AccountID:      accountID,
		Date:           date,
		Amount:         -amount,
		Currency:       "USD",
		MerchantName:   merchant,
		Category:       category,
		PaymentChannel: channel,
	}
}
