package catalog

import "github.com/spendsense/spendsense/internal/domain"

func ptr(v float64) *float64 { return &v }

// Default returns the built-in catalog used when no catalog URI is
// configured. Item order matters: selection ties resolve to the earlier
// entry.
func Default() *Catalog {
	return &Catalog{
		Version: "builtin-1",
		Content: []ContentItem{
			{
				ID:               "edu_credit_utilization",
				Title:            "Understanding Credit Utilization",
				Category:         "credit",
				EligiblePersonas: []domain.Persona{domain.PersonaHighUtilization},
				TriggerSignals:   []string{TriggerCreditUtilizationHigh},
				RationaleTemplate: "Your {card_mask} is using {utilization_pct} of its {limit} credit line, " +
					"with a balance of {balance}. Keeping utilization below 30% is one of the larger factors " +
					"in most credit scoring models.",
			},
			{
				ID:               "edu_minimum_payments",
				Title:            "How Minimum Payments Affect Your Balance",
				Category:         "credit",
				EligiblePersonas: []domain.Persona{domain.PersonaHighUtilization},
				TriggerSignals:   []string{TriggerMinimumPaymentOnly},
				RationaleTemplate: "Your recent payments on {card_mask} have been close to the minimum while " +
					"the balance stands at {balance}. Paying above the minimum shortens the payoff timeline.",
			},
			{
				ID:               "edu_interest_costs",
				Title:            "What Interest Charges Cost Over Time",
				Category:         "credit",
				EligiblePersonas: []domain.Persona{domain.PersonaHighUtilization},
				TriggerSignals:   []string{TriggerInterestCharged},
				RationaleTemplate: "{interest_charged} in interest and fees posted to your credit accounts this " +
					"period, with overall utilization at {utilization_pct}.",
			},
			{
				ID:               "edu_paydown_strategies",
				Title:            "Two Common Paydown Strategies",
				Category:         "credit",
				EligiblePersonas: []domain.Persona{domain.PersonaHighUtilization},
				TriggerSignals:   []string{TriggerCreditUtilizationHigh, TriggerMinimumPaymentOnly},
				RationaleTemplate: "With {balance} outstanding on {card_mask} at {utilization_pct} utilization, " +
					"comparing avalanche and snowball paydown approaches can help you pick a plan.",
			},
			{
				ID:               "edu_subscription_audit",
				Title:            "Taking Stock of Your Subscriptions",
				Category:         "spending",
				EligiblePersonas: []domain.Persona{domain.PersonaSubscriptionHeavy},
				TriggerSignals:   []string{TriggerSubscriptionCountHigh},
				RationaleTemplate: "You have {recurring_count} recurring subscriptions totaling {monthly_recurring} " +
					"per month. A periodic review helps confirm each one still earns its place.",
			},
			{
				ID:               "edu_recurring_spend_share",
				Title:            "How Recurring Charges Add Up",
				Category:         "spending",
				EligiblePersonas: []domain.Persona{domain.PersonaSubscriptionHeavy},
				TriggerSignals:   []string{TriggerMonthlyRecurringHigh},
				RationaleTemplate: "Recurring charges of {monthly_recurring} per month represent " +
					"{subscription_share_pct} of your spending in this period.",
			},
			{
				ID:               "edu_trial_tracking",
				Title:            "Keeping Track of Free Trials",
				Category:         "spending",
				EligiblePersonas: []domain.Persona{domain.PersonaSubscriptionHeavy},
				TriggerSignals:   []string{TriggerSubscriptionCountHigh},
				RationaleTemplate: "With {recurring_count} active recurring merchants, a calendar reminder before " +
					"each renewal date keeps trial conversions visible.",
			},
			{
				ID:               "edu_irregular_income_budget",
				Title:            "Budgeting on an Irregular Income",
				Category:         "income",
				EligiblePersonas: []domain.Persona{domain.PersonaVariableIncome},
				TriggerSignals:   []string{TriggerIrregularFrequency, TriggerMedianPayGapHigh},
				RationaleTemplate: "Your deposits arrive about {median_pay_gap} days apart. Budgeting from your " +
					"lowest recent month rather than the average smooths the gaps.",
			},
			{
				ID:               "edu_cash_flow_basics",
				Title:            "Building a Cash-Flow Cushion",
				Category:         "income",
				EligiblePersonas: []domain.Persona{domain.PersonaVariableIncome},
				TriggerSignals:   []string{TriggerCashFlowBufferLow},
				RationaleTemplate: "Your checking balance covers about {cash_flow_buffer} months of typical " +
					"expenses. Many planners suggest working toward one full month as a first milestone.",
			},
			{
				ID:               "edu_income_smoothing",
				Title:            "Smoothing Income Between Paydays",
				Category:         "income",
				EligiblePersonas: []domain.Persona{domain.PersonaVariableIncome},
				TriggerSignals:   []string{TriggerMedianPayGapHigh},
				RationaleTemplate: "With roughly {median_pay_gap} days between deposits, splitting each deposit " +
					"into weekly allotments can steady day-to-day spending.",
			},
			{
				ID:               "edu_emergency_fund",
				Title:            "Sizing an Emergency Fund",
				Category:         "savings",
				EligiblePersonas: []domain.Persona{domain.PersonaSavingsBuilder},
				TriggerSignals:   []string{TriggerEmergencyFundAdequate, TriggerSavingsBalancePositive},
				RationaleTemplate: "Your savings of {total_savings} cover about {coverage_months} months of " +
					"expenses. Three to six months is a common planning range.",
			},
			{
				ID:               "edu_savings_momentum",
				Title:            "Keeping Savings Momentum",
				Category:         "savings",
				EligiblePersonas: []domain.Persona{domain.PersonaSavingsBuilder},
				TriggerSignals:   []string{TriggerSavingsGrowthRatePositive},
				RationaleTemplate: "Your savings grew by {net_inflow} this period. Automatic transfers on payday " +
					"are one way to keep that pace without deciding each month.",
			},
			{
				ID:               "edu_yield_basics",
				Title:            "Where Savings Rates Come From",
				Category:         "savings",
				EligiblePersonas: []domain.Persona{domain.PersonaSavingsBuilder},
				TriggerSignals:   []string{TriggerSavingsBalancePositive},
				RationaleTemplate: "With {total_savings} in savings, the difference between account rates " +
					"compounds over time; comparing APYs once a year is usually enough.",
			},
			{
				ID:               "edu_fifty_thirty_twenty",
				Title:            "The 50/30/20 Guideline",
				Category:         "general",
				EligiblePersonas: []domain.Persona{domain.PersonaGeneralWellness},
				RationaleTemplate: "Your average monthly spending was {avg_monthly_expenses} in this period. The " +
					"50/30/20 guideline splits income into needs, wants, and savings as a starting framework.",
			},
			{
				ID:               "edu_credit_score_factors",
				Title:            "What Goes Into a Credit Score",
				Category:         "general",
				EligiblePersonas: []domain.Persona{domain.PersonaGeneralWellness},
				RationaleTemplate: "Your overall credit utilization is {utilization_pct}. Payment history and " +
					"utilization together drive most of a typical credit score.",
			},
			{
				ID:               "edu_spending_awareness",
				Title:            "Reading Your Monthly Cash Flow",
				Category:         "general",
				EligiblePersonas: []domain.Persona{domain.PersonaGeneralWellness},
				RationaleTemplate: "Your average monthly income was {avg_monthly_income} against expenses of " +
					"{avg_monthly_expenses}. Tracking the gap month over month shows your real savings rate.",
			},
		},
		Offers: []Offer{
			{
				ID:       "offer_balance_transfer",
				Code:     "BALANCE_XFER_PLATINUM",
				Title:    "Platinum Balance Transfer Card",
				Partner:  "Meridian Card Services",
				Category: "balance_transfer",
				Tier:     "PREMIUM",
				Summary:  "0% intro APR on balance transfers for 18 months with no annual fee.",
				RationaleTemplate: "You paid {interest_charged} in interest and fees this period at " +
					"{utilization_pct} utilization. An 18 month 0% transfer window would pause that cost " +
					"while you pay the balance down.",
				Eligibility: EligibilityRule{
					MaxUtilization:          ptr(0.85),
					AllowMinimumPaymentOnly: true,
					MinInterestCharged:      50,
				},
				IntroPurchaseAPR:        "0% for 12 months",
				PurchaseAPR:             "16.99% - 24.99% variable",
				IntroBalanceTransferAPR: "0% for 18 months",
				BalanceTransferFee:      "3% of transfer amount",
				AnnualFee:               "$0",
			},
			{
				ID:       "offer_secured_builder",
				Code:     "SECURED_BUILDER",
				Title:    "Credit Builder Secured Card",
				Partner:  "Meridian Card Services",
				Category: "secured_card",
				Tier:     "STARTER",
				Summary:  "Security deposit becomes your credit limit; graduate after 12 months.",
				RationaleTemplate: "With utilization at {utilization_pct}, a secured card reports on-time " +
					"payments while the deposit keeps the limit within your control.",
				Eligibility: EligibilityRule{
					AllowOverdue:            true,
					AllowMinimumPaymentOnly: true,
					MinUtilization:          ptr(0.50),
				},
				PurchaseAPR: "24.99% variable",
				AnnualFee:   "$0",
			},
			{
				ID:       "offer_auto_savings",
				Code:     "AUTO_SAVINGS_REWARDS",
				Title:    "Automatic Savings Rewards Card",
				Partner:  "Harborview Bank",
				Category: "rewards_card",
				Tier:     "STANDARD",
				Summary:  "Saves 1% of every purchase and rounds up to the nearest dollar into savings.",
				RationaleTemplate: "Your emergency fund covers {coverage_months} months of expenses. Round-up " +
					"saving of every purchase adds to it without a separate transfer.",
				Eligibility: EligibilityRule{
					MaxUtilization:         ptr(0.85),
					MaxEmergencyFundMonths: ptr(3),
				},
				IntroPurchaseAPR: "0% for 6 months",
				PurchaseAPR:      "18.99% - 26.99% variable",
				AnnualFee:        "$0",
			},
			{
				ID:       "offer_dining_gold",
				Code:     "DINING_REWARDS_GOLD",
				Title:    "Gold Dining Rewards Card",
				Partner:  "Meridian Card Services",
				Category: "rewards_card",
				Tier:     "PREMIUM",
				Summary:  "4X points on dining, 2X on groceries, with a $50 annual dining credit.",
				RationaleTemplate: "With utilization at {utilization_pct} across your cards, you meet the " +
					"profile for premium dining rewards.",
				Eligibility: EligibilityRule{
					MaxUtilization: ptr(0.30),
				},
				MinIncome:        4000,
				IntroPurchaseAPR: "0% for 12 months",
				PurchaseAPR:      "15.99% - 23.99% variable",
				AnnualFee:        "$95",
			},
			{
				ID:       "offer_travel_elite",
				Code:     "TRAVEL_ELITE_PLATINUM",
				Title:    "Elite Travel Platinum Card",
				Partner:  "Meridian Card Services",
				Category: "rewards_card",
				Tier:     "PREMIUM",
				Summary:  "5X points on flights and hotels, no foreign transaction fees.",
				RationaleTemplate: "Your overall utilization of {utilization_pct} reflects the kind of credit " +
					"profile this travel card is built for.",
				Eligibility: EligibilityRule{
					MaxUtilization: ptr(0.30),
				},
				MinIncome:        4000,
				IntroPurchaseAPR: "0% for 15 months",
				PurchaseAPR:      "16.99% - 24.99% variable",
				AnnualFee:        "$95",
			},
			{
				ID:       "offer_hys_bonus",
				Code:     "SAVINGS_BONUS_500",
				Title:    "High-Yield Savings Account Bonus",
				Partner:  "Harborview Bank",
				Category: "deposit_account",
				Tier:     "BANKING",
				Summary:  "Earn a $500 bonus when you deposit $5,000 within 90 days at 4.50% APY.",
				RationaleTemplate: "You set aside an average of {avg_monthly_savings} per month. At that pace " +
					"the $5,000 deposit requirement for the $500 bonus is within reach.",
				Eligibility: EligibilityRule{
					MinAvgMonthlySavings: 1666.67,
				},
				ExcludedIfOwns:   []string{"money market", "hsa"},
				PurchaseAPR:      "4.50% APY",
				AnnualFee:        "$0",
				BonusAmount:      "$500",
				BonusRequirement: "Deposit $5,000 within 90 days",
			},
		},
	}
}
