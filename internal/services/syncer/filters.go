package syncer

import (
	"fmt"
	"time"
)

// FilterStrategy is one filter-expression variant for the provider's where
// grammar. The grammar is inconsistent about how account ids must be quoted,
// so the engine tries these in order and the first variant that yields any
// records wins.
type FilterStrategy struct {
	Name  string
	Build func(accountID string, from, to time.Time) string
}

func dateExpr(t time.Time) string {
	return fmt.Sprintf("DateTime(%d, %d, %d)", t.Year(), int(t.Month()), t.Day())
}

var filterStrategies = []FilterStrategy{
	{
		Name: "guid-quoted",
		Build: func(accountID string, from, to time.Time) string {
			return fmt.Sprintf(`BankAccount.AccountID == Guid("%s") AND Date >= %s AND Date <= %s`,
				accountID, dateExpr(from), dateExpr(to))
		},
	},
	{
		Name: "string-quoted",
		Build: func(accountID string, from, to time.Time) string {
			return fmt.Sprintf(`BankAccount.AccountID == "%s" AND Date >= %s AND Date <= %s`,
				accountID, dateExpr(from), dateExpr(to))
		},
	},
	{
		// Date clauses are the other common rejection point; dates are checked
		// client-side anyway, so the last variant drops them entirely.
		Name: "account-only",
		Build: func(accountID string, from, to time.Time) string {
			return fmt.Sprintf(`BankAccount.AccountID == Guid("%s")`, accountID)
		},
	},
}
