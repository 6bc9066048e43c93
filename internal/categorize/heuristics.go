package categorize

import (
	"github.com/cleared-dev/bankmint/internal/category"
	"github.com/cleared-dev/bankmint/internal/model"
)

// Heuristic is a built-in keyword mapping. Keywords match normalized
// descriptions on word boundaries.
type Heuristic struct {
	Keyword    string
	Category   string
	Confidence float64
	Direction  model.Direction // empty matches both directions
}

func in(keyword, cat string, conf float64) Heuristic {
	return Heuristic{Keyword: keyword, Category: cat, Confidence: conf, Direction: model.DirectionInflow}
}

func out(keyword, cat string, conf float64) Heuristic {
	return Heuristic{Keyword: keyword, Category: cat, Confidence: conf, Direction: model.DirectionOutflow}
}

func both(keyword, cat string, conf float64) Heuristic {
	return Heuristic{Keyword: keyword, Category: cat, Confidence: conf}
}

// DefaultHeuristics returns the built-in keyword dictionary.
func DefaultHeuristics() []Heuristic {
	return []Heuristic{
		// Revenue
		in("shopify payout", category.RevenueSales, 0.90),
		in("stripe payout", category.RevenueSales, 0.85),
		in("square deposit", category.RevenueSales, 0.85),
		in("paypal transfer", category.RevenueSales, 0.80),
		in("sales", category.RevenueSales, 0.75),
		in("deposit", category.RevenueSales, 0.75),
		in("client payment", category.RevenueServices, 0.85),
		in("invoice", category.RevenueServices, 0.80),
		in("consulting", category.RevenueServices, 0.80),
		in("retainer", category.RevenueServices, 0.80),

		// Payroll
		out("gusto", category.Payroll, 0.90),
		out("adp", category.Payroll, 0.90),
		out("paychex", category.Payroll, 0.90),
		out("payroll", category.Payroll, 0.90),
		out("salary", category.Payroll, 0.85),
		out("wages", category.Payroll, 0.85),

		// Rent
		out("property management", category.Rent, 0.85),
		out("wework", category.Rent, 0.90),
		out("regus", category.Rent, 0.90),
		out("landlord", category.Rent, 0.85),
		out("lease", category.Rent, 0.85),
		out("rent", category.Rent, 0.85),

		// Debt service
		out("sba loan", category.LoanPayments, 0.90),
		out("loan payment", category.LoanPayments, 0.90),
		out("mortgage", category.LoanPayments, 0.85),
		out("loan", category.LoanPayments, 0.80),

		// Taxes
		out("eftps", category.Taxes, 0.90),
		out("irs", category.Taxes, 0.90),
		out("franchise tax", category.Taxes, 0.90),
		out("sales tax", category.Taxes, 0.85),
		out("tax payment", category.Taxes, 0.85),

		// Insurance
		out("next insurance", category.Insurance, 0.90),
		out("state farm", category.Insurance, 0.90),
		out("hiscox", category.Insurance, 0.90),
		out("geico", category.Insurance, 0.90),
		out("insurance", category.Insurance, 0.85),

		// Utilities
		out("con edison", category.Utilities, 0.90),
		out("pg&e", category.Utilities, 0.90),
		out("comcast", category.Utilities, 0.85),
		out("verizon", category.Utilities, 0.85),
		out("at&t", category.Utilities, 0.85),
		out("electric", category.Utilities, 0.85),
		out("utility", category.Utilities, 0.85),
		out("internet", category.Utilities, 0.80),
		out("water", category.Utilities, 0.75),

		// Software
		out("amazon web services", category.Software, 0.90),
		out("google workspace", category.Software, 0.90),
		out("digitalocean", category.Software, 0.90),
		out("salesforce", category.Software, 0.90),
		out("atlassian", category.Software, 0.90),
		out("dropbox", category.Software, 0.90),
		out("github", category.Software, 0.90),
		out("heroku", category.Software, 0.90),
		out("adobe", category.Software, 0.90),
		out("slack", category.Software, 0.90),
		out("aws", category.Software, 0.90),
		out("microsoft", category.Software, 0.85),
		out("notion", category.Software, 0.85),
		out("zoom", category.Software, 0.85),
		out("software", category.Software, 0.80),
		out("subscription", category.Software, 0.75),

		// Professional services
		out("law firm", category.ProfessionalService, 0.85),
		out("bookkeeping", category.ProfessionalService, 0.85),
		out("attorney", category.ProfessionalService, 0.85),
		out("upwork", category.ProfessionalService, 0.85),
		out("fiverr", category.ProfessionalService, 0.85),
		out("cpa", category.ProfessionalService, 0.85),
		out("accounting", category.ProfessionalService, 0.80),
		out("legal", category.ProfessionalService, 0.80),
		out("consulting", category.ProfessionalService, 0.75),

		// Office
		out("office supplies", category.OfficeExpenses, 0.85),
		out("office depot", category.OfficeExpenses, 0.90),
		out("staples", category.OfficeExpenses, 0.85),
		out("postage", category.OfficeExpenses, 0.85),
		out("usps", category.OfficeExpenses, 0.85),
		out("fedex", category.OfficeExpenses, 0.85),
		out("ups", category.OfficeExpenses, 0.80),

		// Equipment
		out("b&h photo", category.Equipment, 0.85),
		out("apple store", category.Equipment, 0.85),
		out("best buy", category.Equipment, 0.85),
		out("home depot", category.Equipment, 0.80),
		out("dell", category.Equipment, 0.85),
		out("equipment", category.Equipment, 0.80),

		// Banking
		out("overdraft", category.BankingFees, 0.90),
		out("wire fee", category.BankingFees, 0.90),
		out("bank fee", category.BankingFees, 0.90),
		out("service fee", category.BankingFees, 0.85),
		out("monthly fee", category.BankingFees, 0.85),
		out("stripe fee", category.BankingFees, 0.85),
		out("interest charge", category.BankingFees, 0.85),

		// Marketing
		out("facebook ads", category.Marketing, 0.90),
		out("google ads", category.Marketing, 0.90),
		out("mailchimp", category.Marketing, 0.90),
		out("facebk", category.Marketing, 0.85),
		out("advertising", category.Marketing, 0.85),
		out("linkedin", category.Marketing, 0.80),
		out("marketing", category.Marketing, 0.80),
		out("yelp", category.Marketing, 0.80),

		// Travel
		out("american airlines", category.Travel, 0.90),
		out("airbnb", category.Travel, 0.85),
		out("marriott", category.Travel, 0.85),
		out("hilton", category.Travel, 0.85),
		out("uber", category.Travel, 0.85),
		out("lyft", category.Travel, 0.85),
		out("delta air", category.Travel, 0.85),
		out("chevron", category.Travel, 0.80),
		out("exxon", category.Travel, 0.80),
		out("parking", category.Travel, 0.80),
		out("airline", category.Travel, 0.80),
		out("hotel", category.Travel, 0.80),
		out("shell", category.Travel, 0.75),

		// Meals
		out("uber eats", category.Meals, 0.90),
		out("starbucks", category.Meals, 0.85),
		out("doordash", category.Meals, 0.85),
		out("grubhub", category.Meals, 0.85),
		out("chipotle", category.Meals, 0.85),
		out("restaurant", category.Meals, 0.80),
		out("catering", category.Meals, 0.80),
		out("coffee", category.Meals, 0.80),
		out("lunch", category.Meals, 0.75),
		out("dinner", category.Meals, 0.75),
		out("cafe", category.Meals, 0.75),

		// Transfers
		both("online transfer", category.Transfers, 0.80),
		both("transfer", category.Transfers, 0.75),
	}
}
