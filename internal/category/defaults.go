package category

// Category names used by the built-in heuristics.
const (
	RevenueSales        = "Revenue - Sales"
	RevenueServices     = "Revenue - Services"
	Payroll             = "Payroll & Benefits"
	Rent                = "Rent & Facilities"
	LoanPayments        = "Loan Payments"
	Taxes               = "Taxes"
	Insurance           = "Insurance"
	Utilities           = "Utilities"
	Software            = "Software & Technology"
	ProfessionalService = "Professional Services"
	OfficeExpenses      = "Office Expenses"
	Equipment           = "Equipment & Supplies"
	BankingFees         = "Banking & Fees"
	Marketing           = "Marketing & Advertising"
	Travel              = "Travel & Transportation"
	Meals               = "Meals & Entertainment"
	Transfers           = "Transfers"
)

// Defaults returns the default small-business category catalog.
func Defaults() []Category {
	return []Category{
		{Name: RevenueSales, Class: ClassRevenue, Description: "Product and sales income"},
		{Name: RevenueServices, Class: ClassRevenue, Description: "Consulting and service income"},
		{Name: Payroll, Class: ClassPayroll, Description: "Salaries, wages and benefits"},
		{Name: Rent, Class: ClassRent, Description: "Rent, leases and facilities"},
		{Name: LoanPayments, Class: ClassDebt, Description: "Loan and credit card payments"},
		{Name: Taxes, Class: ClassTax, Description: "Federal, state and payroll taxes"},
		{Name: Insurance, Class: ClassInsurance, Description: "Business insurance premiums"},
		{Name: Utilities, Class: ClassUtilities, Description: "Power, water, phone and internet"},
		{Name: Software, Class: ClassSoftware, Description: "SaaS subscriptions and hosting"},
		{Name: ProfessionalService, Class: ClassProfessional, Description: "Legal, accounting, consulting"},
		{Name: OfficeExpenses, Class: ClassOperating, Description: "Office supplies and postage"},
		{Name: Equipment, Class: ClassOperating, Description: "Equipment and hardware"},
		{Name: BankingFees, Class: ClassOperating, Description: "Bank and processing fees"},
		{Name: Marketing, Class: ClassDiscretionary, Description: "Advertising and promotion"},
		{Name: Travel, Class: ClassDiscretionary, Description: "Flights, hotels, fuel and rides"},
		{Name: Meals, Class: ClassDiscretionary, Description: "Meals, coffee and entertainment"},
		{Name: Transfers, Class: ClassOther, Description: "Transfers between accounts"},
	}
}
