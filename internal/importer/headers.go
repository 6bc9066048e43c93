package importer

import (
	"strings"
	"unicode"
)

// Field is a logical column a header can map to.
type Field string

const (
	FieldDate        Field = "date"
	FieldDescription Field = "description"
	FieldAmount      Field = "amount"
	FieldDebit       Field = "debit"
	FieldCredit      Field = "credit"
	FieldBalance     Field = "balance"
	FieldCurrency    Field = "currency"
)

// fieldOrder fixes resolution order so mapping is deterministic.
var fieldOrder = []Field{FieldDate, FieldDescription, FieldDebit, FieldCredit, FieldAmount, FieldBalance, FieldCurrency}

var aliases = map[Field][]string{
	FieldDate:        {"date", "transaction_date", "posting_date", "post_date", "effective_date", "trans_date", "booking_date", "value_date"},
	FieldDescription: {"description", "memo", "payee", "details", "transaction_details", "narrative", "name"},
	FieldAmount:      {"amount", "transaction_amount", "net_amount", "value"},
	FieldDebit:       {"debit", "debit_amount", "withdrawal", "withdrawals", "outgoing", "money_out", "paid_out"},
	FieldCredit:      {"credit", "credit_amount", "deposit", "deposits", "incoming", "money_in", "paid_in"},
	FieldBalance:     {"balance", "running_balance", "account_balance"},
	FieldCurrency:    {"currency", "ccy"},
}

// columnMap maps logical fields to column indexes.
type columnMap map[Field]int

func (m columnMap) has(f Field) bool {
	_, ok := m[f]
	return ok
}

// usesDebitCredit reports whether the file has both debit and credit
// columns. Rows with an empty amount cell fall back to them.
func (m columnMap) usesDebitCredit() bool {
	return m.has(FieldDebit) && m.has(FieldCredit)
}

// normalizeHeader turns "Posting Date " into "posting_date".
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	words := strings.FieldsFunc(h, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, "_")
}

// mapColumns resolves header cells to fields: exact alias matches first,
// then substring matches for fields still unresolved. Each column is used once.
func mapColumns(header []string) (columnMap, error) {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = normalizeHeader(h)
	}

	m := make(columnMap)
	used := make(map[int]bool)

	for _, f := range fieldOrder {
		for _, alias := range aliases[f] {
			if i := indexOf(norm, alias, used); i >= 0 {
				m[f] = i
				used[i] = true
				break
			}
		}
	}

	for _, f := range fieldOrder {
		if m.has(f) {
			continue
		}
	search:
		for _, alias := range aliases[f] {
			for i, h := range norm {
				if !used[i] && h != "" && strings.Contains(h, alias) && !conflicts(f, h) {
					m[f] = i
					used[i] = true
					break search
				}
			}
		}
	}

	var missing []string
	if !m.has(FieldDate) {
		missing = append(missing, string(FieldDate))
	}
	if !m.has(FieldDescription) {
		missing = append(missing, string(FieldDescription))
	}
	if !m.has(FieldAmount) && !m.usesDebitCredit() {
		missing = append(missing, "amount (or debit and credit)")
	}
	if len(missing) > 0 {
		return nil, missingColumns(missing, header)
	}
	return m, nil
}

// conflicts rejects substring matches that belong to another field, such as
// "value_date" for amount or "opening_balance" for credit.
func conflicts(f Field, header string) bool {
	if f != FieldDate && strings.Contains(header, "date") {
		return true
	}
	if f != FieldBalance && strings.Contains(header, "balance") {
		return true
	}
	return false
}

func indexOf(norm []string, alias string, used map[int]bool) int {
	for i, h := range norm {
		if !used[i] && h == alias {
			return i
		}
	}
	return -1
}
