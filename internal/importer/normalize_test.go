package importer

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("../../testdata/" + name)
	require.NoError(t, err)
	return data
}

func TestNormalize_Chase(t *testing.T) {
	res, err := Normalize(readTestdata(t, "chase_checking.csv"), Options{})
	require.NoError(t, err)

	assert.Equal(t, EncodingUTF8, res.Encoding)
	assert.Equal(t, ',', res.Delimiter)
	assert.Equal(t, DateUS, res.DateFamily)
	assert.Equal(t, StylePoint, res.Style)
	assert.Equal(t, 6, res.TotalRows)
	assert.Zero(t, res.ErrorCount())
	require.Len(t, res.Candidates, 6)

	first := res.Candidates[0]
	assert.Equal(t, 2, first.Row)
	assert.Equal(t, date(2025, 1, 3), first.Date)
	assert.Equal(t, "GITHUB *PRO SUBSCRIPTION", first.Description)
	assert.Equal(t, "github *pro subscription", first.NormalizedDescription)
	assert.Equal(t, "-4.00", first.Amount.StringFixed(2))
	assert.Equal(t, "USD", first.Currency)
	require.True(t, first.Balance.Valid)
	assert.Equal(t, "12496.00", first.Balance.Decimal.StringFixed(2))

	acme := res.Candidates[3]
	assert.True(t, acme.Amount.IsPositive())
	assert.Equal(t, "3500.00", acme.Amount.StringFixed(2))
	assert.Equal(t, date(2025, 1, 22), res.Candidates[5].Date)
}

func TestNormalize_European(t *testing.T) {
	res, err := Normalize(readTestdata(t, "european.csv"), Options{Currency: "EUR"})
	require.NoError(t, err)

	assert.Equal(t, ';', res.Delimiter)
	assert.Equal(t, DateEU, res.DateFamily)
	assert.Equal(t, StyleComma, res.Style)
	require.Len(t, res.Candidates, 3)

	assert.Equal(t, date(2024, 4, 3), res.Candidates[0].Date)
	assert.Equal(t, "-1250.00", res.Candidates[0].Amount.StringFixed(2))
	assert.Equal(t, "2400.50", res.Candidates[1].Amount.StringFixed(2))
	assert.Equal(t, "-49.99", res.Candidates[2].Amount.StringFixed(2))
	assert.Equal(t, "EUR", res.Candidates[0].Currency)
	assert.Equal(t, "miete büro april", res.Candidates[0].NormalizedDescription)
}

func TestNormalize_DebitCredit(t *testing.T) {
	res, err := Normalize(readTestdata(t, "debit_credit.csv"), Options{})
	require.NoError(t, err)

	assert.Equal(t, 5, res.TotalRows)
	require.Len(t, res.Candidates, 3)
	assert.Equal(t, "-1234.56", res.Candidates[0].Amount.StringFixed(2))
	assert.Equal(t, "5000.00", res.Candidates[1].Amount.StringFixed(2))
	assert.Equal(t, "-15.00", res.Candidates[2].Amount.StringFixed(2))
	assert.Equal(t, "Client Payment - Initech", res.Candidates[1].Description)

	require.Equal(t, 2, res.ErrorCount())
	assert.Equal(t, 5, res.Errors[0].Row)
	assert.Contains(t, res.Errors[0].Reason, "no debit or credit")
	assert.Equal(t, 6, res.Errors[1].Row)
	assert.Equal(t, "date", res.Errors[1].Field)
	assert.Equal(t, "2024-02-30", res.Errors[1].Value)
}

func TestNormalize_MissingDescription(t *testing.T) {
	res, err := Normalize(readTestdata(t, "missing_description.csv"), Options{})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrMissingRequiredColumns)
	assert.ErrorIs(t, err, ErrMalformedFile)

	var fe *FileError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, KindMissingColumns, fe.Kind)
	assert.Equal(t, []string{"description"}, fe.Missing)
	assert.NotEmpty(t, fe.Suggestion)
}

func TestNormalize_MissingAmount(t *testing.T) {
	_, err := Normalize([]byte("date,description,debit\n2024-01-01,x,5\n"), Options{})
	require.Error(t, err)

	var fe *FileError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, []string{"amount (or debit and credit)"}, fe.Missing)
}

func TestNormalize_FileErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		opts Options
		kind FileErrorKind
	}{
		{"empty", nil, Options{}, KindEmpty},
		{"whitespace only", []byte("\n\n  \n"), Options{}, KindEmpty},
		{"too large", []byte("date,description,amount\n"), Options{MaxBytes: 10}, KindTooLarge},
		{"too many rows", []byte("date,description,amount\n2024-01-01,a,1\n2024-01-02,b,2\n"), Options{MaxRows: 1}, KindTooLarge},
		{"binary", []byte("date,description,amount\n\x00\x01\x02,x,1\n"), Options{}, KindEncoding},
		{"no delimiter", []byte("just one column\nvalue\n"), Options{}, KindDelimiter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.data, tt.opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedFile)
			var fe *FileError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.kind, fe.Kind)
			assert.False(t, errors.Is(err, ErrMissingRequiredColumns))
		})
	}
}

func TestNormalize_Latin1Fallback(t *testing.T) {
	// "Café" with é as the single Latin-1 byte 0xE9.
	data := []byte("date,description,amount\n2024-01-02,Caf\xe9 Central,-3.50\n")
	res, err := Normalize(data, Options{})
	require.NoError(t, err)
	assert.Equal(t, EncodingLatin1, res.Encoding)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "Café Central", res.Candidates[0].Description)
}

func TestNormalize_UTF8BOMAndTabs(t *testing.T) {
	data := []byte("\xef\xbb\xbfDate\tMemo\tAmount\n2024-03-01\tStripe Payout\t1200.00\n")
	res, err := Normalize(data, Options{})
	require.NoError(t, err)
	assert.Equal(t, '\t', res.Delimiter)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "Stripe Payout", res.Candidates[0].Description)
}

func TestNormalize_UTF16(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte("Date,Description,Amount\n2024-03-01,Rent,-2000.00\n"))
	require.NoError(t, err)

	res, err := Normalize(data, Options{})
	require.NoError(t, err)
	assert.Equal(t, EncodingUTF16, res.Encoding)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "-2000.00", res.Candidates[0].Amount.StringFixed(2))
}

func TestNormalize_RowErrorsDoNotAbort(t *testing.T) {
	data := strings.Join([]string{
		"Date,Description,Amount",
		"2024-01-01,Good Row,-10.00",
		"not a date,Bad Date,-10.00",
		"2024-01-03,Bad Amount,ten dollars",
		"2024-01-04,,-10.00",
		"2024-01-05,Zero Row,0.00",
		",,",
		"2024-01-06,Another Good Row,25.00",
	}, "\n")

	res, err := Normalize([]byte(data), Options{})
	require.NoError(t, err)
	assert.Len(t, res.Candidates, 2)
	assert.Equal(t, 4, res.ErrorCount())
	assert.Equal(t, 6, res.TotalRows)

	reasons := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		reasons = append(reasons, e.Error())
	}
	assert.Contains(t, reasons[0], "row 3")
	assert.Contains(t, reasons[1], "not a number")
	assert.Contains(t, reasons[2], "empty description")
	assert.Contains(t, reasons[3], "zero amount")
}

func TestNormalize_DotThousandsWithoutDecimals(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"dot thousands", "date,description,amount\n2024-01-01,Rent,-1.500\n2024-01-02,Client,2.000\n", []string{"-1500.00", "2000.00"}},
		{"dot decimals", "date,description,amount\n2024-01-01,Coffee,-4.50\n2024-01-02,Refund,1.25\n", []string{"-4.50", "1.25"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Normalize([]byte(tt.data), Options{})
			require.NoError(t, err)
			require.Len(t, res.Candidates, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, want, res.Candidates[i].Amount.StringFixed(2))
			}
		})
	}
}

func TestNormalize_DayFirstMajority(t *testing.T) {
	data := "Date,Description,Amount\n03/04/2024,Ambiguous,-1.00\n13/04/2024,Clear,-2.00\n"
	res, err := Normalize([]byte(data), Options{})
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, DateEU, res.DateFamily)
	assert.Equal(t, date(2024, 4, 3), res.Candidates[0].Date)
}

func TestNormalize_Deterministic(t *testing.T) {
	data := readTestdata(t, "debit_credit.csv")
	a, err := Normalize(data, Options{})
	require.NoError(t, err)
	b, err := Normalize(data, Options{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMapColumns(t *testing.T) {
	cols, err := mapColumns([]string{"Booking Date", "Value Date", "Narrative", "Paid Out", "Paid In", "Balance"})
	require.NoError(t, err)
	assert.Equal(t, 0, cols[FieldDate])
	assert.Equal(t, 2, cols[FieldDescription])
	assert.Equal(t, 3, cols[FieldDebit])
	assert.Equal(t, 4, cols[FieldCredit])
	assert.Equal(t, 5, cols[FieldBalance])
	assert.False(t, cols.has(FieldAmount), "value_date must not map to amount")
	assert.True(t, cols.usesDebitCredit())
}

func TestNormalize_AmountFallsBackToDebitCredit(t *testing.T) {
	data := strings.Join([]string{
		"Date,Description,Amount,Debit,Credit",
		"2024-01-01,Card Fee,-3.00,,",
		"2024-01-02,Wire Out,,250.00,",
		"2024-01-03,Deposit,,,90.00",
	}, "\n")
	res, err := Normalize([]byte(data), Options{})
	require.NoError(t, err)
	require.Len(t, res.Candidates, 3)
	assert.Equal(t, "-3.00", res.Candidates[0].Amount.StringFixed(2))
	assert.Equal(t, "-250.00", res.Candidates[1].Amount.StringFixed(2))
	assert.Equal(t, "90.00", res.Candidates[2].Amount.StringFixed(2))

	cols, err := mapColumns([]string{"Date", "Description", "Amount", "Debit", "Credit"})
	require.NoError(t, err)
	assert.True(t, cols.usesDebitCredit())

	cols, err = mapColumns([]string{"Date", "Description", "Amount"})
	require.NoError(t, err)
	assert.False(t, cols.usesDebitCredit())
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "posting_date", normalizeHeader(" Posting Date "))
	assert.Equal(t, "check_or_slip", normalizeHeader("Check or Slip #"))
	assert.Equal(t, "money_out", normalizeHeader("Money-Out"))
}
