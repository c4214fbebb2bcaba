// Package receipt renders a shareable plain-text receipt for the current
// session: every expense with its payer attribution, each person's net
// position, and the payment instructions that settle the group.
package receipt

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rjsplit/splitr/internal/models"
)

const (
	title    = "SPLITR EXPENSE RECEIPT"
	subtitle = "Split expenses with friends easily"
	footer   = "Generated by Splitr"

	divider = "================================================"
	dateFmt = "Jan 2, 2006"
	timeFmt = "3:04 PM"
)

// Data is everything the receipt consumes. It is plain output of the
// ledger store and the calculator — the renderer never recomputes.
type Data struct {
	Users       []string
	Expenses    []models.Expense
	Balances    models.Balance
	Settlements []models.Settlement
	GeneratedAt time.Time
}

// Render writes the receipt to w. Sections, in order: header with
// participant/expense counts, itemized expenses with a total, per-person
// balances, settlement instructions, footer.
func Render(w io.Writer, d Data) error {
	var b strings.Builder

	writeHeader(&b, d)
	writeExpenses(&b, d.Expenses)
	writeBalances(&b, d.Users, d.Balances)
	writeSettlements(&b, d.Settlements)
	writeFooter(&b, d.GeneratedAt)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeHeader(b *strings.Builder, d Data) {
	fmt.Fprintf(b, "%s\n%s\n\n", title, subtitle)
	fmt.Fprintf(b, "%s • %s\n", d.GeneratedAt.Format(dateFmt), d.GeneratedAt.Format(timeFmt))
	fmt.Fprintf(b, "%d participants • %d expenses\n", len(d.Users), len(d.Expenses))
	fmt.Fprintf(b, "%s\n", divider)
}

func writeExpenses(b *strings.Builder, expenses []models.Expense) {
	b.WriteString("\nEXPENSES\n\n")
	if len(expenses) == 0 {
		b.WriteString("No expenses recorded\n")
	}
	for i := range expenses {
		e := &expenses[i]
		fmt.Fprintf(b, "%s  %s\n", e.Description, FormatAmount(e.Amount))
		fmt.Fprintf(b, "  %s • %s • Paid by: %s\n",
			e.Date.Format(dateFmt), e.Category, paymentDetails(e))
	}
	fmt.Fprintf(b, "\nTOTAL  %s\n%s\n", FormatAmount(total(expenses)), divider)
}

func writeBalances(b *strings.Builder, users []string, balances models.Balance) {
	b.WriteString("\nINDIVIDUAL BALANCES\n\n")
	for _, user := range users {
		balance := balances[user]
		label, sign := "(settled)", ""
		switch {
		case balance > models.Epsilon:
			label, sign = "(gets back)", "+"
		case balance < -models.Epsilon:
			label = "(owes)"
		}
		fmt.Fprintf(b, "%s %s  %s%s\n", user, label, sign, FormatAmount(math.Abs(balance)))
	}
	fmt.Fprintf(b, "%s\n", divider)
}

func writeSettlements(b *strings.Builder, settlements []models.Settlement) {
	b.WriteString("\nSETTLEMENT INSTRUCTIONS\n\n")
	if len(settlements) == 0 {
		b.WriteString("All expenses are settled! No payments needed.\n")
	}
	for i, s := range settlements {
		fmt.Fprintf(b, "%d. %s pays %s: %s\n", i+1, s.From, s.To, FormatAmount(s.Amount))
	}
	fmt.Fprintf(b, "%s\n", divider)
}

func writeFooter(b *strings.Builder, generatedAt time.Time) {
	fmt.Fprintf(b, "\n%s\nReceipt ID: %s\n", footer, receiptID(generatedAt))
}

// paymentDetails attributes the payment side of an expense: explicit
// per-payer amounts when present, otherwise the comma-joined payer names.
func paymentDetails(e *models.Expense) string {
	explicit := e.ExplicitPayments()
	if explicit == nil {
		return strings.Join(e.Payers, ", ")
	}

	payers := make([]string, 0, len(explicit))
	for payer := range explicit {
		payers = append(payers, payer)
	}
	sort.Strings(payers)

	parts := make([]string, len(payers))
	for i, payer := range payers {
		parts[i] = fmt.Sprintf("%s: %s", payer, FormatAmount(explicit[payer]))
	}
	return strings.Join(parts, ", ")
}

// FormatAmount renders a rupee amount with comma grouping and two
// decimals, e.g. "₹1,234.50".
func FormatAmount(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}

	s := fmt.Sprintf("%.2f", v)
	whole, frac := s[:len(s)-3], s[len(s)-2:]

	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}

	out := "₹" + grouped.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

func total(expenses []models.Expense) float64 {
	var sum float64
	for i := range expenses {
		sum += expenses[i].Amount
	}
	return sum
}

// receiptID derives a short reference from the generation time, enough to
// tell two exports apart.
func receiptID(t time.Time) string {
	ms := fmt.Sprintf("%d", t.UnixMilli())
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	return ms
}
