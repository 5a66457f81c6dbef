package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cuotas/internal/balance"
	"github.com/MrJamesThe3rd/cuotas/internal/money"
	"github.com/MrJamesThe3rd/cuotas/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=export
type StatementSource interface {
	Statement(ctx context.Context, customerID uuid.UUID) (*balance.Statement, error)
}

// Service writes customer statements ("cuenta corriente") for download.
type Service struct {
	statements StatementSource
	money      *money.Formatter
}

func NewService(statements StatementSource, formatter *money.Formatter) *Service {
	return &Service{statements: statements, money: formatter}
}

// WriteStatement writes the customer's running ledger as CSV to w.
func (s *Service) WriteStatement(ctx context.Context, w io.Writer, customerID uuid.UUID) error {
	st, err := s.statements.Statement(ctx, customerID)
	if err != nil {
		return fmt.Errorf("loading statement: %w", err)
	}

	return WriteCSV(w, st)
}

// Export writes the statement of the named customer into outputDir and
// returns the file path.
func (s *Service) Export(ctx context.Context, customerID uuid.UUID, customerName, outputDir string, at time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(outputDir, Filename(customerName, at))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if err := s.WriteStatement(ctx, f, customerID); err != nil {
		return "", err
	}

	return path, nil
}

var header = []string{"Fecha", "Tipo", "Descripción", "Debe", "Haber", "Saldo", "Recibo"}

// WriteCSV writes a ';' separated ledger with plain two-decimal amounts,
// followed by a totals row.
func WriteCSV(w io.Writer, st *balance.Statement) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, e := range st.Ledger.Entries {
		kind := "Cargo"
		if e.Kind == balance.EntryPayment {
			kind = "Pago"
		}

		record := []string{
			e.Date.Format("2006-01-02"),
			kind,
			e.Description,
			money.Plain(e.Debit),
			money.Plain(e.Credit),
			money.Plain(e.RunningBalance),
			e.ReceiptNumber,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing entry: %w", err)
		}
	}

	totals := []string{
		"", "Total", "",
		money.Plain(st.Ledger.TotalCharges),
		money.Plain(st.Ledger.TotalPayments),
		money.Plain(st.Ledger.CurrentBalance),
		"",
	}
	if err := cw.Write(totals); err != nil {
		return fmt.Errorf("writing totals: %w", err)
	}

	cw.Flush()

	return cw.Error()
}

// Filename is YYYYMMDD_<name>_cuenta.csv with name reduced to safe
// characters.
func Filename(customerName string, at time.Time) string {
	safe := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, strings.TrimSpace(customerName))

	if safe == "" {
		safe = "cliente"
	}

	return fmt.Sprintf("%s_%s_cuenta.csv", at.Format("20060102"), safe)
}

// GenerateEmailBody summarizes each transaction of the statement, one line
// per transaction.
func (s *Service) GenerateEmailBody(st *balance.Statement) string {
	var sb strings.Builder

	for _, sum := range st.Transactions {
		tx := sum.Transaction

		label := "Venta"
		if tx.Kind == transaction.KindLoan {
			label = "Préstamo"
		}

		desc := tx.Description
		if desc == "" {
			desc = "-"
		}

		sb.WriteString(fmt.Sprintf("* %s | %s | %s | %d/%d cuotas pagas | resta %s\n",
			tx.CreatedAt.Format("2006-01-02"),
			label,
			desc,
			sum.PaidCount,
			sum.PaidCount+sum.OpenCount,
			s.money.Format(sum.Unpaid),
		))
	}

	sb.WriteString(fmt.Sprintf("Saldo de cuenta corriente: %s\n", s.money.Format(st.Ledger.CurrentBalance)))

	return sb.String()
}
