// Package notify composes the reminder and receipt texts sent to customers,
// with ready-to-open WhatsApp and e-mail links. Nothing is delivered from
// here.
package notify

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/cuotas/internal/duestatus"
	"github.com/MrJamesThe3rd/cuotas/internal/installment"
	"github.com/MrJamesThe3rd/cuotas/internal/money"
)

type Business struct {
	Name        string
	Phone       string
	CountryCode string
}

type Contact struct {
	Name  string
	Phone string
	Email string
}

type Message struct {
	Subject     string
	Text        string
	WhatsAppURL string
	MailtoURL   string
}

type Composer struct {
	business Business
	money    *money.Formatter
}

func NewComposer(business Business, formatter *money.Formatter) *Composer {
	return &Composer{business: business, money: formatter}
}

// Reminder lists the customer's overdue, due today and upcoming
// installments with the total still owed.
func (c *Composer) Reminder(to Contact, feed *duestatus.Feed) Message {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Hola %s, te escribimos de %s.\n", firstName(to.Name), c.business.Name)

	section := func(title string, notices []duestatus.Notice) {
		if len(notices) == 0 {
			return
		}

		fmt.Fprintf(&sb, "\n%s:\n", title)

		for _, n := range notices {
			fmt.Fprintf(&sb, "- Cuota %d de %s, vence %s: %s\n",
				n.Installment.SequenceNumber,
				itemLabel(n.Item),
				formatDate(n.Installment.DueDate),
				c.money.Format(n.Remaining),
			)
		}
	}

	section("Cuotas vencidas", feed.Overdue)
	section("Vencen hoy", feed.DueToday)
	section("Próximos vencimientos", feed.Upcoming)

	if feed.Len() == 0 {
		sb.WriteString("\nNo tenés cuotas pendientes. ¡Gracias!\n")
	} else {
		fmt.Fprintf(&sb, "\nSaldo pendiente total: %s\n", c.money.Format(feed.Unpaid))
	}

	c.signature(&sb)

	return c.message(to, "Recordatorio de cuotas - "+c.business.Name, sb.String())
}

// Receipt is the payment confirmation for a registered payment.
func (c *Composer) Receipt(to Contact, description string, res *installment.PaymentResult) Message {
	inst := res.Installment

	var sb strings.Builder

	fmt.Fprintf(&sb, "Recibo %s\n", res.ReceiptNumber)
	fmt.Fprintf(&sb, "%s\n\n", c.business.Name)
	fmt.Fprintf(&sb, "Cliente: %s\n", to.Name)

	if description != "" {
		fmt.Fprintf(&sb, "Concepto: %s\n", description)
	}

	fmt.Fprintf(&sb, "Cuota: %d\n", inst.SequenceNumber)

	if inst.LastPaymentDate != nil {
		fmt.Fprintf(&sb, "Fecha de pago: %s\n", formatDate(*inst.LastPaymentDate))
	}

	fmt.Fprintf(&sb, "Importe recibido: %s\n", c.money.Format(res.Applied.Add(res.Overage)))

	if res.Overage.IsPositive() {
		fmt.Fprintf(&sb, "Excedente: %s\n", c.money.Format(res.Overage))
	}

	fmt.Fprintf(&sb, "Medio de pago: %s\n", methodLabel(inst.PaymentMethod))

	if inst.State == installment.StatePaid {
		sb.WriteString("Estado: cuota cancelada\n")
	} else {
		fmt.Fprintf(&sb, "Estado: pago parcial, resta %s\n", c.money.Format(inst.Remaining()))
	}

	c.signature(&sb)

	return c.message(to, "Recibo "+res.ReceiptNumber+" - "+c.business.Name, sb.String())
}

func (c *Composer) signature(sb *strings.Builder) {
	sb.WriteString("\n")
	sb.WriteString(c.business.Name)

	if c.business.Phone != "" {
		sb.WriteString(" - Tel. ")
		sb.WriteString(c.business.Phone)
	}

	sb.WriteString("\n")
}

func (c *Composer) message(to Contact, subject, text string) Message {
	return Message{
		Subject:     subject,
		Text:        text,
		WhatsAppURL: WhatsAppURL(c.business.CountryCode, to.Phone, text),
		MailtoURL:   MailtoURL(to.Email, subject, text),
	}
}

// WhatsAppURL builds a wa.me link, or "" when phone has no digits.
func WhatsAppURL(countryCode, phone, text string) string {
	number := InternationalNumber(countryCode, phone)
	if number == "" {
		return ""
	}

	return "https://wa.me/" + number + "?text=" + escape(text)
}

// MailtoURL builds a mailto link, or "" when email is empty.
func MailtoURL(email, subject, body string) string {
	if email == "" {
		return ""
	}

	return "mailto:" + email + "?subject=" + escape(subject) + "&body=" + escape(body)
}

// escape query-escapes s with spaces as %20; chat and mail clients show a
// literal '+' otherwise.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// InternationalNumber keeps the digits of phone, drops a leading trunk 0
// and prefixes countryCode unless the number already starts with it.
func InternationalNumber(countryCode, phone string) string {
	var digits strings.Builder

	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	number := strings.TrimLeft(digits.String(), "0")
	if number == "" {
		return ""
	}

	if countryCode == "" || strings.HasPrefix(strings.TrimSpace(phone), "+") || strings.HasPrefix(number, countryCode) {
		return number
	}

	return countryCode + number
}

func firstName(name string) string {
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}

	return name
}

func itemLabel(it duestatus.Item) string {
	if it.TransactionDescription != "" {
		return it.TransactionDescription
	}

	if it.TransactionKind == "loan" {
		return "préstamo"
	}

	return "compra"
}

func methodLabel(m installment.Method) string {
	switch m {
	case installment.MethodCash:
		return "efectivo"
	case installment.MethodTransfer:
		return "transferencia"
	case installment.MethodCard:
		return "tarjeta"
	default:
		return "otro"
	}
}

func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}
