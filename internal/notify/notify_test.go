package notify_test

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cuotas/internal/duestatus"
	"github.com/MrJamesThe3rd/cuotas/internal/installment"
	"github.com/MrJamesThe3rd/cuotas/internal/money"
	"github.com/MrJamesThe3rd/cuotas/internal/notify"
)

func composer() *notify.Composer {
	return notify.NewComposer(notify.Business{
		Name:        "Mueblería Sur",
		Phone:       "351 400 1000",
		CountryCode: "54",
	}, money.Spanish())
}

func TestInternationalNumber(t *testing.T) {
	type testCase struct {
		name  string
		phone string
		want  string
	}

	tests := []testCase{
		{name: "LocalWithTrunkZero", phone: "011 5555-0000", want: "541155550000"},
		{name: "AlreadyInternational", phone: "+54 9 11 5555 0000", want: "5491155550000"},
		{name: "AlreadyPrefixed", phone: "54 351 444 1234", want: "543514441234"},
		{name: "Empty", phone: "  ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, notify.InternationalNumber("54", tt.phone))
		})
	}
}

func TestMailtoURL(t *testing.T) {
	assert.Empty(t, notify.MailtoURL("", "s", "b"))

	got := notify.MailtoURL("ana@example.com", "Hola Ana", "linea 1\nlinea 2")
	assert.True(t, strings.HasPrefix(got, "mailto:ana@example.com?"))
	assert.NotContains(t, got, "+")
	assert.Contains(t, got, "subject=Hola%20Ana")
}

func TestComposer_Reminder(t *testing.T) {
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	items := []duestatus.Item{
		{
			Installment: &installment.Installment{
				SequenceNumber:  2,
				DueDate:         time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
				ScheduledAmount: decimal.NewFromInt(30000),
				AmountPaid:      decimal.NewFromInt(10000),
				State:           installment.StatePartial,
			},
			TransactionDescription: "Heladera",
			CustomerName:           "Ana Pérez",
			CustomerPhone:          "011 5555-0000",
		},
		{
			Installment: &installment.Installment{
				SequenceNumber:  3,
				DueDate:         time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC),
				ScheduledAmount: decimal.NewFromInt(30000),
				AmountPaid:      decimal.Zero,
				State:           installment.StatePending,
			},
			TransactionKind: "loan",
			CustomerName:    "Ana Pérez",
		},
	}

	msg := composer().Reminder(notify.Contact{
		Name:  "Ana Pérez",
		Phone: "011 5555-0000",
		Email: "ana@example.com",
	}, duestatus.BuildFeed(items, today, -1))

	assert.Contains(t, msg.Text, "Hola Ana,")
	assert.Contains(t, msg.Text, "Cuotas vencidas:")
	assert.Contains(t, msg.Text, "- Cuota 2 de Heladera, vence 10/06/2024: $ 20.000,00")
	assert.Contains(t, msg.Text, "Próximos vencimientos:")
	assert.Contains(t, msg.Text, "préstamo")
	assert.NotContains(t, msg.Text, "Vencen hoy")
	assert.Contains(t, msg.Text, "Saldo pendiente total: $ 50.000,00")

	require.True(t, strings.HasPrefix(msg.WhatsAppURL, "https://wa.me/541155550000?text="))

	u, err := url.Parse(msg.WhatsAppURL)
	require.NoError(t, err)
	assert.Equal(t, msg.Text, u.Query().Get("text"))
	assert.NotEmpty(t, msg.MailtoURL)
}

func TestComposer_ReminderNothingDue(t *testing.T) {
	msg := composer().Reminder(notify.Contact{Name: "Luis"}, duestatus.BuildFeed(nil, time.Now(), -1))

	assert.Contains(t, msg.Text, "No tenés cuotas pendientes")
	assert.Empty(t, msg.WhatsAppURL)
	assert.Empty(t, msg.MailtoURL)
}

func TestComposer_Receipt(t *testing.T) {
	paidOn := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	t.Run("FullWithOverage", func(t *testing.T) {
		res := &installment.PaymentResult{
			Installment: &installment.Installment{
				SequenceNumber:  1,
				ScheduledAmount: decimal.NewFromInt(300),
				AmountPaid:      decimal.NewFromInt(300),
				State:           installment.StatePaid,
				LastPaymentDate: &paidOn,
				PaymentMethod:   installment.MethodCash,
			},
			ReceiptNumber: "REC-1718442000000",
			Applied:       decimal.NewFromInt(300),
			Overage:       decimal.NewFromInt(50),
		}

		msg := composer().Receipt(notify.Contact{Name: "Ana"}, "Heladera", res)

		assert.Contains(t, msg.Text, "Recibo REC-1718442000000")
		assert.Contains(t, msg.Text, "Importe recibido: $ 350,00")
		assert.Contains(t, msg.Text, "Excedente: $ 50,00")
		assert.Contains(t, msg.Text, "Medio de pago: efectivo")
		assert.Contains(t, msg.Text, "cuota cancelada")
		assert.Contains(t, msg.Text, "Tel. 351 400 1000")
		assert.Equal(t, "Recibo REC-1718442000000 - Mueblería Sur", msg.Subject)
	})

	t.Run("Partial", func(t *testing.T) {
		res := &installment.PaymentResult{
			Installment: &installment.Installment{
				SequenceNumber:  2,
				ScheduledAmount: decimal.NewFromInt(300),
				AmountPaid:      decimal.NewFromInt(100),
				State:           installment.StatePartial,
				PaymentMethod:   installment.MethodTransfer,
			},
			ReceiptNumber: "REC-1",
			Applied:       decimal.NewFromInt(100),
			Overage:       decimal.Zero,
		}

		msg := composer().Receipt(notify.Contact{Name: "Ana"}, "", res)

		assert.Contains(t, msg.Text, "pago parcial, resta $ 200,00")
		assert.NotContains(t, msg.Text, "Excedente")
		assert.NotContains(t, msg.Text, "Concepto")
	})
}
