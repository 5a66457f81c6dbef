package installment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/cuotas/internal/apperr"
	"github.com/MrJamesThe3rd/cuotas/internal/installment"
)

var fixedNow = time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestService_RegisterPayment(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name      string
		params    installment.PaymentParams
		setupMock func(m *installment.MockRepository)
		wantErr   error
		verify    func(t *testing.T, res *installment.PaymentResult)
	}

	stored := func() *installment.Installment {
		return &installment.Installment{
			ID:              id,
			SequenceNumber:  2,
			ScheduledAmount: dec("900"),
			AmountPaid:      decimal.Zero,
			State:           installment.StatePending,
			Version:         3,
		}
	}

	tests := []testCase{
		{
			name: "FullPayment",
			params: installment.PaymentParams{
				Amount: dec("900"),
				Date:   fixedNow,
				Method: installment.MethodCash,
			},
			setupMock: func(m *installment.MockRepository) {
				m.EXPECT().GetInstallment(gomock.Any(), id).Return(stored(), nil)
				m.EXPECT().
					UpdateInstallment(gomock.Any(), gomock.Any(), 3).
					DoAndReturn(func(_ context.Context, inst *installment.Installment, _ int) error {
						assert.Equal(t, installment.StatePaid, inst.State)
						inst.Version = 4
						return nil
					})
			},
			verify: func(t *testing.T, res *installment.PaymentResult) {
				assert.Equal(t, installment.StatePaid, res.Installment.State)
				assert.Equal(t, 4, res.Installment.Version)
				assert.Equal(t, "REC-1718442000000", res.ReceiptNumber)
				assert.True(t, dec("900").Equal(res.Applied))
				assert.True(t, res.Overage.IsZero())
			},
		},
		{
			name: "Overpayment",
			params: installment.PaymentParams{
				Amount: dec("1000"),
				Date:   fixedNow,
				Method: installment.MethodTransfer,
			},
			setupMock: func(m *installment.MockRepository) {
				m.EXPECT().GetInstallment(gomock.Any(), id).Return(stored(), nil)
				m.EXPECT().UpdateInstallment(gomock.Any(), gomock.Any(), 3).Return(nil)
			},
			verify: func(t *testing.T, res *installment.PaymentResult) {
				assert.True(t, dec("900").Equal(res.Installment.AmountPaid))
				assert.True(t, dec("900").Equal(res.Applied))
				assert.True(t, dec("100").Equal(res.Overage))
			},
		},
		{
			name: "ZeroAmountRejectedWithoutTouchingStore",
			params: installment.PaymentParams{
				Amount: decimal.Zero,
				Date:   fixedNow,
				Method: installment.MethodCash,
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "NegativeAmountRejectedWithoutTouchingStore",
			params: installment.PaymentParams{
				Amount: dec("-5"),
				Date:   fixedNow,
				Method: installment.MethodCash,
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "NotFound",
			params: installment.PaymentParams{
				Amount: dec("10"),
				Date:   fixedNow,
				Method: installment.MethodCash,
			},
			setupMock: func(m *installment.MockRepository) {
				m.EXPECT().GetInstallment(gomock.Any(), id).Return(nil, apperr.NotFound("installment"))
			},
			wantErr: apperr.ErrNotFound,
		},
		{
			name: "ConcurrentUpdate",
			params: installment.PaymentParams{
				Amount: dec("10"),
				Date:   fixedNow,
				Method: installment.MethodCash,
			},
			setupMock: func(m *installment.MockRepository) {
				m.EXPECT().GetInstallment(gomock.Any(), id).Return(stored(), nil)
				m.EXPECT().UpdateInstallment(gomock.Any(), gomock.Any(), 3).
					Return(apperr.Conflict("installment was modified concurrently"))
			},
			wantErr: apperr.ErrConflict,
		},
		{
			name: "StoreError",
			params: installment.PaymentParams{
				Amount: dec("10"),
				Date:   fixedNow,
				Method: installment.MethodCash,
			},
			setupMock: func(m *installment.MockRepository) {
				m.EXPECT().GetInstallment(gomock.Any(), id).Return(stored(), nil)
				m.EXPECT().UpdateInstallment(gomock.Any(), gomock.Any(), 3).
					Return(apperr.Store("updating installment", errors.New("connection reset")))
			},
			wantErr: apperr.ErrStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := installment.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := installment.NewService(repo, installment.WithClock(clock))
			got, err := svc.RegisterPayment(context.Background(), id, tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			tt.verify(t, got)
		})
	}
}

func TestService_Reschedule(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	repo := installment.NewMockRepository(ctrl)
	svc := installment.NewService(repo, installment.WithClock(clock))

	repo.EXPECT().GetInstallment(gomock.Any(), id).Return(&installment.Installment{
		ID:              id,
		ScheduledAmount: dec("1000"),
		AmountPaid:      dec("200"),
		State:           installment.StatePartial,
		Version:         1,
	}, nil)
	repo.EXPECT().UpdateInstallment(gomock.Any(), gomock.Any(), 1).Return(nil)

	got, err := svc.Reschedule(context.Background(), id, installment.RescheduleParams{
		NewDueDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		LateFee:    dec("20"),
		Reason:     "asked for more time",
	})
	require.NoError(t, err)

	assert.Equal(t, installment.StateRescheduled, got.State)
	assert.True(t, dec("1020").Equal(got.ScheduledAmount))
	assert.True(t, dec("200").Equal(got.AmountPaid))
	assert.Equal(t, fixedNow, *got.RescheduledAt)
	assert.True(t, dec("820").Equal(got.Remaining()))
}

func TestService_Reschedule_MissingDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := installment.NewService(installment.NewMockRepository(ctrl))

	_, err := svc.Reschedule(context.Background(), uuid.New(), installment.RescheduleParams{LateFee: dec("5")})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestReceiptNumber(t *testing.T) {
	assert.Equal(t, "REC-1718442000000", installment.ReceiptNumber(fixedNow))
}
