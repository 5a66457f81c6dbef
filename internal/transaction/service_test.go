package transaction_test

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
	"github.com/MrJamesThe3rd/cuotas/internal/schedule"
	"github.com/MrJamesThe3rd/cuotas/internal/transaction"
)

func TestService_Create(t *testing.T) {
	customerID := uuid.New()
	productID := uuid.New()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	type args struct {
		params transaction.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(repo *transaction.MockRepository, catalog *transaction.MockCatalog)
		wantErr   error
		verify    func(t *testing.T, tx *transaction.Transaction)
	}

	tests := []testCase{
		{
			name: "LoanWithInterest",
			args: args{
				params: transaction.CreateParams{
					CustomerID:       customerID,
					Kind:             transaction.KindLoan,
					Principal:        decimal.NewFromInt(1000),
					InterestPercent:  decimal.NewFromInt(20),
					Frequency:        schedule.FrequencyWeekly,
					InstallmentCount: 4,
					StartDate:        start,
				},
			},
			setupMock: func(repo *transaction.MockRepository, catalog *transaction.MockCatalog) {
				catalog.EXPECT().CustomerExists(gomock.Any(), customerID).Return(true, nil)
				repo.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						tx.ID = uuid.New()
						tx.CreatedAt = time.Now()

						for _, inst := range tx.Installments {
							inst.ID = uuid.New()
							inst.TransactionID = tx.ID
						}

						return nil
					})
			},
			verify: func(t *testing.T, tx *transaction.Transaction) {
				assert.NotEqual(t, uuid.Nil, tx.ID)
				assert.Equal(t, transaction.StatusActive, tx.Status)
				assert.True(t, decimal.NewFromInt(1200).Equal(tx.TotalAmount))
				assert.True(t, decimal.NewFromInt(300).Equal(tx.InstallmentAmount))
				require.Len(t, tx.Installments, 4)
				assert.Equal(t, time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC), tx.Installments[3].DueDate)
				assert.Equal(t, installment.StatePending, tx.Installments[0].State)
				assert.Nil(t, tx.ProductID)
			},
		},
		{
			name: "SaleDefaultsPrincipalToProductPrice",
			args: args{
				params: transaction.CreateParams{
					CustomerID:       customerID,
					ProductID:        &productID,
					Kind:             transaction.KindSale,
					Frequency:        schedule.FrequencyMonthly,
					InstallmentCount: 3,
					StartDate:        start,
				},
			},
			setupMock: func(repo *transaction.MockRepository, catalog *transaction.MockCatalog) {
				catalog.EXPECT().CustomerExists(gomock.Any(), customerID).Return(true, nil)
				catalog.EXPECT().ProductPrice(gomock.Any(), productID).Return(decimal.NewFromInt(900), nil)
				repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
			},
			verify: func(t *testing.T, tx *transaction.Transaction) {
				assert.True(t, decimal.NewFromInt(900).Equal(tx.Principal))
				assert.True(t, decimal.NewFromInt(900).Equal(tx.TotalAmount))
				assert.True(t, decimal.NewFromInt(300).Equal(tx.InstallmentAmount))
			},
		},
		{
			name: "SaleWithoutProduct",
			args: args{
				params: transaction.CreateParams{
					CustomerID:       customerID,
					Kind:             transaction.KindSale,
					Principal:        decimal.NewFromInt(100),
					Frequency:        schedule.FrequencyMonthly,
					InstallmentCount: 1,
					StartDate:        start,
				},
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "LoanWithProduct",
			args: args{
				params: transaction.CreateParams{
					CustomerID:       customerID,
					ProductID:        &productID,
					Kind:             transaction.KindLoan,
					Principal:        decimal.NewFromInt(100),
					Frequency:        schedule.FrequencyMonthly,
					InstallmentCount: 1,
					StartDate:        start,
				},
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "UnknownCustomer",
			args: args{
				params: transaction.CreateParams{
					CustomerID:       customerID,
					Kind:             transaction.KindLoan,
					Principal:        decimal.NewFromInt(100),
					Frequency:        schedule.FrequencyMonthly,
					InstallmentCount: 1,
					StartDate:        start,
				},
			},
			setupMock: func(_ *transaction.MockRepository, catalog *transaction.MockCatalog) {
				catalog.EXPECT().CustomerExists(gomock.Any(), customerID).Return(false, nil)
			},
			wantErr: apperr.ErrNotFound,
		},
		{
			name: "ZeroInstallments",
			args: args{
				params: transaction.CreateParams{
					CustomerID:       customerID,
					Kind:             transaction.KindLoan,
					Principal:        decimal.NewFromInt(100),
					Frequency:        schedule.FrequencyMonthly,
					InstallmentCount: 0,
					StartDate:        start,
				},
			},
			setupMock: func(_ *transaction.MockRepository, catalog *transaction.MockCatalog) {
				catalog.EXPECT().CustomerExists(gomock.Any(), customerID).Return(true, nil)
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "NonPositivePrincipal",
			args: args{
				params: transaction.CreateParams{
					CustomerID:       customerID,
					Kind:             transaction.KindLoan,
					Principal:        decimal.NewFromInt(-100),
					Frequency:        schedule.FrequencyMonthly,
					InstallmentCount: 2,
					StartDate:        start,
				},
			},
			setupMock: func(_ *transaction.MockRepository, catalog *transaction.MockCatalog) {
				catalog.EXPECT().CustomerExists(gomock.Any(), customerID).Return(true, nil)
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "RepoError",
			args: args{
				params: transaction.CreateParams{
					CustomerID:       customerID,
					Kind:             transaction.KindLoan,
					Principal:        decimal.NewFromInt(100),
					Frequency:        schedule.FrequencyMonthly,
					InstallmentCount: 2,
					StartDate:        start,
				},
			},
			setupMock: func(repo *transaction.MockRepository, catalog *transaction.MockCatalog) {
				catalog.EXPECT().CustomerExists(gomock.Any(), customerID).Return(true, nil)
				repo.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					Return(apperr.Store("creating transaction", errors.New("db error")))
			},
			wantErr: apperr.ErrStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			catalog := transaction.NewMockCatalog(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, catalog)
			}

			svc := transaction.NewService(repo, catalog)
			got, err := svc.Create(context.Background(), tt.args.params)

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

func TestService_Delete(t *testing.T) {
	id := uuid.New()

	t.Run("Unconfirmed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := transaction.NewService(transaction.NewMockRepository(ctrl), transaction.NewMockCatalog(ctrl))

		err := svc.Delete(context.Background(), id, false)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("Confirmed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		repo.EXPECT().DeleteTransaction(gomock.Any(), id).Return(nil)

		svc := transaction.NewService(repo, transaction.NewMockCatalog(ctrl))
		assert.NoError(t, svc.Delete(context.Background(), id, true))
	})

	t.Run("Missing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		repo.EXPECT().DeleteTransaction(gomock.Any(), id).Return(apperr.NotFound("transaction"))

		svc := transaction.NewService(repo, transaction.NewMockCatalog(ctrl))
		assert.ErrorIs(t, svc.Delete(context.Background(), id, true), apperr.ErrNotFound)
	})
}

func TestService_UpdateStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo, transaction.NewMockCatalog(ctrl))

	repo.EXPECT().UpdateStatus(gomock.Any(), id, transaction.StatusDelinquent).Return(nil)

	assert.NoError(t, svc.UpdateStatus(context.Background(), id, transaction.StatusDelinquent))
	assert.ErrorIs(t, svc.UpdateStatus(context.Background(), id, "archived"), apperr.ErrValidation)
}

func TestService_ListByCustomer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	customerID := uuid.New()
	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo, transaction.NewMockCatalog(ctrl))

	repo.EXPECT().ListByCustomer(gomock.Any(), customerID).Return([]*transaction.Transaction{
		{ID: uuid.New()},
		{ID: uuid.New()},
	}, nil)

	got, err := svc.ListByCustomer(context.Background(), customerID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
