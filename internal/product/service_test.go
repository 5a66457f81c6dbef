package product_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/cuotas/internal/apperr"
	"github.com/MrJamesThe3rd/cuotas/internal/product"
)

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    product.CreateParams
		setupMock func(m *product.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "Success",
			params: product.CreateParams{Name: "Heladera 300L", UnitPrice: decimal.NewFromInt(450000)},
			setupMock: func(m *product.MockRepository) {
				m.EXPECT().
					CreateProduct(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *product.Product) error {
						p.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name:    "MissingName",
			params:  product.CreateParams{UnitPrice: decimal.NewFromInt(10)},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "ZeroPrice",
			params:  product.CreateParams{Name: "Lavarropas"},
			wantErr: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := product.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := product.NewService(repo).Create(context.Background(), tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			assert.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
		})
	}
}
