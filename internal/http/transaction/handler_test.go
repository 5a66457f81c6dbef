package transaction_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	txHTTP "github.com/MrJamesThe3rd/cuotas/internal/http/transaction"
	"github.com/MrJamesThe3rd/cuotas/internal/transaction"
)

type mocks struct {
	repo    *transaction.MockRepository
	catalog *transaction.MockCatalog
}

func newRouter(t *testing.T, setup func(m mocks)) http.Handler {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := mocks{
		repo:    transaction.NewMockRepository(ctrl),
		catalog: transaction.NewMockCatalog(ctrl),
	}

	if setup != nil {
		setup(m)
	}

	r := chi.NewRouter()
	txHTTP.NewHandler(transaction.NewService(m.repo, m.catalog)).Routes(r)

	return r
}

func TestHandler_Create(t *testing.T) {
	customerID := uuid.New()

	type testCase struct {
		name       string
		body       string
		setupMock  func(m mocks)
		wantStatus int
	}

	tests := []testCase{
		{
			name: "Loan",
			body: `{"customer_id":"` + customerID.String() + `","kind":"loan","principal":"1000","interest_percent":"10",` +
				`"payment_frequency":"monthly","installment_count":4,"start_date":"2025-01-31"}`,
			setupMock: func(m mocks) {
				m.catalog.EXPECT().CustomerExists(gomock.Any(), customerID).Return(true, nil)
				m.repo.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						tx.ID = uuid.New()
						for _, inst := range tx.Installments {
							inst.ID = uuid.New()
							inst.TransactionID = tx.ID
						}

						return nil
					})
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "UnknownCustomer",
			body: `{"customer_id":"` + customerID.String() + `","kind":"loan","principal":"1000",` +
				`"payment_frequency":"monthly","installment_count":4,"start_date":"2025-01-31"}`,
			setupMock: func(m mocks) {
				m.catalog.EXPECT().CustomerExists(gomock.Any(), customerID).Return(false, nil)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "BadKind",
			body:       `{"customer_id":"` + customerID.String() + `","kind":"gift","start_date":"2025-01-31"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "BadDate",
			body:       `{"customer_id":"` + customerID.String() + `","kind":"loan","start_date":"31/01/2025"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			newRouter(t, tt.setupMock).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestHandler_CreateReportsSchedule(t *testing.T) {
	customerID := uuid.New()

	r := newRouter(t, func(m mocks) {
		m.catalog.EXPECT().CustomerExists(gomock.Any(), customerID).Return(true, nil)
		m.repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
	})

	body := `{"customer_id":"` + customerID.String() + `","kind":"loan","principal":"1000","interest_percent":"10",` +
		`"payment_frequency":"monthly","installment_count":4,"start_date":"2025-01-31"}`

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp txHTTP.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.True(t, decimal.NewFromInt(1100).Equal(resp.TotalAmount))
	assert.True(t, decimal.NewFromInt(275).Equal(resp.InstallmentAmount))
	assert.True(t, decimal.NewFromInt(1100).Equal(resp.Outstanding))
	assert.Equal(t, 4, resp.OpenCount)
	require.Len(t, resp.Installments, 4)
	assert.Equal(t, "2025-01-31", resp.Installments[0].DueDate)
	assert.Equal(t, "2025-02-28", resp.Installments[1].DueDate)
	assert.Equal(t, "2025-03-31", resp.Installments[2].DueDate)
}

func TestHandler_UpdateStatus(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name       string
		body       string
		setupMock  func(m mocks)
		wantStatus int
	}

	tests := []testCase{
		{
			name: "Delinquent",
			body: `{"status":"delinquent"}`,
			setupMock: func(m mocks) {
				m.repo.EXPECT().UpdateStatus(gomock.Any(), id, transaction.StatusDelinquent).Return(nil)
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "UnknownStatus",
			body:       `{"status":"lost"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/"+id.String()+"/status", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			newRouter(t, tt.setupMock).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestHandler_Delete(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name       string
		query      string
		setupMock  func(m mocks)
		wantStatus int
	}

	tests := []testCase{
		{
			name:  "Confirmed",
			query: "?confirm=true",
			setupMock: func(m mocks) {
				m.repo.EXPECT().DeleteTransaction(gomock.Any(), id).Return(nil)
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "NotConfirmed",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "ConfirmFalse",
			query:      "?confirm=false",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/"+id.String()+tt.query, nil)
			rr := httptest.NewRecorder()
			newRouter(t, tt.setupMock).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}
