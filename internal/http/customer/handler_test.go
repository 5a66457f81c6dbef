package customer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/cuotas/internal/apperr"
	"github.com/MrJamesThe3rd/cuotas/internal/customer"
	custHTTP "github.com/MrJamesThe3rd/cuotas/internal/http/customer"
)

func newRouter(repo customer.Repository) http.Handler {
	r := chi.NewRouter()
	custHTTP.NewHandler(customer.NewService(repo)).Routes(r)

	return r
}

func TestHandler_Create(t *testing.T) {
	type testCase struct {
		name       string
		body       string
		setupMock  func(m *customer.MockRepository)
		wantStatus int
	}

	tests := []testCase{
		{
			name: "Created",
			body: `{"name":"Rosa Díaz","phone":"11 5555 0000"}`,
			setupMock: func(m *customer.MockRepository) {
				m.EXPECT().
					CreateCustomer(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, c *customer.Customer) error {
						c.ID = uuid.New()
						return nil
					})
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "MissingName",
			body:       `{"phone":"11 5555 0000"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "UnknownField",
			body:       `{"name":"Rosa","age":40}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := customer.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			newRouter(repo).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := customer.NewMockRepository(ctrl)
	repo.EXPECT().
		ListCustomers(gomock.Any(), customer.ListFilter{Search: "rosa"}).
		Return([]*customer.Customer{{ID: uuid.New(), Name: "Rosa Díaz"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/?q=rosa", nil)
	rr := httptest.NewRecorder()
	newRouter(repo).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp []custHTTP.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Rosa Díaz", resp[0].Name)
}

func TestHandler_Delete(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name       string
		path       string
		setupMock  func(m *customer.MockRepository)
		wantStatus int
	}

	tests := []testCase{
		{
			name: "Deleted",
			path: "/" + id.String(),
			setupMock: func(m *customer.MockRepository) {
				m.EXPECT().CountTransactions(gomock.Any(), id).Return(0, nil)
				m.EXPECT().DeleteCustomer(gomock.Any(), id).Return(nil)
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name: "OwnsTransactions",
			path: "/" + id.String(),
			setupMock: func(m *customer.MockRepository) {
				m.EXPECT().CountTransactions(gomock.Any(), id).Return(1, nil)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "Missing",
			path: "/" + id.String(),
			setupMock: func(m *customer.MockRepository) {
				m.EXPECT().CountTransactions(gomock.Any(), id).Return(0, nil)
				m.EXPECT().DeleteCustomer(gomock.Any(), id).Return(apperr.NotFound("customer"))
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "BadID",
			path:       "/not-a-uuid",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := customer.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			req := httptest.NewRequest(http.MethodDelete, tt.path, nil)
			rr := httptest.NewRecorder()
			newRouter(repo).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}
