package importcsv_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/cuotas/internal/customer"
	"github.com/MrJamesThe3rd/cuotas/internal/http/importcsv"
	"github.com/MrJamesThe3rd/cuotas/internal/importer"
)

const sample = "nombre;documento;telefono\n" +
	"Rosa Díaz;20111222;11 5555 0000\n" +
	"Juan Pérez;30444555;11 4444 1111\n"

func newRouter(repo customer.Repository) http.Handler {
	r := chi.NewRouter()
	importcsv.NewHandler(importer.NewService(customer.NewService(repo))).Routes(r)

	return r
}

func upload(t *testing.T, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "clientes.csv")
	require.NoError(t, err)

	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/customers", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func assignIDs(_ context.Context, cs []*customer.Customer) error {
	for _, c := range cs {
		c.ID = uuid.New()
	}

	return nil
}

func TestHandler_ImportCustomers(t *testing.T) {
	type testCase struct {
		name       string
		content    string
		setupMock  func(m *customer.MockRepository)
		wantStatus int
		check      func(t *testing.T, body []byte)
	}

	tests := []testCase{
		{
			name:    "AllNew",
			content: sample,
			setupMock: func(m *customer.MockRepository) {
				m.EXPECT().ListCustomers(gomock.Any(), customer.ListFilter{}).Return(nil, nil)
				m.EXPECT().CreateCustomers(gomock.Any(), gomock.Len(2)).DoAndReturn(assignIDs)
			},
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, body []byte) {
				var resp struct {
					Imported int `json:"imported"`
				}
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, 2, resp.Imported)
			},
		},
		{
			name:    "Duplicates",
			content: sample,
			setupMock: func(m *customer.MockRepository) {
				m.EXPECT().ListCustomers(gomock.Any(), customer.ListFilter{}).Return([]*customer.Customer{
					{ID: uuid.New(), Name: "Rosa D.", Phone: "1155550000"},
				}, nil)
			},
			wantStatus: http.StatusConflict,
			check: func(t *testing.T, body []byte) {
				var resp struct {
					New        []map[string]any `json:"new"`
					Duplicates []struct {
						Incoming map[string]any `json:"incoming"`
						Existing map[string]any `json:"existing"`
					} `json:"duplicates"`
				}
				require.NoError(t, json.Unmarshal(body, &resp))
				require.Len(t, resp.New, 1)
				require.Len(t, resp.Duplicates, 1)
				assert.Equal(t, "Rosa Díaz", resp.Duplicates[0].Incoming["name"])
				assert.Equal(t, "Rosa D.", resp.Duplicates[0].Existing["name"])
			},
		},
		{
			name:       "NoHeader",
			content:    "a;b\n1;2\n",
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

			rr := httptest.NewRecorder()
			newRouter(repo).ServeHTTP(rr, upload(t, tt.content))

			require.Equal(t, tt.wantStatus, rr.Code)

			if tt.check != nil {
				tt.check(t, rr.Body.Bytes())
			}
		})
	}
}

func TestHandler_ImportWithoutFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader("name=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := httptest.NewRecorder()
	newRouter(customer.NewMockRepository(ctrl)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_Confirm(t *testing.T) {
	type testCase struct {
		name       string
		body       string
		setupMock  func(m *customer.MockRepository)
		wantStatus int
	}

	tests := []testCase{
		{
			name: "Created",
			body: `{"customers":[{"name":"Rosa Díaz","phone":"11 5555 0000"}]}`,
			setupMock: func(m *customer.MockRepository) {
				m.EXPECT().CreateCustomers(gomock.Any(), gomock.Len(1)).DoAndReturn(assignIDs)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "RowWithoutName",
			body:       `{"customers":[{"phone":"11 5555 0000"}]}`,
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

			req := httptest.NewRequest(http.MethodPost, "/customers/confirm", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			newRouter(repo).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}
