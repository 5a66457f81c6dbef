package importer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/cuotas/internal/customer"
	"github.com/MrJamesThe3rd/cuotas/internal/importer"
)

const sheet = "Nombre;DNI;Teléfono\nAna;30.123.456;011 5555-0000\nLuis;;351 444 1234\n"

func TestService_Import(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *importer.MockDirectory)
		wantErr   bool
		verify    func(t *testing.T, res *importer.Result)
	}

	tests := []testCase{
		{
			name: "AllNew",
			setupMock: func(m *importer.MockDirectory) {
				m.EXPECT().List(gomock.Any(), customer.ListFilter{}).Return(nil, nil)
				m.EXPECT().
					CreateBatch(gomock.Any(), gomock.Len(2)).
					DoAndReturn(func(_ context.Context, ps []customer.CreateParams) ([]*customer.Customer, error) {
						out := make([]*customer.Customer, len(ps))
						for i, p := range ps {
							out[i] = &customer.Customer{ID: uuid.New(), Name: p.Name}
						}

						return out, nil
					})
			},
			verify: func(t *testing.T, res *importer.Result) {
				assert.Len(t, res.Created, 2)
				assert.Empty(t, res.New)
				assert.Empty(t, res.Duplicates)
			},
		},
		{
			name: "DuplicateDocumentStopsImport",
			setupMock: func(m *importer.MockDirectory) {
				m.EXPECT().List(gomock.Any(), gomock.Any()).Return([]*customer.Customer{
					{ID: uuid.New(), Name: "Ana P.", DocumentID: "30123456"},
				}, nil)
				// CreateBatch must not be called.
			},
			verify: func(t *testing.T, res *importer.Result) {
				assert.Empty(t, res.Created)
				require.Len(t, res.Duplicates, 1)
				assert.Equal(t, "Ana", res.Duplicates[0].Incoming.Name)
				assert.Equal(t, "Ana P.", res.Duplicates[0].Existing.Name)
				require.Len(t, res.New, 1)
				assert.Equal(t, "Luis", res.New[0].Name)
			},
		},
		{
			name: "DuplicatePhone",
			setupMock: func(m *importer.MockDirectory) {
				m.EXPECT().List(gomock.Any(), gomock.Any()).Return([]*customer.Customer{
					{ID: uuid.New(), Name: "Luis G.", Phone: "3514441234"},
				}, nil)
			},
			verify: func(t *testing.T, res *importer.Result) {
				require.Len(t, res.Duplicates, 1)
				assert.Equal(t, "Luis", res.Duplicates[0].Incoming.Name)
			},
		},
		{
			name: "ListError",
			setupMock: func(m *importer.MockDirectory) {
				m.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			dir := importer.NewMockDirectory(ctrl)
			tt.setupMock(dir)

			res, err := importer.NewService(dir).Import(context.Background(), strings.NewReader(sheet))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			tt.verify(t, res)
		})
	}
}

func TestService_Confirm(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := importer.NewMockDirectory(ctrl)
	dir.EXPECT().CreateBatch(gomock.Any(), gomock.Len(1)).Return(nil, errors.New("row 1: name: is required"))

	_, err := importer.NewService(dir).Confirm(context.Background(), []customer.CreateParams{{}})
	assert.ErrorContains(t, err, "creating customers")
}
