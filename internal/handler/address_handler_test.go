package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAddressHandler_Create(t *testing.T) {
	logger := zerolog.Nop()
	created := &model.Address{ID: uuid.New(), CustomerID: "cust-1", FirstName: "Asha", IsDefault: true}

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockAddressService)
		expectedStatus int
	}{
		{
			name: "Success",
			body: `{"firstName":"Asha","email":"asha@example.com","phone":"1","line1":"12 MG Road"}`,
			setupMock: func(m *MockAddressService) {
				m.On("Create", mock.Anything, "cust-1", mock.MatchedBy(func(f model.AddressFields) bool {
					return f.FirstName == "Asha" && f.Line1 == "12 MG Road"
				})).Return(created, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Incomplete",
			body: `{"firstName":"Asha"}`,
			setupMock: func(m *MockAddressService) {
				m.On("Create", mock.Anything, "cust-1", mock.Anything).Return(nil, model.ErrAddressIncomplete)
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "Invalid JSON",
			body:           `[`,
			setupMock:      func(m *MockAddressService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAddressService)
			tt.setupMock(svc)
			handler := NewAddressHandler(svc, logger)

			w := httptest.NewRecorder()
			handler.Create(w, newRequest(http.MethodPost, "/api/addresses", tt.body, "cust-1", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestAddressHandler_List(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("Empty list is an array", func(t *testing.T) {
		svc := new(MockAddressService)
		svc.On("List", mock.Anything, "cust-1").Return(nil, nil)

		w := httptest.NewRecorder()
		NewAddressHandler(svc, logger).List(w, newRequest(http.MethodGet, "/api/addresses", "", "cust-1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("Addresses", func(t *testing.T) {
		svc := new(MockAddressService)
		svc.On("List", mock.Anything, "cust-1").Return([]model.Address{{ID: uuid.New()}, {ID: uuid.New()}}, nil)

		w := httptest.NewRecorder()
		NewAddressHandler(svc, logger).List(w, newRequest(http.MethodGet, "/api/addresses", "", "cust-1", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var got []model.Address
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Len(t, got, 2)
	})

	t.Run("Service error", func(t *testing.T) {
		svc := new(MockAddressService)
		svc.On("List", mock.Anything, "cust-1").Return(nil, errors.New("db down"))

		w := httptest.NewRecorder()
		NewAddressHandler(svc, logger).List(w, newRequest(http.MethodGet, "/api/addresses", "", "cust-1", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "db down")
	})
}
