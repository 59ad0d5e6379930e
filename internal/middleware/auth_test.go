package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyAuth(t *testing.T) {
	logger := zerolog.Nop()
	validAPIKey := "test-api-key-123"

	tests := []struct {
		name           string
		path           string
		apiKey         string
		expectedStatus int
		expectHandler  bool
	}{
		{
			name:           "Valid API key",
			path:           "/api/cart",
			apiKey:         validAPIKey,
			expectedStatus: http.StatusOK,
			expectHandler:  true,
		},
		{
			name:           "Invalid API key",
			path:           "/api/cart",
			apiKey:         "invalid-key",
			expectedStatus: http.StatusUnauthorized,
			expectHandler:  false,
		},
		{
			name:           "Missing API key",
			path:           "/api/cart",
			apiKey:         "",
			expectedStatus: http.StatusUnauthorized,
			expectHandler:  false,
		},
		{
			name:           "Health check bypasses auth",
			path:           "/health",
			apiKey:         "",
			expectedStatus: http.StatusOK,
			expectHandler:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			handler := APIKeyAuth(validAPIKey, logger)(testHandler)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.apiKey != "" {
				req.Header.Set("X-API-Key", tt.apiKey)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectHandler, handlerCalled)
		})
	}
}

const testSecret = "test-jwt-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestCustomerAuth(t *testing.T) {
	logger := zerolog.Nop()
	now := time.Now()

	valid := jwt.RegisteredClaims{
		Subject:   "cust-1",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
	}

	tests := []struct {
		name           string
		path           string
		header         func(t *testing.T) string
		expectedStatus int
		expectCustomer string
	}{
		{
			name: "Valid token",
			path: "/api/cart",
			header: func(t *testing.T) string {
				return "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), valid)
			},
			expectedStatus: http.StatusOK,
			expectCustomer: "cust-1",
		},
		{
			name: "Lowercase scheme",
			path: "/api/cart",
			header: func(t *testing.T) string {
				return "bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), valid)
			},
			expectedStatus: http.StatusOK,
			expectCustomer: "cust-1",
		},
		{
			name:           "Missing token",
			path:           "/api/cart",
			header:         func(t *testing.T) string { return "" },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong scheme",
			path:           "/api/cart",
			header:         func(t *testing.T) string { return "Basic abc" },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Wrong secret",
			path: "/api/cart",
			header: func(t *testing.T) string {
				return "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), valid)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Wrong algorithm",
			path: "/api/cart",
			header: func(t *testing.T) string {
				return "Bearer " + signToken(t, jwt.SigningMethodHS512, []byte(testSecret), valid)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Expired token",
			path: "/api/cart",
			header: func(t *testing.T) string {
				claims := valid
				claims.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
				return "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "No expiry",
			path: "/api/cart",
			header: func(t *testing.T) string {
				claims := valid
				claims.ExpiresAt = nil
				return "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "No subject",
			path: "/api/cart",
			header: func(t *testing.T) string {
				claims := valid
				claims.Subject = ""
				return "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Health check bypasses auth",
			path:           "/health",
			header:         func(t *testing.T) string { return "" },
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotCustomer string
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotCustomer, _ = CustomerID(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			handler := CustomerAuth(testSecret, logger)(testHandler)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if h := tt.header(t); h != "" {
				req.Header.Set("Authorization", h)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectCustomer, gotCustomer)
			if tt.expectedStatus == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
			}
		})
	}
}

func TestCustomerID(t *testing.T) {
	_, ok := CustomerID(context.Background())
	assert.False(t, ok)

	_, ok = CustomerID(WithCustomerID(context.Background(), ""))
	assert.False(t, ok)

	id, ok := CustomerID(WithCustomerID(context.Background(), "cust-9"))
	assert.True(t, ok)
	assert.Equal(t, "cust-9", id)
}
