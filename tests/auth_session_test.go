package tests

import (
	"net/http"
	"testing"
)

func TestSession(t *testing.T) {

	t.Run("WithoutToken", func(t *testing.T) {

		// Act
		status, _ := doJSON(t, http.MethodGet, "/api/v1/auth/session", nil, nil)

		// Assert
		if status != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", status)
		}
	})

	t.Run("WithGarbageToken", func(t *testing.T) {

		// Arrange
		headers := map[string]string{"Authorization": "Bearer not-a-jwt"}

		// Act
		status, _ := doJSON(t, http.MethodGet, "/api/v1/auth/session", nil, headers)

		// Assert
		if status != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", status)
		}
	})
}
