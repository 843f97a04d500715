package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(write func(c *gin.Context)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	write(c)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSuccessEnvelopes(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		w := record(func(c *gin.Context) { OK(c, gin.H{"id": "1"}) })
		assert.Equal(t, http.StatusOK, w.Code)

		body := decode(t, w)
		assert.Equal(t, true, body["success"])
		assert.NotContains(t, body, "message")
		assert.Equal(t, map[string]interface{}{"id": "1"}, body["data"])
	})

	t.Run("OKWithBooleanData", func(t *testing.T) {
		// false is real data, not an empty value to omit
		w := record(func(c *gin.Context) { OK(c, false) })
		body := decode(t, w)
		assert.Contains(t, body, "data")
		assert.Equal(t, false, body["data"])
	})

	t.Run("OKMessage", func(t *testing.T) {
		w := record(func(c *gin.Context) { OKMessage(c, "User deleted successfully", nil) })
		assert.Equal(t, http.StatusOK, w.Code)

		body := decode(t, w)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "User deleted successfully", body["message"])
		assert.NotContains(t, body, "data")
	})

	t.Run("Created", func(t *testing.T) {
		w := record(func(c *gin.Context) { Created(c, "User created successfully", gin.H{"id": "1"}) })
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "User created successfully", decode(t, w)["message"])
	})
}

func TestErrorEnvelopes(t *testing.T) {
	tests := []struct {
		name   string
		write  func(c *gin.Context)
		status int
	}{
		{"BadRequest", func(c *gin.Context) { BadRequest(c, "Invalid request body") }, http.StatusBadRequest},
		{"NotFound", func(c *gin.Context) { NotFound(c, "User not found with id: x") }, http.StatusNotFound},
		{"Conflict", func(c *gin.Context) { Conflict(c, "Username already exists") }, http.StatusConflict},
		{"ServerError", func(c *gin.Context) { ServerError(c, "An unexpected error occurred") }, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := record(tt.write)
			assert.Equal(t, tt.status, w.Code)

			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["message"])
			assert.NotContains(t, body, "data")
		})
	}
}

func TestValidationFailed(t *testing.T) {
	w := record(func(c *gin.Context) {
		ValidationFailed(c, map[string]string{"email": "Invalid email format"})
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Validation failed", body["message"])
	assert.Equal(t, map[string]interface{}{"email": "Invalid email format"}, body["data"])
}
