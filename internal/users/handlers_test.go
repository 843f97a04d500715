package users

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	RegisterValidators()

	svc, _, _ := newTestService()
	router := gin.New()
	api := router.Group("/api")
	NewUserHandlers(svc, zap.NewNop()).RegisterRoutes(api)
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

const aliceBody = `{
	"username": "alice",
	"email": "alice@example.com",
	"password": "Str0ng@Pass",
	"phoneNumber": "5551234567",
	"role": "CUSTOMER"
}`

func createAlice(t *testing.T, router *gin.Engine) map[string]interface{} {
	t.Helper()

	w := doRequest(router, http.MethodPost, "/api/users", aliceBody)
	require.Equal(t, http.StatusCreated, w.Code)

	env := decodeEnvelope(t, w)
	require.True(t, env.Success)
	require.Equal(t, "User created successfully", env.Message)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data
}

func TestCreateUserEndpoint(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		router := newTestRouter(t)
		data := createAlice(t, router)

		assert.Equal(t, "alice", data["username"])
		assert.Equal(t, "alice@example.com", data["email"])
		assert.Equal(t, "5551234567", data["phoneNumber"])
		assert.Equal(t, "CUSTOMER", data["role"])
		assert.Equal(t, "ACTIVE", data["status"])
		assert.NotEmpty(t, data["id"])

		// The password never appears in any form on the wire
		assert.NotContains(t, data, "password")
		assert.NotContains(t, data, "passwordHash")
	})

	t.Run("DuplicateUsernameConflict", func(t *testing.T) {
		router := newTestRouter(t)
		createAlice(t, router)

		other := strings.Replace(aliceBody, "alice@example.com", "alice2@example.com", 1)
		w := doRequest(router, http.MethodPost, "/api/users", other)
		assert.Equal(t, http.StatusConflict, w.Code)

		env := decodeEnvelope(t, w)
		assert.False(t, env.Success)
		assert.Equal(t, "Username already exists", env.Message)
	})

	t.Run("DuplicateEmailConflict", func(t *testing.T) {
		router := newTestRouter(t)
		createAlice(t, router)

		other := strings.Replace(aliceBody, `"alice"`, `"bob"`, 1)
		w := doRequest(router, http.MethodPost, "/api/users", other)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Email already exists", decodeEnvelope(t, w).Message)
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		router := newTestRouter(t)

		w := doRequest(router, http.MethodPost, "/api/users", `{
			"username": "ab",
			"email": "nope",
			"password": "weak",
			"role": "WIZARD"
		}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		env := decodeEnvelope(t, w)
		assert.False(t, env.Success)
		assert.Equal(t, "Validation failed", env.Message)

		var fields map[string]string
		require.NoError(t, json.Unmarshal(env.Data, &fields))
		assert.Contains(t, fields, "username")
		assert.Contains(t, fields, "email")
		assert.Contains(t, fields, "password")
		assert.Contains(t, fields, "role")
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		router := newTestRouter(t)

		w := doRequest(router, http.MethodPost, "/api/users", `{"username": `)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid request body", decodeEnvelope(t, w).Message)
	})
}

func TestGetUserEndpoints(t *testing.T) {
	router := newTestRouter(t)
	data := createAlice(t, router)
	id := data["id"].(string)

	t.Run("ByID", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/users/"+id, "")
		require.Equal(t, http.StatusOK, w.Code)

		env := decodeEnvelope(t, w)
		assert.True(t, env.Success)
		assert.Empty(t, env.Message)
	})

	t.Run("ByUsername", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/users/username/alice", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ByEmail", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/users/email/alice@example.com", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("MalformedID", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/users/not-a-uuid", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid user id", decodeEnvelope(t, w).Message)
	})

	t.Run("UnknownID", func(t *testing.T) {
		unknown := "00000000-0000-0000-0000-000000000001"
		w := doRequest(router, http.MethodGet, "/api/users/"+unknown, "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		env := decodeEnvelope(t, w)
		assert.False(t, env.Success)
		assert.Equal(t, fmt.Sprintf("User not found with id: %s", unknown), env.Message)
	})

	t.Run("UnknownUsername", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/users/username/ghost", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not found with username: ghost", decodeEnvelope(t, w).Message)
	})
}

func TestListEndpoints(t *testing.T) {
	router := newTestRouter(t)
	createAlice(t, router)

	bob := strings.NewReplacer(
		`"alice"`, `"bob"`,
		"alice@example.com", "bob@example.com",
		"CUSTOMER", "ADMIN",
	).Replace(aliceBody)
	w := doRequest(router, http.MethodPost, "/api/users", bob)
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("ListAll", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/users", "")
		require.Equal(t, http.StatusOK, w.Code)

		var list []map[string]interface{}
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &list))
		assert.Len(t, list, 2)
	})

	t.Run("ByRole", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/users/role/ADMIN", "")
		require.Equal(t, http.StatusOK, w.Code)

		var list []map[string]interface{}
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &list))
		require.Len(t, list, 1)
		assert.Equal(t, "bob", list[0]["username"])
	})

	t.Run("InvalidRole", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/users/role/WIZARD", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid role: WIZARD", decodeEnvelope(t, w).Message)
	})
}

func TestUpdateUserEndpoint(t *testing.T) {
	router := newTestRouter(t)
	data := createAlice(t, router)
	id := data["id"].(string)

	t.Run("PartialUpdate", func(t *testing.T) {
		w := doRequest(router, http.MethodPut, "/api/users/"+id, `{"phoneNumber": "5559876543"}`)
		require.Equal(t, http.StatusOK, w.Code)

		env := decodeEnvelope(t, w)
		assert.Equal(t, "User updated successfully", env.Message)

		var updated map[string]interface{}
		require.NoError(t, json.Unmarshal(env.Data, &updated))
		assert.Equal(t, "5559876543", updated["phoneNumber"])
		assert.Equal(t, "alice", updated["username"])
	})

	t.Run("InvalidFieldRejected", func(t *testing.T) {
		w := doRequest(router, http.MethodPut, "/api/users/"+id, `{"status": "GONE"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Validation failed", decodeEnvelope(t, w).Message)
	})

	t.Run("UnknownID", func(t *testing.T) {
		w := doRequest(router, http.MethodPut, "/api/users/00000000-0000-0000-0000-000000000001", `{"username": "ghost"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteUserEndpoint(t *testing.T) {
	router := newTestRouter(t)
	data := createAlice(t, router)
	id := data["id"].(string)

	w := doRequest(router, http.MethodDelete, "/api/users/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User deleted successfully", decodeEnvelope(t, w).Message)

	t.Run("SecondDeleteNotFound", func(t *testing.T) {
		w := doRequest(router, http.MethodDelete, "/api/users/"+id, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("DeletedUserGone", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/users/"+id, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("ExistsChecksStillSeeDeleted", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/users/check/username/alice", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "true", string(decodeEnvelope(t, w).Data))

		w = doRequest(router, http.MethodGet, "/api/users/check/email/alice@example.com", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "true", string(decodeEnvelope(t, w).Data))
	})
}

func TestCheckEndpoints(t *testing.T) {
	router := newTestRouter(t)
	createAlice(t, router)

	t.Run("UsernameTaken", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/users/check/username/alice", "")
		require.Equal(t, http.StatusOK, w.Code)

		env := decodeEnvelope(t, w)
		assert.True(t, env.Success)
		assert.Equal(t, "true", string(env.Data))
	})

	t.Run("UsernameFree", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/users/check/username/bob", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "false", string(decodeEnvelope(t, w).Data))
	})

	t.Run("EmailTaken", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/users/check/email/alice@example.com", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "true", string(decodeEnvelope(t, w).Data))
	})
}
