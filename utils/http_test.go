package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWriteJSON(t *testing.T) {
	t.Run("successful write", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusOK, map[string]string{"message": "test"})
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.Equal(t, "test", decodeBody(t, w)["message"])
	})

	t.Run("nil data", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusNoContent, nil)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestWriteOK(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteOK(w, map[string]string{"result": "success"}))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "success", body["data"].(map[string]interface{})["result"])
}

func TestWriteCreated(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteCreated(w, map[string]string{"id": "123"}))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["success"])
}

func TestWriteMessage(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteMessage(w, "Signed out successfully"))

	body := decodeBody(t, w)
	assert.Equal(t, "Signed out successfully", body["data"].(map[string]interface{})["message"])
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		write   func(http.ResponseWriter) error
		status  int
		message string
	}{
		{"explicit status", func(w http.ResponseWriter) error { return WriteError(w, http.StatusForbidden, "nope") }, http.StatusForbidden, "nope"},
		{"bad request default", func(w http.ResponseWriter) error { return WriteBadRequest(w, "") }, http.StatusBadRequest, "Bad request"},
		{"not found", func(w http.ResponseWriter) error { return WriteNotFound(w, "Endpoint not found") }, http.StatusNotFound, "Endpoint not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, tt.write(w))

			assert.Equal(t, tt.status, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["error"])
			assert.NotContains(t, body, "stack")
			assert.NotContains(t, body, "data")
		})
	}
}

func TestWriteErrorWithStack(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteErrorWithStack(w, http.StatusInternalServerError, "Something went wrong!", "goroutine 1"))

	body := decodeBody(t, w)
	assert.Equal(t, "Something went wrong!", body["error"])
	assert.Equal(t, "goroutine 1", body["stack"])
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Email string `json:"email"`
		Age   int    `json:"age"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"email":"a@b.com","age":3}`, ""},
		{"empty", ``, "Request body is required"},
		{"malformed", `{"email":`, "Invalid JSON body"},
		{"wrong type", `{"age":"three"}`, "age has an invalid type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst payload
			err := DecodeJSON(r, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "a@b.com", dst.Email)
				return
			}
			assert.True(t, IsValidationError(err))
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
