package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes caps request bodies read by DecodeJSON
const maxBodyBytes = 1 << 20

// ErrorResponse is the failure envelope
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Stack   string `json:"stack,omitempty"`
}

// SuccessResponse is the success envelope
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// MessageData is the payload of endpoints that only confirm an action
type MessageData struct {
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes {"success":true,"data":...}
func WriteSuccess(w http.ResponseWriter, status int, data interface{}) error {
	return WriteJSON(w, status, SuccessResponse{Success: true, Data: data})
}

// WriteOK writes a 200 success envelope
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteSuccess(w, http.StatusOK, data)
}

// WriteCreated writes a 201 success envelope
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteSuccess(w, http.StatusCreated, data)
}

// WriteMessage writes a 200 success envelope carrying only a message
func WriteMessage(w http.ResponseWriter, message string) error {
	return WriteOK(w, MessageData{Message: message})
}

// WriteError writes {"success":false,"error":message}
func WriteError(w http.ResponseWriter, status int, message string) error {
	return WriteJSON(w, status, ErrorResponse{Error: message})
}

// WriteErrorWithStack writes the failure envelope with a stack trace attached
func WriteErrorWithStack(w http.ResponseWriter, status int, message, stack string) error {
	return WriteJSON(w, status, ErrorResponse{Error: message, Stack: stack})
}

// WriteBadRequest writes a 400 failure envelope
func WriteBadRequest(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Bad request"
	}
	return WriteError(w, http.StatusBadRequest, message)
}

// WriteNotFound writes a 404 failure envelope
func WriteNotFound(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Resource not found"
	}
	return WriteError(w, http.StatusNotFound, message)
}

// DecodeJSON reads a single JSON object from the request body into dst
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return &ValidationError{Message: "Request body is required"}
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &ValidationError{Message: "Request body is required"}
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &ValidationError{
				Message: fmt.Sprintf("%s has an invalid type", typeErr.Field),
				Fields:  map[string]string{typeErr.Field: "invalid type"},
			}
		}
		return &ValidationError{Message: "Invalid JSON body"}
	}
	return nil
}
