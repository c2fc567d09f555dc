// internal/models/envelope.go
package models

import "net/http"

// Envelope is a handler result: an HTTP status and the JSON body to write.
type Envelope struct {
	Status int         `json:"status"`
	Data   interface{} `json:"data"`
}

func OK(data interface{}) Envelope {
	return Envelope{Status: http.StatusOK, Data: data}
}

// ErrorBody is the payload of 4xx envelopes.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func BadRequest(errMsg, message string) Envelope {
	return Envelope{Status: http.StatusBadRequest, Data: ErrorBody{Error: errMsg, Message: message}}
}

// TextBody is the paragraph-shaped error payload.
type TextBody struct {
	Text string `json:"text"`
}
