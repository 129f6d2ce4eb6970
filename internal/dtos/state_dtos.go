package dtos

import (
	"encoding/json"

	"github.com/google/uuid"
)

// JobStateRequest asks for the result of an earlier request.
type JobStateRequest struct {
	UUID string `json:"uuid" validate:"required,uuid"`
}

// ResponseState is both the synchronous acknowledgement of a request and the
// shape of the state records workers leave for transfer and invoice jobs.
// Result carries whatever extra data the worker attached.
type ResponseState struct {
	UUID    uuid.UUID       `json:"uuid"`
	State   string          `json:"state"`
	Message string          `json:"message,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}
