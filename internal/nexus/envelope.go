package nexus

import "encoding/json"

const unexpectedError = "Unexpected error"

// Envelope is the response shape the admin UI branches on: success envelopes
// always carry "data" (possibly null), failures carry "error".
type Envelope struct {
	Status  int
	Success bool
	Data    any
	Error   any
	Message string
}

type successBody struct {
	Status int `json:"status"`
	Data   any `json:"data"`
}

type failureBody struct {
	Status  int    `json:"status"`
	Error   any    `json:"error"`
	Message string `json:"message,omitempty"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Success {
		return json.Marshal(successBody{Status: e.Status, Data: e.Data})
	}
	return json.Marshal(failureBody{Status: e.Status, Error: e.Error, Message: e.Message})
}

// decodeOrNil decodes a JSON body, yielding nil when it is not valid JSON.
func decodeOrNil(body []byte) any {
	var out any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil
	}
	return out
}

// decodeOrRaw decodes a JSON body, falling back to the raw text.
func decodeOrRaw(body []byte) any {
	var out any
	if err := json.Unmarshal(body, &out); err != nil {
		return string(body)
	}
	return out
}
