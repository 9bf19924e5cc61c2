package kit

import (
	"encoding/json"
	"net/http"
	"reflect"
	"time"
)

// timestampLayout matches the millisecond UTC form clients already parse.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

type Envelope struct {
	Data      any    `json:"data"`
	RequestID string `json:"requestId"`
}

type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
	Message    string `json:"message"`
	RequestID  string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData wraps v in an Envelope when the request carries a correlation id
// and writes it raw otherwise.
func WriteData(w http.ResponseWriter, r *http.Request, status int, v any) {
	reqID := RequestID(r.Context())
	if reqID == "" {
		WriteJSON(w, status, v)
		return
	}
	WriteJSON(w, status, Envelope{Data: copySlice(v), RequestID: reqID})
}

// WriteError normalizes err into an ErrorResponse.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := StatusOf(err)
	WriteJSON(w, status, ErrorResponse{
		StatusCode: status,
		Timestamp:  time.Now().UTC().Format(timestampLayout),
		Path:       r.URL.RequestURI(),
		Message:    msg,
		RequestID:  RequestID(r.Context()),
	})
}

func copySlice(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.IsNil() {
		return v
	}
	out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	reflect.Copy(out, rv)
	return out.Interface()
}
