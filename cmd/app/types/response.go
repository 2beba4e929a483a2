package types

import (
	"encoding/json"
	"net/http"

	"revcert/internal/generator"
)

type Response struct {
	Code      int               `json:"code"`
	RequestID string            `json:"request_id,omitempty"`
	Error     string            `json:"error,omitempty"`
	Report    *generator.Report `json:"report,omitempty"`
}

func Success(report *generator.Report) *Response {
	return &Response{Code: http.StatusOK, Report: report}
}

func BadRequest(err error) *Response {
	return &Response{Code: http.StatusBadRequest, Error: err.Error()}
}

func Forbidden(err error) *Response {
	return &Response{Code: http.StatusForbidden, Error: err.Error()}
}

func InternalError(err error) *Response {
	return &Response{Code: http.StatusInternalServerError, Error: err.Error()}
}

func NotFound(err error) *Response {
	return &Response{Code: http.StatusNotFound, Error: err.Error()}
}

func MethodNotAllowed() *Response {
	return &Response{Code: http.StatusMethodNotAllowed, Error: "method not allowed"}
}

func (r *Response) Render(w http.ResponseWriter, req *http.Request) error {
	if id, ok := RequestID(req.Context()); ok {
		r.RequestID = id
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.Code)
	return json.NewEncoder(w).Encode(r)
}
