package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/turtacn/casefolio/pkg/errors"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the error body of the portfolio, refresh and catalog
// endpoints.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PriceErrorResponse is the error body of the price endpoints.
type PriceErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeAppError maps err to a status through its code. Internal failures
// are masked.
func writeAppError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	msg := errors.Reason(err)
	if code == errors.CodeUnknown || code == errors.ErrCodeInternal {
		code = errors.ErrCodeInternal
		msg = "internal server error"
	}
	status := errors.HTTPStatusForCode(code)
	writeJSON(w, status, ErrorResponse{Code: code.String(), Message: msg})
}

// writePriceError writes the {success:false,error} envelope. Upstream
// failures carry their reason.
func writePriceError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatusForCode(errors.GetCode(err))
	writeJSON(w, status, PriceErrorResponse{Success: false, Error: errors.Reason(err)})
}

// decodeJSON reads at most limit bytes of r's body into dst.
func decodeJSON(r *http.Request, limit int64, dst interface{}) error {
	body := io.Reader(r.Body)
	if limit > 0 {
		body = io.LimitReader(r.Body, limit)
	}
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body")
	}
	return nil
}

//Personal.AI order the ending
