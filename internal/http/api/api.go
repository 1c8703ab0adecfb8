// Package api holds the request and response plumbing shared by the HTTP
// handlers.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/futapay/relay/internal/correlation"
	"github.com/futapay/relay/internal/gateway"
	"github.com/futapay/relay/internal/ledger"
	"github.com/futapay/relay/internal/transfer"
)

const MaxBodyBytes = 1 << 20

// Text accepts a JSON string or number. The app sends amounts either way.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}

		*t = Text(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}

	*t = Text(n.String())

	return nil
}

func (t Text) String() string {
	return strings.TrimSpace(string(t))
}

// Decode reads a JSON request body of at most MaxBodyBytes.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(v)
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error"`
	Field    string `json:"field,omitempty"`
	Expected string `json:"expected,omitempty"`
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorResponse{Error: msg})
}

// Fail maps a service error to its HTTP status.
func Fail(w http.ResponseWriter, err error) {
	var verr *transfer.ValidationError

	switch {
	case errors.As(err, &verr):
		JSON(w, http.StatusBadRequest, errorResponse{
			Error:    verr.Error(),
			Field:    verr.Field,
			Expected: verr.Expected,
		})
	case errors.Is(err, gateway.ErrNotConfigured):
		Error(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, transfer.ErrPaymentStarted),
		errors.Is(err, transfer.ErrPayoutStarted),
		errors.Is(err, correlation.ErrConflict),
		errors.Is(err, ledger.ErrRefAlreadySet):
		Error(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
	}
}

type processorFailure struct {
	OK         bool            `json:"ok"`
	Error      string          `json:"error"`
	Failure    gateway.Failure `json:"failure"`
	ExternalID string          `json:"externalId,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
}

// ProcessorFailure reports a processor call that did not go through.
// Rejections keep the processor's status code; a rejection delivered in a
// 2xx becomes 422.
func ProcessorFailure(w http.ResponseWriter, res gateway.Result, msg string) {
	status := http.StatusBadGateway

	switch res.Failure {
	case gateway.FailureTimeout:
		status = http.StatusGatewayTimeout
	case gateway.FailureRejected:
		status = res.HTTPStatus
		if status < http.StatusBadRequest {
			status = http.StatusUnprocessableEntity
		}
	}

	if res.Detail != "" {
		msg += ": " + res.Detail
	}

	JSON(w, status, processorFailure{
		Error:      msg,
		Failure:    res.Failure,
		ExternalID: res.ExternalID,
		Details:    Raw(res.RawBody),
	})
}

// Raw embeds a processor body in a JSON response, quoting it when it is not
// JSON itself.
func Raw(b []byte) json.RawMessage {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}

	if json.Valid(b) {
		return b
	}

	quoted, _ := json.Marshal(string(b))

	return quoted
}

var returnPage = template.Must(template.New("return").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>FutaPay</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 3em 1em;">
<h1>Thank you</h1>
<p>Your payment is being processed. You can return to the FutaPay app.</p>
{{if .}}<p style="color: #666;">Reference: {{.}}</p>{{end}}
</body>
</html>
`))

// ReturnPage renders the landing page processors redirect the payer to.
func ReturnPage(w http.ResponseWriter, reference string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := returnPage.Execute(w, reference); err != nil {
		slog.Error("failed to render return page", "error", err)
	}
}
