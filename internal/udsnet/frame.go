// Package udsnet implements the line-framed UNIX-domain-socket wire protocol
// shared by the nexus's two listeners (config, exec) and the remote client,
// plus the accept/read/disconnect server lifecycle around it.
package udsnet

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/routerd/routerd/internal/rerror"
)

// Request framing (bit-exact): "<METHOD> SP <PATH> LF" then a blank LF line,
// then a single LF-terminated BODY line containing JSON or empty.
type Request struct {
	Method string
	Path   string
	Body   string
}

var validMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true, "PATCH": true,
}

// Encode renders a Request on the wire, uppercasing METHOD.
func (r Request) Encode() []byte {
	method := strings.ToUpper(r.Method)
	return []byte(fmt.Sprintf("%s %s\n\n%s\n", method, r.Path, r.Body))
}

// DecodeRequest parses a raw frame of the form "METHOD SP PATH LF LF BODY".
// METHOD is case-insensitive on input. Returns a *rerror.RequestError for any
// malformed framing.
func DecodeRequest(raw string) (Request, error) {
	headerAndRest := strings.SplitN(raw, "\n\n", 2)
	headerLine := strings.TrimRight(headerAndRest[0], "\n")
	if headerLine == "" {
		return Request{}, rerror.Request(rerror.StatusBadRequest, "empty request")
	}

	parts := strings.SplitN(headerLine, " ", 2)
	if len(parts) != 2 {
		return Request{}, rerror.Request(rerror.StatusBadRequest, "malformed request line")
	}

	method := strings.ToUpper(parts[0])
	if !validMethods[method] {
		return Request{}, rerror.Request(rerror.StatusBadRequest, "unknown method "+parts[0])
	}

	path := parts[1]
	if !strings.HasPrefix(path, "/") {
		return Request{}, rerror.Request(rerror.StatusBadRequest, "path must begin with /")
	}

	body := ""
	if len(headerAndRest) == 2 {
		body = strings.TrimRight(strings.TrimRight(headerAndRest[1], "\n"), " \t")
	}

	return Request{Method: method, Path: path, Body: body}, nil
}

// ErrorBody is the wire shape of a failure response.
type ErrorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// EncodeSuccess wraps an already-JSON-encoded body line for the wire.
func EncodeSuccess(body string) []byte {
	if body == "" {
		body = "{}"
	}
	return []byte(body + "\n")
}

// EncodeError renders the {"status":...,"message":...} error line.
func EncodeError(status rerror.RequestStatus, message string) []byte {
	b, _ := json.Marshal(ErrorBody{Status: string(status), Message: message})
	return append(b, '\n')
}
