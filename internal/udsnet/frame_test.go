package udsnet

import (
	"testing"

	"github.com/routerd/routerd/internal/rerror"
	"github.com/stretchr/testify/require"
)

func TestRequestEncodeDecodeRoundTrip(t *testing.T) {
	req := Request{Method: "put", Path: "/config/route_ipv4/10.0.0.0/24", Body: `{"nexthop":"10.0.0.1"}`}
	wire := req.Encode()
	require.Equal(t, "PUT /config/route_ipv4/10.0.0.0/24\n\n{\"nexthop\":\"10.0.0.1\"}\n", string(wire))

	got, err := DecodeRequest(string(wire))
	require.NoError(t, err)
	require.Equal(t, "PUT", got.Method)
	require.Equal(t, req.Path, got.Path)
	require.Equal(t, req.Body, got.Body)
}

func TestRequestEncodeDecodeEmptyBody(t *testing.T) {
	req := Request{Method: "get", Path: "/show/ip/route"}
	got, err := DecodeRequest(string(req.Encode()))
	require.NoError(t, err)
	require.Equal(t, "", got.Body)
}

func TestDecodeRequestRejectsBadMethod(t *testing.T) {
	_, err := DecodeRequest("FROB /x\n\n\n")
	require.Error(t, err)
	var reqErr *rerror.RequestError
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, rerror.StatusBadRequest, reqErr.Status)
}

func TestDecodeRequestRejectsMissingPathSlash(t *testing.T) {
	_, err := DecodeRequest("GET show\n\n\n")
	require.Error(t, err)
}

func TestDecodeRequestRejectsMalformedLine(t *testing.T) {
	_, err := DecodeRequest("GET\n\n\n")
	require.Error(t, err)
}

func TestEncodeErrorShape(t *testing.T) {
	frame := EncodeError(rerror.StatusNotFound, "no such route")
	require.JSONEq(t, `{"status":"404","message":"no such route"}`, string(frame[:len(frame)-1]))
}

func TestEncodeSuccessDefaultsEmptyObject(t *testing.T) {
	require.Equal(t, "{}\n", string(EncodeSuccess("")))
}
