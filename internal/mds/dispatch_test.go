package mds

import (
	"testing"

	"github.com/routerd/routerd/internal/rerror"
	"github.com/stretchr/testify/require"
)

func TestDispatchGenericIgnoresMethod(t *testing.T) {
	tree := New()
	var gotMethod string
	tree.Register("/show/ip/route", &Handler{
		Generic: func(req Request) Response {
			gotMethod = req.Method
			return Response{ID: req.ID, Body: "ok"}
		},
	})

	resp := Dispatch(tree, Request{ID: 1, Method: "DELETE", Path: "/show/ip/route"})
	require.NoError(t, resp.Err)
	require.Equal(t, "DELETE", gotMethod)
	require.Equal(t, "ok", resp.Body)
}

func TestDispatchDemultiplexesByMethod(t *testing.T) {
	tree := New()
	tree.Register("/config/route_ipv4", &Handler{
		Put: func(req Request) Response { return Response{ID: req.ID, Body: "put"} },
		Get: func(req Request) Response { return Response{ID: req.ID, Body: "get"} },
	})

	putResp := Dispatch(tree, Request{ID: 1, Method: "PUT", Path: "/config/route_ipv4"})
	require.Equal(t, "put", putResp.Body)

	deleteResp := Dispatch(tree, Request{ID: 2, Method: "DELETE", Path: "/config/route_ipv4"})
	require.Error(t, deleteResp.Err)
	var reqErr *rerror.RequestError
	require.ErrorAs(t, deleteResp.Err, &reqErr)
	require.Equal(t, rerror.StatusBadRequest, reqErr.Status)
}

func TestDispatchNoHandlerIsNotFound(t *testing.T) {
	tree := New()
	resp := Dispatch(tree, Request{ID: 1, Method: "GET", Path: "/nowhere"})
	require.Error(t, resp.Err)
	var reqErr *rerror.RequestError
	require.ErrorAs(t, resp.Err, &reqErr)
	require.Equal(t, rerror.StatusNotFound, reqErr.Status)
}

func TestDispatchRejectsProxyHandlerDirectly(t *testing.T) {
	tree := New()
	tree.Register("/config/route_ipv4", &Handler{Category: Proxy, Worker: "zebra"})

	resp := Dispatch(tree, Request{ID: 1, Method: "PUT", Path: "/config/route_ipv4"})
	require.Error(t, resp.Err)
}
