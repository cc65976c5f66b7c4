package mds

import "github.com/routerd/routerd/internal/rerror"

// Request is one correlated (id, method, path, body) dispatch.
type Request struct {
	ID     uint64
	Method string
	Path   string
	Body   string
}

// Response is the synchronous or (for a proxied handler) eventually-delivered
// answer to a Request, correlated by ID.
type Response struct {
	ID   uint64
	Body string
	Err  error
}

// Dispatch looks up path in tree and, for a Local handler, calls its Generic
// method or demultiplexes by req.Method. Proxy handlers are not callable
// through Dispatch: the caller must inspect Handler.Category itself and
// forward req on the named worker's channel, correlating the reply by ID.
func Dispatch(tree *Tree, req Request) Response {
	handler := tree.Lookup(req.Path)
	if handler == nil {
		return Response{ID: req.ID, Err: rerror.Request(rerror.StatusNotFound, "no handler for "+req.Path)}
	}
	if handler.Category == Proxy {
		return Response{ID: req.ID, Err: rerror.Action("path routes to a proxy handler, not local dispatch", nil)}
	}

	if handler.Generic != nil {
		return handler.Generic(req)
	}

	var fn HandlerFunc
	switch req.Method {
	case "GET":
		fn = handler.Get
	case "POST":
		fn = handler.Post
	case "PUT":
		fn = handler.Put
	case "DELETE":
		fn = handler.Delete
	case "PATCH":
		fn = handler.Patch
	}
	if fn == nil {
		return Response{ID: req.ID, Err: rerror.Request(rerror.StatusBadRequest, "method not implemented for "+req.Path)}
	}
	return fn(req)
}
