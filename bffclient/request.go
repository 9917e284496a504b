package bffclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// APIRequest is a generic request against the backend API.
type APIRequest struct {
	// HTTP method as a string (eg "GET") (required)
	Method string

	// Backend path, starting with "/" (required)
	Path string

	// Optional request body (may be nil). If provided, a 'Content-Type'
	// header should be set.
	Body io.Reader

	// Optional function returning a fresh reader for the request body; used
	// for retries. Strongly recommended if Body is defined.
	GetBody func() (io.ReadCloser, error)

	// Optional query parameters (field may be nil).
	QueryParams url.Values

	// Optional HTTP headers (field may be nil). Only the first value is used
	// for each key ("Set" behavior).
	Headers http.Header
}

// NewAPIRequest initializes a request struct. Headers and QueryParams are
// initialized so they can be manipulated immediately.
//
// If body is provided (it can be nil), tries to turn it into the most
// retryable form: refresh-and-retry means a request may be issued more than
// once, and the body must be replayable each time.
func NewAPIRequest(method, path string, body io.Reader) *APIRequest {
	req := APIRequest{
		Method:      method,
		Path:        path,
		Headers:     map[string][]string{},
		QueryParams: map[string][]string{},
	}

	if body != nil {
		// http.NewRequestWithContext already handles GetBody for types like
		// bytes.Buffer and strings.Reader. Add io.Seeker support here, for
		// things like files on disk.
		switch v := body.(type) {
		case io.Seeker:
			req.Body = io.NopCloser(body)
			req.GetBody = func() (io.ReadCloser, error) {
				v.Seek(0, 0)
				return io.NopCloser(body), nil
			}
		default:
			req.Body = body
		}
	}
	return &req
}

// HTTPRequest creates an [http.Request] for this API request.
//
// `host` should be a URL prefix: scheme, hostname, port (required).
//
// `clientHeaders`, if provided, are client-level defaults, clobbered by any
// request-level header values. When GetBody is set it is preferred over
// Body, so repeated calls each produce a request with a fresh body.
func (r *APIRequest) HTTPRequest(ctx context.Context, host string, clientHeaders http.Header) (*http.Request, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, fmt.Errorf("empty hostname in host URL")
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("empty scheme in host URL")
	}
	if r.Path == "" || !strings.HasPrefix(r.Path, "/") {
		return nil, fmt.Errorf("request path must start with '/'")
	}
	u.Path = r.Path
	u.RawQuery = ""
	if len(r.QueryParams) > 0 {
		u.RawQuery = r.QueryParams.Encode()
	}

	body := r.Body
	if r.GetBody != nil {
		body, err = r.GetBody()
		if err != nil {
			return nil, fmt.Errorf("request body not replayable: %w", err)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, r.Method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if r.GetBody != nil {
		httpReq.GetBody = r.GetBody
	}

	// first set default headers...
	for k := range clientHeaders {
		httpReq.Header.Set(k, clientHeaders.Get(k))
	}
	// ... then request-specific take priority (overwrite)
	for k := range r.Headers {
		httpReq.Header.Set(k, r.Headers.Get(k))
	}

	return httpReq, nil
}
