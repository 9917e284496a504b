package bffclient

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"

	"github.com/tijs/atproto-bff-go/bffauth"
)

// FilePart is one file attachment in a multipart upload.
type FilePart struct {
	FieldName   string
	Filename    string
	ContentType string
	Data        []byte
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// PostMultipart issues a multipart/form-data POST with one part per text
// field and one part per file attachment, and returns the response body
// bytes.
//
// Uploads require credentials up front and skip the proactive refresh used
// by ordinary requests; on 401 the session is refreshed and the upload
// retried exactly once, with no backoff.
func (c *APIClient) PostMultipart(ctx context.Context, path string, fields map[string]string, files []FilePart) ([]byte, error) {
	log := c.logger().With("category", "network")

	creds, err := c.Sessions.Store.Load(ctx)
	if err != nil {
		return nil, &bffauth.StorageError{Op: "load", Err: err}
	}
	if creds == nil {
		return nil, fmt.Errorf("%w: no stored credentials", bffauth.ErrInvalidCredentials)
	}

	body, contentType, err := buildMultipartBody(fields, files)
	if err != nil {
		return nil, err
	}

	issue := func() (*http.Response, error) {
		req := NewAPIRequest(http.MethodPost, path, bytes.NewReader(body))
		req.Headers.Set("Content-Type", contentType)
		httpReq, err := req.HTTPRequest(ctx, c.Config.AppURL, c.defaultHeaders())
		if err != nil {
			return nil, err
		}
		resp, err := c.httpClient().Do(httpReq)
		if err != nil {
			return nil, &bffauth.NetworkError{Detail: path, Err: err}
		}
		return resp, nil
	}

	resp, err := issue()
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		log.Info("upload unauthorized, refreshing session", "path", path)
		if _, err := c.Sessions.RefreshSession(ctx); err != nil {
			return nil, err
		}
		resp, err = issue()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: upload unauthorized after refresh", bffauth.ErrInvalidCredentials)
		}
	}

	return readResponse(resp, path)
}

func buildMultipartBody(fields map[string]string, files []FilePart) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	// deterministic part order
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := w.WriteField(name, fields[name]); err != nil {
			return nil, "", err
		}
	}

	for _, f := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(f.FieldName), quoteEscaper.Replace(f.Filename)))
		if f.ContentType != "" {
			hdr.Set("Content-Type", f.ContentType)
		}
		part, err := w.CreatePart(hdr)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
