// Package lms is the client for the remote LMS REST API: the admin
// front-end's only source of records. All reads and writes go through here,
// carrying the caller's bearer token and returning either typed data, a
// field-level validation error, or a single normalized failure.
package lms

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/shulehq/shule-admin/core"
	"github.com/shulehq/shule-admin/core/session"
)

type Client struct {
	baseURL  *url.URL
	http     *http.Client
	resolver *session.Resolver
	logger   core.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the transport timeout (mainly for tests).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(logger core.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func NewClient(baseURL string, resolver *session.Resolver, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing base URL %q", baseURL)
	}
	c := &Client{
		baseURL:  u,
		http:     &http.Client{Timeout: core.Conf.API.Timeout},
		resolver: resolver,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// token resolves the caller's bearer token; it is consulted immediately
// before every outbound request, never cached across calls.
func (c *Client) token(ctx context.Context) (string, error) {
	return c.resolver.Resolve(ctx)
}

// call performs one request and normalizes its outcome: a decoded envelope on
// success, *core.ValidationError on 422, *core.APIError otherwise (Code 0
// when the server was never reached). Raw transport errors do not escape.
func (c *Client) call(ctx context.Context, token, method, path string, query url.Values, contentType string, body io.Reader) (*envelope, error) {
	u := *c.baseURL
	u.Path = u.Path + "/" + strings.Trim(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, errors.Wrapf(err, "building %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn(fmt.Sprintf("lms: %s %s unreachable", method, path), err)
		}
		return nil, core.NewAPIError(0, err.Error())
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}
	if err := normalize(env); err != nil {
		return nil, err
	}
	return env, nil
}

func encodeJSON(p core.Payload) (io.Reader, string, error) {
	body, err := marshalFields(p)
	if err != nil {
		return nil, "", errors.Wrap(err, "encoding payload")
	}
	return bytes.NewReader(body), "application/json", nil
}

// encodeMultipart renders a payload as a multipart form. methodOverride, when
// set, is sent as the `_method` field so the API treats the POST as a PATCH.
func encodeMultipart(p core.Payload, methodOverride string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if methodOverride != "" {
		if err := w.WriteField("_method", methodOverride); err != nil {
			return nil, "", errors.Wrap(err, "writing method override")
		}
	}
	for _, name := range p.FieldNames() {
		if err := w.WriteField(name, p.FormValue(name)); err != nil {
			return nil, "", errors.Wrapf(err, "writing field %q", name)
		}
	}
	for _, att := range p.Attachments {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, att.Field, att.Filename))
		if att.ContentType != "" {
			hdr.Set("Content-Type", att.ContentType)
		}
		part, err := w.CreatePart(hdr)
		if err != nil {
			return nil, "", errors.Wrapf(err, "creating part %q", att.Field)
		}
		if att.Content != nil {
			if _, err := part.Write(att.Content.Bytes()); err != nil {
				return nil, "", errors.Wrapf(err, "writing part %q", att.Field)
			}
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "closing multipart body")
	}
	return &buf, w.FormDataContentType(), nil
}

// encodePayload picks the wire encoding: multipart when an attachment is
// present, JSON otherwise.
func encodePayload(p core.Payload, methodOverride string) (io.Reader, string, error) {
	if p.HasAttachments() {
		return encodeMultipart(p, methodOverride)
	}
	return encodeJSON(p)
}
