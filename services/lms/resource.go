package lms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/volatiletech/null/v8"

	"github.com/shulehq/shule-admin/core"
	"github.com/shulehq/shule-admin/storage/cache"
)

// Pagination describes one page of a listing. It is recomputed by the API on
// every list call and passed through untouched.
type Pagination struct {
	CurrentPage  int       `json:"current_page"`
	LastPage     int       `json:"last_page"`
	PerPage      int       `json:"per_page"`
	Total        int       `json:"total"`
	From         null.Int  `json:"from,omitempty"`
	To           null.Int  `json:"to,omitempty"`
	HasMorePages null.Bool `json:"has_more_pages,omitempty"`
}

// ListResult is one page of records plus its pagination descriptor.
type ListResult[T any] struct {
	Records    []T        `json:"records"`
	Pagination Pagination `json:"pagination"`
}

// Resource is the CRUD client for one resource type ("courses", "groups"...).
// Every operation resolves the caller's credential first and fails
// unauthenticated before anything leaves the process. Listings are served
// through the shared tagged cache; every successful mutation drops the
// resource's whole list tag before returning.
type Resource[T any] struct {
	name    string
	listTag string
	client  *Client
	cache   *cache.Cache
}

func NewResource[T any](client *Client, store *cache.Cache, name string) *Resource[T] {
	return &Resource[T]{
		name:    name,
		listTag: name + "-list",
		client:  client,
		cache:   store,
	}
}

// ListTag returns the cache tag covering this resource's listings.
func (r *Resource[T]) ListTag() string { return r.listTag }

// List fetches one page, narrowed by filters. Filter values that are empty
// strings are dropped (callers build filters via the models' QueryFilter, but
// raw values passed here get the same treatment).
func (r *Resource[T]) List(ctx context.Context, page int, filters url.Values) (ListResult[T], error) {
	var zero ListResult[T]

	token, err := r.client.token(ctx)
	if err != nil {
		return zero, err
	}

	if page < 1 {
		page = 1
	}
	query := make(url.Values)
	for name, vals := range filters {
		for _, val := range vals {
			if val != "" {
				query.Add(name, val)
			}
		}
	}
	query.Set("page", strconv.Itoa(page))
	key := query.Encode() // url.Values encodes sorted by key: stable cache keys

	v, err := r.cache.GetOrLoad(r.listTag, key, func() (interface{}, error) {
		env, err := r.client.call(ctx, token, http.MethodGet, r.name, query, "", nil)
		if err != nil {
			return nil, err
		}
		return r.decodeList(env)
	})
	if err != nil {
		return zero, err
	}
	return v.(ListResult[T]), nil
}

// Get fetches one record by ID; never cached.
func (r *Resource[T]) Get(ctx context.Context, id int) (T, error) {
	var zero T

	token, err := r.client.token(ctx)
	if err != nil {
		return zero, err
	}

	env, err := r.client.call(ctx, token, http.MethodGet, fmt.Sprintf("%s/%d", r.name, id), nil, "", nil)
	if err != nil {
		return zero, err
	}
	return r.decodeRecord(env)
}

// Create submits a new record. A 422 comes back as *core.ValidationError with
// the API's field messages; any success invalidates the list tag before
// returning, so the next listing re-fetches.
func (r *Resource[T]) Create(ctx context.Context, p core.Payload) (T, error) {
	var zero T

	token, err := r.client.token(ctx)
	if err != nil {
		return zero, err
	}

	body, contentType, err := encodePayload(p, "")
	if err != nil {
		return zero, err
	}
	env, err := r.client.call(ctx, token, http.MethodPost, r.name, nil, contentType, body)
	if err != nil {
		return zero, err
	}
	r.cache.Invalidate(r.listTag)
	return r.decodeRecord(env)
}

// Update applies a partial change to an existing record. Multipart payloads
// go as POST /{id} with a `_method=PATCH` override (the API's convention for
// file uploads); plain payloads use a real PATCH. Failure details are
// propagated verbatim, never collapsed into a generic message.
func (r *Resource[T]) Update(ctx context.Context, id int, p core.Payload) (T, error) {
	var zero T

	token, err := r.client.token(ctx)
	if err != nil {
		return zero, err
	}

	path := fmt.Sprintf("%s/%d", r.name, id)
	var env *envelope
	if p.HasAttachments() {
		body, contentType, err := encodeMultipart(p, http.MethodPatch)
		if err != nil {
			return zero, err
		}
		env, err = r.client.call(ctx, token, http.MethodPost, path, nil, contentType, body)
		if err != nil {
			return zero, err
		}
	} else {
		body, contentType, err := encodeJSON(p)
		if err != nil {
			return zero, err
		}
		env, err = r.client.call(ctx, token, http.MethodPatch, path, nil, contentType, body)
		if err != nil {
			return zero, err
		}
	}
	r.cache.Invalidate(r.listTag)
	return r.decodeRecord(env)
}

// Delete removes a record and invalidates the list tag.
func (r *Resource[T]) Delete(ctx context.Context, id int) error {
	token, err := r.client.token(ctx)
	if err != nil {
		return err
	}

	if _, err := r.client.call(ctx, token, http.MethodDelete, fmt.Sprintf("%s/%d", r.name, id), nil, "", nil); err != nil {
		return err
	}
	r.cache.Invalidate(r.listTag)
	return nil
}

// decodeList unpacks `data: {<resource>: [...], pagination: {...}}`.
func (r *Resource[T]) decodeList(env *envelope) (ListResult[T], error) {
	var out ListResult[T]
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(env.Data, &raw); err != nil {
		return out, core.NewAPIError(env.status, "unexpected response from server")
	}
	if records, ok := raw[r.name]; ok {
		if err := json.Unmarshal(records, &out.Records); err != nil {
			return out, core.NewAPIError(env.status, "unexpected response from server")
		}
	}
	if pagination, ok := raw["pagination"]; ok {
		if err := json.Unmarshal(pagination, &out.Pagination); err != nil {
			return out, core.NewAPIError(env.status, "unexpected response from server")
		}
	}
	return out, nil
}

// decodeRecord unpacks `data: <record>`.
func (r *Resource[T]) decodeRecord(env *envelope) (T, error) {
	var rec T
	if len(env.Data) == 0 {
		return rec, nil
	}
	if err := json.Unmarshal(env.Data, &rec); err != nil {
		return rec, core.NewAPIError(env.status, "unexpected response from server")
	}
	return rec, nil
}
