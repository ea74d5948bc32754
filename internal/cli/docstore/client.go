// Package docstore is the client of the document store API: one-shot writes
// and queries plus live listeners fed by server-sent events.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"ProductManager/internal/cli/api"

	"github.com/tmaxmax/go-sse"
)

// maxEventSize bounds one server-sent event.
const maxEventSize = 16 << 20

// DocumentSnapshot is one stored document.
type DocumentSnapshot struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// Query selects the documents of a collection whose Field equals Value.
type Query struct {
	Collection string
	Field      string
	Value      string
}

// ListenerRegistration stops a listener. Remove is idempotent and returns
// once no callback can run anymore.
type ListenerRegistration interface {
	Remove()
}

// Client talks to one server on behalf of one session.
type Client struct {
	baseURL string
	token   string
}

func NewClient(baseURL, token string) *Client {
	return &Client{baseURL: baseURL, token: token}
}

type addResponse struct {
	ID string `json:"id"`
}

type queryResponse struct {
	Documents []DocumentSnapshot `json:"documents"`
}

// Add stores data as a new document and returns the id the server assigned.
func (c *Client) Add(ctx context.Context, collection string, data any) (string, error) {
	resp, body, err := api.PostJSON(ctx, c.documentsURL(collection), data, c.token)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusCreated {
		return "", statusError(resp.StatusCode, body)
	}
	var ar addResponse
	if err := json.Unmarshal(body, &ar); err != nil {
		return "", fmt.Errorf("decode add response: %w", err)
	}
	return ar.ID, nil
}

// Set overwrites the document id with data, creating it when absent.
func (c *Client) Set(ctx context.Context, collection, id string, data any) error {
	resp, body, err := api.DoJSON(ctx, http.MethodPut, c.documentURL(collection, id), data, c.token)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode, body)
	}
	return nil
}

// Delete removes the document id. Deleting an absent document succeeds.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	resp, body, err := api.DoJSON(ctx, http.MethodDelete, c.documentURL(collection, id), nil, c.token)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode, body)
	}
	return nil
}

// Get runs q once.
func (c *Client) Get(ctx context.Context, q Query) ([]DocumentSnapshot, error) {
	resp, body, err := api.DoJSON(ctx, http.MethodGet, c.documentsURL(q.Collection)+"?"+filterParams(q), nil, c.token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, body)
	}
	var qr queryResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return qr.Documents, nil
}

// Listen watches q. onSnapshot receives the full matching set after every
// change; onError is called at most once and ends the listener. Callbacks run
// on the listener goroutine and must not call Remove.
func (c *Client) Listen(q Query, onSnapshot func([]DocumentSnapshot), onError func(error)) ListenerRegistration {
	ctx, cancel := context.WithCancel(context.Background())
	reg := &registration{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(reg.done)
		err := c.watch(ctx, q, onSnapshot)
		if err != nil && ctx.Err() == nil {
			onError(err)
		}
	}()
	return reg
}

type registration struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (r *registration) Remove() {
	r.cancel()
	<-r.done
}

func (c *Client) watch(ctx context.Context, q Query, onSnapshot func([]DocumentSnapshot)) error {
	u := api.Endpoint(c.baseURL, "/api/collections/"+url.PathEscape(q.Collection)+"/watch") + "?" + filterParams(q)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	api.SetToken(req, c.token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return statusError(resp.StatusCode, body)
	}

	for ev, err := range sse.Read(resp.Body, &sse.ReadConfig{MaxEventSize: maxEventSize}) {
		if err != nil {
			return err
		}
		switch ev.Type {
		case "snapshot":
			var qr queryResponse
			if err := json.Unmarshal([]byte(ev.Data), &qr); err != nil {
				return fmt.Errorf("decode snapshot: %w", err)
			}
			if qr.Documents == nil {
				qr.Documents = []DocumentSnapshot{}
			}
			onSnapshot(qr.Documents)
		case "error":
			e := &Error{}
			if err := json.Unmarshal([]byte(ev.Data), e); err != nil {
				return fmt.Errorf("decode error event: %w", err)
			}
			return e
		}
	}
	return ErrStreamClosed
}

func (c *Client) documentsURL(collection string) string {
	return api.Endpoint(c.baseURL, "/api/collections/"+url.PathEscape(collection)+"/documents")
}

func (c *Client) documentURL(collection, id string) string {
	return c.documentsURL(collection) + "/" + url.PathEscape(id)
}

func filterParams(q Query) string {
	v := url.Values{}
	v.Set("field", q.Field)
	v.Set("value", q.Value)
	return v.Encode()
}
