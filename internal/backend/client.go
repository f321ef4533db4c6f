// Package backend talks to the process-group simulator over HTTP/JSON.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/determined-ai/memberpanel/pkg/model"
	"github.com/determined-ai/memberpanel/pkg/simconfig"
)

// Default simulator routes.
const (
	DefaultInitPath   = "/init"
	DefaultCrashPath  = "/crash"
	DefaultRosterPath = "/all-processors"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 16 << 20

// Paths are the simulator routes the client calls.
type Paths struct {
	Init   string
	Crash  string
	Roster string
}

// DefaultPaths returns the routes served by the reference simulator.
func DefaultPaths() Paths {
	return Paths{Init: DefaultInitPath, Crash: DefaultCrashPath, Roster: DefaultRosterPath}
}

// Client issues single-shot requests against the simulator. It never retries.
type Client struct {
	// System dependencies.
	log *log.Entry
	cl  *http.Client

	// Configuration details.
	base  *url.URL
	paths Paths
}

// New returns a client for the simulator rooted at baseURL. A zero timeout leaves requests
// bounded only by their context.
func New(baseURL string, paths Paths, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing simulator url %q", baseURL)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("simulator url %q must include a scheme and host", baseURL)
	}

	cl := cleanhttp.DefaultPooledClient()
	cl.Timeout = timeout
	return &Client{
		log:   log.WithFields(log.Fields{"component": "simulator-client", "simulator": base.Host}),
		cl:    cl,
		base:  base,
		paths: paths,
	}, nil
}

// FetchSnapshot retrieves the full roster of processors.
func (c *Client) FetchSnapshot(ctx context.Context) (model.Snapshot, error) {
	const op = "fetching roster"
	resp, err := c.do(ctx, http.MethodGet, c.paths.Roster, nil)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, StatusError{Op: op, Code: resp.StatusCode}
	}

	var snap model.Snapshot
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&snap); err != nil {
		return nil, errors.Wrap(err, "decoding roster")
	}
	return snap, nil
}

// Init asks the simulator to start a new group with the given configuration.
func (c *Client) Init(ctx context.Context, cfg simconfig.Config) error {
	return c.command(ctx, "initializing simulation", c.paths.Init, cfg)
}

type crashRequest struct {
	ProcessorID model.ProcessorID `json:"processor_id"`
}

// Crash asks the simulator to crash one processor.
func (c *Client) Crash(ctx context.Context, id model.ProcessorID) error {
	return c.command(ctx, "crashing processor "+string(id), c.paths.Crash, crashRequest{ProcessorID: id})
}

func (c *Client) command(ctx context.Context, op, path string, body interface{}) error {
	bs, err := json.Marshal(body)
	if err != nil {
		return errors.Wrapf(err, "%s: encoding request", op)
	}

	resp, err := c.do(ctx, http.MethodPost, path, bs)
	if err != nil {
		return errors.Wrap(err, op)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return StatusError{Op: op, Code: resp.StatusCode}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	target := c.base.JoinPath(path)

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	c.log.Tracef("%s %s", method, target)
	return c.cl.Do(req)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	_ = resp.Body.Close()
}
