package imodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/claudiaareneee/viewer-backend/internal/core/model"
	"github.com/claudiaareneee/viewer-backend/internal/core/observability"
)

const upstreamName = "query-service"

// Executor issues ECSQL queries and view/dataset fetches against the
// query service over HTTP.
type Executor struct {
	log      *slog.Logger
	client   *http.Client
	base     *url.URL
	startNow func() time.Time // for tests
}

func NewExecutor(log *slog.Logger, client *http.Client, baseURL string) (*Executor, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse query service url: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Executor{
		log:      log,
		client:   client,
		base:     u,
		startNow: time.Now,
	}, nil
}

// DatasetInfo is the metadata the query service reports for an iModel.
type DatasetInfo struct {
	Name    string               `json:"name"`
	CRS     *model.GeographicCRS `json:"geographicCRS,omitempty"`
	Extents *model.GeoBBox       `json:"projectExtents,omitempty"`
}

type queryBody struct {
	ECSQL    string `json:"ecsql"`
	Bindings []any  `json:"bindings,omitempty"`
}

type queryResult struct {
	Rows []Row `json:"rows"`
}

func (e *Executor) QueryRows(ctx context.Context, dataset, ecsql string, bindings []any) ([]Row, error) {
	body, err := json.Marshal(queryBody{ECSQL: ecsql, Bindings: bindings})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	u := e.base.JoinPath("imodels", url.PathEscape(dataset), "query")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	raw, err := e.do(req)
	if err != nil {
		return nil, err
	}

	var res queryResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	e.log.Debug("ecsql query", "dataset", dataset, "rows", len(res.Rows))
	return res.Rows, nil
}

func (e *Executor) FetchView(ctx context.Context, dataset string, view model.ID) (*model.ViewState, error) {
	u := e.base.JoinPath("imodels", url.PathEscape(dataset), "views", string(view))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	raw, err := e.do(req)
	if err != nil {
		return nil, err
	}

	var vs model.ViewState
	if err := json.Unmarshal(raw, &vs); err != nil {
		return nil, fmt.Errorf("decode view state: %w", err)
	}
	if vs.Categories == nil {
		vs.Categories = model.IDSet{}
	}
	if vs.Models == nil {
		vs.Models = model.IDSet{}
	}
	return &vs, nil
}

func (e *Executor) FetchDatasetInfo(ctx context.Context, dataset string) (*DatasetInfo, error) {
	u := e.base.JoinPath("imodels", url.PathEscape(dataset))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	raw, err := e.do(req)
	if err != nil {
		return nil, err
	}

	var info DatasetInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("decode dataset info: %w", err)
	}
	return &info, nil
}

func (e *Executor) do(req *http.Request) ([]byte, error) {
	start := e.startNow()
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	observability.ObserveUpstreamLatency(upstreamName, time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return nil, fmt.Errorf("upstream status %d: %s", resp.StatusCode, string(b))
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return b, nil
}
