// Package imodel provides access to opened iModel datasets through
// the external query service.
package imodel

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/claudiaareneee/viewer-backend/internal/core/model"
)

// Row is one result row of an ECSQL query, keyed by column alias.
type Row map[string]string

// Dataset is a handle to an open data source. Query must return an
// empty row set, not an error, when the dataset is closed.
type Dataset interface {
	Name() string
	IsOpen() bool
	GeographicCRS() *model.GeographicCRS
	ProjectExtents() *model.GeoBBox

	Query(ctx context.Context, ecsql string, bindings ...any) ([]Row, error)
	DefaultViewID(ctx context.Context) (model.ID, error)
	LoadView(ctx context.Context, id model.ID) (*model.ViewState, error)
}

// Opener materializes dataset handles by identifier.
type Opener interface {
	Open(ctx context.Context, dataset string) (Dataset, error)
}

type serviceOpener struct {
	exec *Executor
}

func NewOpener(exec *Executor) Opener {
	return &serviceOpener{exec: exec}
}

func (o *serviceOpener) Open(ctx context.Context, dataset string) (Dataset, error) {
	info, err := o.exec.FetchDatasetInfo(ctx, dataset)
	if err != nil {
		return nil, fmt.Errorf("open dataset %q: %w", dataset, err)
	}
	c := &Connection{
		id:      dataset,
		name:    info.Name,
		crs:     info.CRS,
		extents: info.Extents,
		exec:    o.exec,
	}
	return c, nil
}

// Connection is a Dataset backed by the query service.
type Connection struct {
	id      string
	name    string
	crs     *model.GeographicCRS
	extents *model.GeoBBox
	exec    *Executor
	closed  atomic.Bool
}

func (c *Connection) Name() string { return c.name }

func (c *Connection) IsOpen() bool { return !c.closed.Load() }

func (c *Connection) Close() { c.closed.Store(true) }

func (c *Connection) GeographicCRS() *model.GeographicCRS { return c.crs }

func (c *Connection) ProjectExtents() *model.GeoBBox { return c.extents }

func (c *Connection) Query(ctx context.Context, ecsql string, bindings ...any) ([]Row, error) {
	if !c.IsOpen() {
		return nil, nil
	}
	return c.exec.QueryRows(ctx, c.id, ecsql, bindings)
}

func (c *Connection) DefaultViewID(ctx context.Context) (model.ID, error) {
	rows, err := c.Query(ctx, ecsqlDefaultViewID)
	if err != nil {
		return "", fmt.Errorf("default view id: %w", err)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return model.ID(rows[0]["val"]), nil
}

func (c *Connection) LoadView(ctx context.Context, id model.ID) (*model.ViewState, error) {
	if !c.IsOpen() {
		return nil, fmt.Errorf("load view %s: dataset %q is closed", id, c.id)
	}
	return c.exec.FetchView(ctx, c.id, id)
}
