package viewer

import (
	"context"
	"testing"
	"time"

	"github.com/claudiaareneee/viewer-backend/internal/cache/memory"
	"github.com/claudiaareneee/viewer-backend/internal/cache/viewstore"
	"github.com/claudiaareneee/viewer-backend/internal/core/model"
	"github.com/claudiaareneee/viewer-backend/internal/imodel"
	"github.com/claudiaareneee/viewer-backend/internal/views"
)

type stubDataset struct {
	name    string
	extents *model.GeoBBox
}

func (d stubDataset) Name() string                        { return d.name }
func (d stubDataset) IsOpen() bool                        { return true }
func (d stubDataset) GeographicCRS() *model.GeographicCRS { return nil }
func (d stubDataset) ProjectExtents() *model.GeoBBox      { return d.extents }
func (d stubDataset) Query(context.Context, string, ...any) ([]imodel.Row, error) {
	return nil, nil
}
func (d stubDataset) DefaultViewID(context.Context) (model.ID, error) { return "", nil }
func (d stubDataset) LoadView(context.Context, model.ID) (*model.ViewState, error) {
	return nil, nil
}

type stubOpener struct {
	ds    imodel.Dataset
	opens int
}

func (o *stubOpener) Open(_ context.Context, _ string) (imodel.Dataset, error) {
	o.opens++
	return o.ds, nil
}

type stubResolver struct {
	calls int
	view  *model.ViewState
}

func (r *stubResolver) ResolveDefaultView(_ context.Context, _ imodel.Dataset, _ views.Options) (*model.ViewState, error) {
	r.calls++
	return r.view, nil
}

func newTestService(t *testing.T) (*Service, *stubOpener, *stubResolver) {
	t.Helper()
	c, err := memory.New(128)
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	opener := &stubOpener{ds: stubDataset{name: "Stadium"}}
	resolver := &stubResolver{view: &model.ViewState{
		ID:         "0x20",
		Class:      model.ViewClassSpatial,
		Is3D:       true,
		Categories: model.NewIDSet("0x1"),
		Models:     model.NewIDSet("0x2"),
	}}
	svc := New(nil, opener, resolver, viewstore.New(c, time.Minute), nil, time.Minute)
	return svc, opener, resolver
}

func TestDefaultView_ResolvesAndCaches(t *testing.T) {
	svc, opener, resolver := newTestService(t)
	ctx := context.Background()
	req := model.ResolveRequest{Dataset: "Stadium", AspectRatio: 1.5}

	vs, err := svc.DefaultView(ctx, req)
	if err != nil {
		t.Fatalf("DefaultView: %v", err)
	}
	if vs.ID != "0x20" {
		t.Fatalf("ID=%q", vs.ID)
	}
	if opener.opens != 1 || resolver.calls != 1 {
		t.Fatalf("opens=%d calls=%d", opener.opens, resolver.calls)
	}

	// second request is served from the cache
	vs2, err := svc.DefaultView(ctx, req)
	if err != nil {
		t.Fatalf("second DefaultView: %v", err)
	}
	if vs2.ID != "0x20" {
		t.Fatalf("cached ID=%q", vs2.ID)
	}
	if opener.opens != 1 || resolver.calls != 1 {
		t.Fatalf("cache miss on repeat: opens=%d calls=%d", opener.opens, resolver.calls)
	}
}

func TestDefaultView_AspectRatioKeysSeparately(t *testing.T) {
	svc, _, resolver := newTestService(t)
	ctx := context.Background()

	if _, err := svc.DefaultView(ctx, model.ResolveRequest{Dataset: "Stadium", AspectRatio: 1.5}); err != nil {
		t.Fatalf("DefaultView: %v", err)
	}
	if _, err := svc.DefaultView(ctx, model.ResolveRequest{Dataset: "Stadium", AspectRatio: 2.0}); err != nil {
		t.Fatalf("DefaultView: %v", err)
	}
	if resolver.calls != 2 {
		t.Fatalf("calls=%d, want distinct cache entries per aspect", resolver.calls)
	}
}

func TestDefaultView_NilStoreStillResolves(t *testing.T) {
	opener := &stubOpener{ds: stubDataset{name: "Stadium"}}
	resolver := &stubResolver{view: &model.ViewState{ID: "0x20"}}
	svc := New(nil, opener, resolver, nil, nil, time.Minute)

	for range 2 {
		if _, err := svc.DefaultView(context.Background(), model.ResolveRequest{Dataset: "Stadium"}); err != nil {
			t.Fatalf("DefaultView: %v", err)
		}
	}
	if resolver.calls != 2 {
		t.Fatalf("calls=%d, want resolve on every request without a store", resolver.calls)
	}
}
