package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/claudiaareneee/viewer-backend/internal/core/model"
	"github.com/claudiaareneee/viewer-backend/internal/core/observability"
	"github.com/claudiaareneee/viewer-backend/internal/views"
	"github.com/claudiaareneee/viewer-backend/internal/widgets"
)

// ViewService resolves the default view for a dataset.
type ViewService interface {
	DefaultView(ctx context.Context, req model.ResolveRequest) (*model.ViewState, error)
}

// validates input query params and serves the resolved default view
func HandleDefaultView(logger *slog.Logger, svc ViewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

		req, err := ParseResolveRequest(r)
		if err != nil {
			http.Error(sw, err.Error(), http.StatusBadRequest)
			observability.ObserveHTTP(r.Method, "/view/default", http.StatusBadRequest, time.Since(start).Seconds())
			return
		}

		vs, err := svc.DefaultView(r.Context(), req)
		switch {
		case errors.Is(err, views.ErrNoViewDefinition):
			http.Error(sw, "no view definition in dataset", http.StatusNotFound)
		case err != nil:
			logger.Error("default view resolution failed", "dataset", req.Dataset, "err", err)
			http.Error(sw, "upstream query failed", http.StatusBadGateway)
		default:
			writeJSON(sw, vs)
		}
		observability.ObserveHTTP(r.Method, "/view/default", sw.code, time.Since(start).Seconds())
	}
}

// serves the widgets registered providers contribute to a panel slot
func HandleWidgets(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

		loc, sec, err := ParseSlot(r)
		if err != nil {
			http.Error(sw, err.Error(), http.StatusBadRequest)
			observability.ObserveHTTP(r.Method, "/ui/widgets", http.StatusBadRequest, time.Since(start).Seconds())
			return
		}

		out := struct {
			Widgets []widgets.Widget `json:"widgets"`
		}{Widgets: widgets.At(loc, sec)}
		writeJSON(sw, out)
		observability.ObserveHTTP(r.Method, "/ui/widgets", sw.code, time.Since(start).Seconds())
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func ParseResolveRequest(r *http.Request) (model.ResolveRequest, error) {
	dataset := strings.TrimSpace(r.URL.Query().Get("dataset"))
	if dataset == "" {
		return model.ResolveRequest{}, errors.New("missing required parameter: dataset")
	}

	rawW := strings.TrimSpace(r.URL.Query().Get("width"))
	rawH := strings.TrimSpace(r.URL.Query().Get("height"))
	if (rawW == "") != (rawH == "") {
		return model.ResolveRequest{}, errors.New("width and height must be supplied together")
	}

	var aspect float64
	if rawW != "" {
		width, err := parsePixels("width", rawW)
		if err != nil {
			return model.ResolveRequest{}, err
		}
		height, err := parsePixels("height", rawH)
		if err != nil {
			return model.ResolveRequest{}, err
		}
		aspect = float64(width) / float64(height)
	}

	return model.ResolveRequest{Dataset: dataset, AspectRatio: aspect}, nil
}

func ParseSlot(r *http.Request) (widgets.Location, widgets.Section, error) {
	loc := widgets.Location(strings.TrimSpace(r.URL.Query().Get("location")))
	switch loc {
	case widgets.LocationTop, widgets.LocationBottom, widgets.LocationLeft, widgets.LocationRight:
	case "":
		return "", "", errors.New("missing required parameter: location")
	default:
		return "", "", fmt.Errorf("location must be top|bottom|left|right (got %q)", loc)
	}

	sec := widgets.Section(strings.TrimSpace(r.URL.Query().Get("section")))
	switch sec {
	case widgets.SectionStart, widgets.SectionEnd:
	case "":
		return "", "", errors.New("missing required parameter: section")
	default:
		return "", "", fmt.Errorf("section must be start|end (got %q)", sec)
	}

	return loc, sec, nil
}

func parsePixels(name, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: parse int: %w", name, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive (got %d)", name, n)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
