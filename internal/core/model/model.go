// Package model defines core domain types shared across the service.
package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ID is a 64-bit-safe element identifier as reported by the query
// service, e.g. "0x20000000002". The zero id "0" marks "no element".
type ID string

func (id ID) Valid() bool {
	return id != "" && id != "0" && id != "0x0"
}

type ViewClass string

const (
	ViewClassSpatial ViewClass = "spatial"
	ViewClassDrawing ViewClass = "drawing"
)

// ViewDefinition names a stored camera/display configuration.
type ViewDefinition struct {
	ID    ID        `json:"id"`
	Class ViewClass `json:"class"`
}

type Vec3 [3]float64

// Matrix3 is a row-major 3x3 rotation matrix.
type Matrix3 [3][3]float64

type Camera struct {
	Origin   Vec3    `json:"origin"`
	Extents  Vec3    `json:"extents"`
	Rotation Matrix3 `json:"rotation"`
}

type SkyBox struct {
	Enabled     bool   `json:"enabled"`
	ZenithColor string `json:"zenithColor,omitempty"`
	NadirColor  string `json:"nadirColor,omitempty"`
}

type MaskMode string

const (
	MaskModels               MaskMode = "models"
	MaskIncludeSubCategories MaskMode = "includeSubCategories"
)

// PlanarClipMask hides background-map geometry by model or
// subcategory membership.
type PlanarClipMask struct {
	Mode          MaskMode `json:"mode"`
	Models        IDSet    `json:"models,omitempty"`
	SubCategories IDSet    `json:"subCategories,omitempty"`
}

type BackgroundMap struct {
	UseDepthBuffer bool            `json:"useDepthBuffer"`
	GroundBias     *float64        `json:"groundBias,omitempty"`
	Transparency   *float64        `json:"transparency,omitempty"`
	Mask           *PlanarClipMask `json:"planarClipMask,omitempty"`
}

type DisplayStyle struct {
	ShadowsEnabled bool          `json:"shadows"`
	GridEnabled    bool          `json:"grid"`
	VisibleEdges   bool          `json:"visibleEdges"`
	Sky            SkyBox        `json:"sky"`
	Map            BackgroundMap `json:"backgroundMap"`
}

// ViewState is a fully resolved view. It is exclusively owned by the
// caller of the resolver; mutation in place is expected.
type ViewState struct {
	ID          ID           `json:"id"`
	Class       ViewClass    `json:"class"`
	Is3D        bool         `json:"is3d"`
	AspectRatio float64      `json:"aspectRatio,omitempty"`
	Camera      Camera       `json:"camera"`
	Categories  IDSet        `json:"categories"`
	Models      IDSet        `json:"models"`
	Style       DisplayStyle `json:"displayStyle"`
}

func (v *ViewState) IsSpatial() bool {
	return v.Class == ViewClassSpatial
}

// IDSet is an unordered set of element identifiers.
type IDSet map[ID]struct{}

func NewIDSet(ids ...ID) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Add(ids ...ID) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

func (s IDSet) AddAll(other IDSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

func (s IDSet) Drop(ids ...ID) {
	for _, id := range ids {
		delete(s, id)
	}
}

func (s IDSet) DropAll(other IDSet) {
	for id := range other {
		delete(s, id)
	}
}

// IDs returns the members in a stable sorted order.
func (s IDSet) IDs() []ID {
	out := make([]ID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

func (s *IDSet) UnmarshalJSON(b []byte) error {
	var ids []ID
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}

// GeoBBox is a geographic footprint in EPSG:4326 (lon/lat degrees).
type GeoBBox struct {
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	X2   float64 `json:"x2"`
	Y2   float64 `json:"y2"`
	SRID string  `json:"srid"`
}

func (b GeoBBox) String() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f,%s", b.X1, b.Y1, b.X2, b.Y2, b.SRID)
}

// GeographicCRS carries the dataset's geographic reference. Vertical
// names the vertical reference system, e.g. "GEOID", and may be empty.
type GeographicCRS struct {
	Horizontal string `json:"horizontal,omitempty"`
	Vertical   string `json:"vertical,omitempty"`
}

// ResolveRequest is a validated default-view request.
type ResolveRequest struct {
	Dataset string
	// AspectRatio of the client viewport; 0 means unknown.
	AspectRatio float64
}
