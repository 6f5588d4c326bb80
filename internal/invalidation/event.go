// Package invalidation defines the change-event contract consumed from
// the message bus.
package invalidation

import (
	"fmt"
	"strings"
	"time"

	"github.com/claudiaareneee/viewer-backend/internal/core/model"
)

// Event announces that a dataset changed and cached views derived from
// it are stale. Producers address the event either by dataset name or
// by a geographic bounding box; the consumer maps a bbox to datasets
// through the footprint index.
type Event struct {
	Version int            `json:"version"`
	Op      string         `json:"op"`
	Dataset string         `json:"dataset,omitempty"`
	Seq     uint64         `json:"seq"`
	TS      time.Time      `json:"ts"`
	BBox    *model.GeoBBox `json:"bbox,omitempty"`
}

func (e Event) Validate() error {
	if e.Version != 1 {
		return fmt.Errorf("version must be 1")
	}
	switch e.Op {
	case "changeset", "delete":
	default:
		return fmt.Errorf("op must be changeset|delete")
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	hasDataset := strings.TrimSpace(e.Dataset) != ""
	hasBBox := e.BBox != nil
	if hasDataset == hasBBox {
		return fmt.Errorf("exactly one of dataset or bbox is required")
	}
	if hasBBox {
		bb := *e.BBox
		if bb.SRID != "EPSG:4326" {
			return fmt.Errorf("bbox.srid must be EPSG:4326")
		}
		if !(bb.X1 >= -180 && bb.X1 <= 180 && bb.X2 >= -180 && bb.X2 <= 180) {
			return fmt.Errorf("bbox longitude out of range")
		}
		if !(bb.Y1 >= -90 && bb.Y1 <= 90 && bb.Y2 >= -90 && bb.Y2 <= 90) {
			return fmt.Errorf("bbox latitude out of range")
		}
		if !(bb.X2 > bb.X1 && bb.Y2 > bb.Y1) {
			return fmt.Errorf("bbox must satisfy x2>x1 and y2>y1")
		}
	}
	return nil
}
