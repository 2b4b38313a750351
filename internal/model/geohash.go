package model

import (
	shp "github.com/jonas-p/go-shp"

	"github.com/soupdb/soupdb/internal/errs"
)

// GeoPoint is one row of a geohash model: a 2-float point plus whatever
// attribute columns the model's declared schema adds beyond the hidden
// "point vector(2) float" rowid.
type GeoPoint struct {
	X, Y       float64
	Attributes map[string]any
}

// ImportShapefile loads every point feature from a .shp/.dbf pair into
// GeoPoints, attaching each feature's DBF attributes.
func ImportShapefile(path string) ([]GeoPoint, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.IoError, err, "open shapefile %q", path)
	}
	defer reader.Close()

	fields := reader.Fields()
	var points []GeoPoint
	for reader.Next() {
		idx, shape := reader.Shape()
		point, ok := shape.(*shp.Point)
		if !ok {
			return nil, errs.New(errs.IoError, "shapefile %q: feature %d is not a point geometry", path, idx)
		}
		attrs := make(map[string]any, len(fields))
		for fi, fld := range fields {
			attrs[fld.String()] = reader.ReadAttribute(idx, fi)
		}
		points = append(points, GeoPoint{X: point.X, Y: point.Y, Attributes: attrs})
	}
	return points, nil
}

// ExportShapefile writes points out as a point shapefile at path (producing
// the accompanying .shx/.dbf siblings go-shp manages automatically).
// Attribute columns are not round-tripped here: SoupDB's attribute schema
// is declared in the model's own tuple, which the caller is responsible for
// projecting before export.
func ExportShapefile(path string, points []GeoPoint) error {
	writer, err := shp.Create(path, shp.POINT)
	if err != nil {
		return errs.Wrap(errs.IoError, err, "create shapefile %q", path)
	}
	defer writer.Close()

	for _, p := range points {
		writer.Write(&shp.Point{X: p.X, Y: p.Y})
	}
	return nil
}
