package engine

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/paulmach/orb/geojson"

	"mapdash/internal/httpx"
)

// Source loads the content of a VectorLayer. Load may block; callers run it off
// the UI loop.
type Source interface {
	Load(ctx context.Context) (*geojson.FeatureCollection, error)
	String() string
}

// FileSource reads a GeoJSON document from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) (*geojson.FeatureCollection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read geojson %s: %w", s.Path, err)
	}
	fc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse geojson %s: %w", s.Path, err)
	}
	return fc, nil
}

func (s FileSource) String() string { return s.Path }

// HTTPSource fetches a GeoJSON document over HTTP.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s HTTPSource) Load(ctx context.Context) (*geojson.FeatureCollection, error) {
	data, err := httpx.GetGeoJSON(ctx, s.Client, s.URL)
	if err != nil {
		return nil, err
	}
	fc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse geojson %s: %w", s.URL, err)
	}
	return fc, nil
}

func (s HTTPSource) String() string { return s.URL }

// StaticSource serves an in-memory collection.
type StaticSource struct {
	Name string
	FC   *geojson.FeatureCollection
}

func (s StaticSource) Load(ctx context.Context) (*geojson.FeatureCollection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.FC, nil
}

func (s StaticSource) String() string {
	if s.Name == "" {
		return "static"
	}
	return s.Name
}

// Decode accepts a FeatureCollection or a single Feature document.
func Decode(data []byte) (*geojson.FeatureCollection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err == nil && fc.Type == "FeatureCollection" {
		return fc, nil
	}
	f, ferr := geojson.UnmarshalFeature(data)
	if ferr == nil && f.Type == "Feature" {
		out := geojson.NewFeatureCollection()
		out.Append(f)
		return out, nil
	}
	if err == nil {
		err = fmt.Errorf("unsupported geojson type %q", fc.Type)
	}
	return nil, err
}
