// Package schema decodes the wire format of spec.md §6.1 into the
// in-memory detection model (internal/detect), using json-iterator for
// the same fast-path decoding the rest of the pack relies on rather than
// encoding/json.
package schema

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/cps-atlas/strem/internal/detect"
	"github.com/cps-atlas/strem/internal/geom"
	serrors "github.com/cps-atlas/strem/spre/errors"
	"github.com/cps-atlas/strem/spre/token"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	sampleType = "@stremf/sample/detection"
	aabbType   = "@stremf/bbox/aabb"
	obbType    = "@stremf/bbox/obb"
)

type wireDoc struct {
	Version string      `json:"version"`
	Frames  []wireFrame `json:"frames"`
}

type wireFrame struct {
	Index   int          `json:"index"`
	Samples []wireSample `json:"samples"`
}

type wireSample struct {
	Type        string           `json:"type"`
	Channel     string           `json:"channel"`
	Image       wireImage        `json:"image"`
	Annotations []wireAnnotation `json:"annotations"`
}

type wireImage struct {
	Path       string `json:"path"`
	Dimensions struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"dimensions"`
}

type wireAnnotation struct {
	Class string        `json:"class"`
	Score float64       `json:"score"`
	BBox  wireBBoxEnvelope `json:"bbox"`
}

// wireBBoxEnvelope is decoded in two passes: first the discriminant
// Type, then, knowing the shape, the matching region. json-iterator
// happily re-decodes the same bytes twice without extra bookkeeping.
type wireBBoxEnvelope struct {
	Type   string          `json:"type"`
	Region jsoniter.RawMessage `json:"region"`
}

type wireRegion struct {
	Center     struct{ X, Y float64 } `json:"center"`
	Dimensions struct{ W, H float64 } `json:"dimensions"`
	Rotation   float64                `json:"rotation"`
}

// Decode parses a single input file's bytes into a detect.Stream,
// aggregating every schema violation it finds rather than stopping at
// the first (spec.md §7, SchemaError). Unknown bbox type tags and
// unparsable JSON are both fatal for the whole document.
func Decode(path string, data []byte) (detect.Stream, error) {
	var doc wireDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return detect.Stream{}, serrors.Newf(serrors.SchemaError, token.NoPos, "%s: invalid JSON: %v", path, err)
	}

	var errs serrors.List
	frames := make([]detect.Frame, 0, len(doc.Frames))
	for _, wf := range doc.Frames {
		samples := make([]detect.Sample, 0, len(wf.Samples))
		for _, ws := range wf.Samples {
			if ws.Type != sampleType {
				errs.Add(serrors.Newf(serrors.SchemaError, token.NoPos, "%s: frame %d: unknown sample type %q", path, wf.Index, ws.Type))
				continue
			}
			anns := make([]detect.Annotation, 0, len(ws.Annotations))
			for _, wa := range ws.Annotations {
				box, err := decodeBBox(wa.BBox)
				if err != nil {
					errs.Add(serrors.Newf(serrors.SchemaError, token.NoPos, "%s: frame %d: %v", path, wf.Index, err))
					continue
				}
				anns = append(anns, detect.Annotation{Class: wa.Class, Score: wa.Score, BBox: box})
			}
			samples = append(samples, detect.Sample{
				Channel: ws.Channel,
				Image: detect.Image{
					Path:   ws.Image.Path,
					Width:  ws.Image.Dimensions.Width,
					Height: ws.Image.Dimensions.Height,
				},
				Annotations: anns,
			})
		}
		frames = append(frames, detect.Frame{Index: wf.Index, Samples: samples})
	}

	if err := errs.Err(); err != nil {
		return detect.Stream{}, err
	}
	return detect.Stream{Frames: frames}, nil
}

func decodeBBox(env wireBBoxEnvelope) (geom.Box, error) {
	var r wireRegion
	if len(env.Region) > 0 {
		if err := json.Unmarshal(env.Region, &r); err != nil {
			return geom.Box{}, serrors.Newf(serrors.SchemaError, token.NoPos, "invalid bbox region: %v", err)
		}
	}
	switch env.Type {
	case aabbType:
		return geom.AABB(r.Center.X, r.Center.Y, r.Dimensions.W, r.Dimensions.H), nil
	case obbType:
		return geom.OBB(r.Center.X, r.Center.Y, r.Dimensions.W, r.Dimensions.H, r.Rotation), nil
	default:
		return geom.Box{}, serrors.Newf(serrors.SchemaError, token.NoPos, "unknown bbox type %q", env.Type)
	}
}

// DecodeAll concatenates the streams of multiple input files in the
// order given, preserving each file's frame indices as-is (spec.md
// §6.1: "the matcher does not renumber").
func DecodeAll(paths []string, reader func(string) ([]byte, error)) (detect.Stream, error) {
	var errs serrors.List
	var all detect.Stream
	for _, p := range paths {
		data, err := reader(p)
		if err != nil {
			errs.Add(serrors.Newf(serrors.IOError, token.NoPos, "%s: %v", p, err))
			continue
		}
		s, err := Decode(p, data)
		if err != nil {
			switch e := err.(type) {
			case serrors.List:
				errs = append(errs, e...)
			case *serrors.Error:
				errs.Add(e)
			}
			continue
		}
		all.Frames = append(all.Frames, s.Frames...)
	}
	if err := errs.Err(); err != nil {
		return detect.Stream{}, err
	}
	return all, nil
}
