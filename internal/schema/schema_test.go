package schema

import (
	"strings"
	"testing"

	serrors "github.com/cps-atlas/strem/spre/errors"
)

const twoFrameDoc = `{
  "version": "1",
  "frames": [
    {
      "index": 0,
      "samples": [
        {
          "type": "@stremf/sample/detection",
          "channel": "front",
          "image": {"path": "f0.png", "dimensions": {"width": 640, "height": 480}},
          "annotations": [
            {"class": "car", "score": 0.9, "bbox": {"type": "@stremf/bbox/aabb", "region": {"center": {"x": 10, "y": 10}, "dimensions": {"w": 20, "h": 20}}}}
          ]
        }
      ]
    },
    {
      "index": 1,
      "samples": [
        {
          "type": "@stremf/sample/detection",
          "channel": "front",
          "image": {"path": "f1.png", "dimensions": {"width": 640, "height": 480}},
          "annotations": [
            {"class": "car", "score": 0.8, "bbox": {"type": "@stremf/bbox/obb", "region": {"center": {"x": 1, "y": 2}, "dimensions": {"w": 3, "h": 4}, "rotation": 0.5}}}
          ]
        }
      ]
    }
  ]
}`

func TestDecodeBasic(t *testing.T) {
	s, err := Decode("doc.json", []byte(twoFrameDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(s.Frames))
	}
	front := s.Channel("front")
	if len(front) != 2 {
		t.Fatalf("expected 2 channel frames, got %d", len(front))
	}
	if front[1].Annotations[0].BBox.Theta != 0.5 {
		t.Fatalf("expected obb rotation to round-trip, got %v", front[1].Annotations[0].BBox.Theta)
	}
}

func TestDecodeUnknownBBoxType(t *testing.T) {
	doc := strings.Replace(twoFrameDoc, "@stremf/bbox/aabb", "@stremf/bbox/circle", 1)
	_, err := Decode("doc.json", []byte(doc))
	if err == nil {
		t.Fatalf("expected a SchemaError for an unknown bbox type")
	}
	if serrors.KindOf(err) != serrors.SchemaError {
		t.Fatalf("expected SchemaError, got %v", serrors.KindOf(err))
	}
}

func TestDecodeUnknownSampleType(t *testing.T) {
	doc := strings.Replace(twoFrameDoc, "@stremf/sample/detection", "@stremf/sample/track", 1)
	_, err := Decode("doc.json", []byte(doc))
	if err == nil {
		t.Fatalf("expected a SchemaError for an unknown sample type")
	}
}

func TestDecodeInvalidJSON(t *testing.T) {
	_, err := Decode("doc.json", []byte("{not json"))
	if serrors.KindOf(err) != serrors.SchemaError {
		t.Fatalf("expected SchemaError for invalid JSON, got %v", serrors.KindOf(err))
	}
}

func TestDecodeAllPreservesIndicesAcrossFiles(t *testing.T) {
	reader := func(path string) ([]byte, error) {
		return []byte(twoFrameDoc), nil
	}
	s, err := DecodeAll([]string{"a.json", "b.json"}, reader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Frames) != 4 {
		t.Fatalf("expected 4 frames after concatenation, got %d", len(s.Frames))
	}
	if s.Frames[0].Index != 0 || s.Frames[2].Index != 0 {
		t.Fatalf("expected per-file indices preserved as-is, got %v", []int{s.Frames[0].Index, s.Frames[2].Index})
	}
}
