package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const doc = `{
  "version": "1",
  "frames": [
    {"index": 0, "samples": [{"type": "@stremf/sample/detection", "channel": "front",
      "image": {"path": "a.png", "dimensions": {"width": 1, "height": 1}},
      "annotations": [{"class": "car", "score": 1, "bbox": {"type": "@stremf/bbox/aabb", "region": {"center": {"x": 0, "y": 0}, "dimensions": {"w": 1, "h": 1}}}}]}]},
    {"index": 1, "samples": [{"type": "@stremf/sample/detection", "channel": "front",
      "image": {"path": "b.png", "dimensions": {"width": 1, "height": 1}},
      "annotations": [{"class": "pedestrian", "score": 1, "bbox": {"type": "@stremf/bbox/aabb", "region": {"center": {"x": 0, "y": 0}, "dimensions": {"w": 1, "h": 1}}}}]}]}
  ]
}`

func TestRunReportsMatches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stream.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	c := New()
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetArgs([]string{"--channel", "front", "[:car:][:pedestrian:]", path})

	if err := c.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := "front [0, 1]\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

func TestRunSyntaxError(t *testing.T) {
	c := New()
	c.SetArgs([]string{"--channel", "front", "[:car:", "missing.json"})
	if err := c.Execute(); err == nil {
		t.Fatalf("expected a syntax error")
	}
}
