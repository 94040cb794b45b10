// Package detect is the in-memory representation of a perception stream:
// frames, their per-channel samples, and the annotations each sample
// carries (spec.md §3).
package detect

import "github.com/cps-atlas/strem/internal/geom"

// Annotation is a single labeled, geometric detection.
type Annotation struct {
	Class string
	Score float64
	BBox  geom.Box
}

// Image carries the path/dimensions metadata a Sample is attached to. It is
// never consulted by the core engine; it round-trips purely for fidelity
// with the input schema (spec.md §6.1).
type Image struct {
	Path   string
	Width  int
	Height int
}

// Sample is one channel's detections within a single frame.
type Sample struct {
	Channel     string
	Image       Image
	Annotations []Annotation
}

// Frame is one entry of the stream: a frame index and the samples recorded
// for it, across all channels.
type Frame struct {
	Index   int
	Samples []Sample
}

// Channel returns the sample recorded for the given channel on this frame,
// if any.
func (f Frame) Channel(name string) (Sample, bool) {
	for _, s := range f.Samples {
		if s.Channel == name {
			return s, true
		}
	}
	return Sample{}, false
}

// Stream is an ordered sequence of frames, as decoded from one or more
// input files concatenated in argument order (spec.md §6.1).
type Stream struct {
	Frames []Frame
}

// ChannelFrame pairs a frame index with the annotation set recorded for one
// channel on that frame. The matcher's per-channel subsequence is a
// sequence of these (spec.md §3, "Stream").
type ChannelFrame struct {
	Index       int
	Annotations []Annotation
}

// Channel projects the stream onto a single channel's subsequence, in
// frame order, dropping frames that carry no sample for that channel.
// Annotation order within a frame is not guaranteed stable by the schema
// (spec.md §9, "Open questions") and the evaluator must not depend on it.
func (s Stream) Channel(name string) []ChannelFrame {
	var out []ChannelFrame
	for _, f := range s.Frames {
		if sample, ok := f.Channel(name); ok {
			out = append(out, ChannelFrame{Index: f.Index, Annotations: sample.Annotations})
		}
	}
	return out
}

// HasChannel reports whether any frame in the stream carries a sample for
// the given channel. Used to distinguish "channel absent everywhere"
// (fatal, spec.md §7 ChannelNotFound) from "channel absent on some frames"
// (those frames are simply skipped).
func (s Stream) HasChannel(name string) bool {
	for _, f := range s.Frames {
		if _, ok := f.Channel(name); ok {
			return true
		}
	}
	return false
}
