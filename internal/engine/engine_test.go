package engine

import (
	"testing"

	"github.com/cps-atlas/strem/internal/detect"
	"github.com/cps-atlas/strem/internal/geom"
	serrors "github.com/cps-atlas/strem/spre/errors"
)

func frame(index int, channel string, classes ...string) detect.Frame {
	anns := make([]detect.Annotation, len(classes))
	for i, c := range classes {
		anns[i] = detect.Annotation{Class: c, BBox: geom.AABB(0, 0, 1, 1)}
	}
	return detect.Frame{Index: index, Samples: []detect.Sample{{Channel: channel, Annotations: anns}}}
}

func TestCompileAndRunOffline(t *testing.T) {
	prog, err := Compile(`[:car:][:pedestrian:]`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	stream := detect.Stream{Frames: []detect.Frame{
		frame(0, "front", "car"),
		frame(1, "front", "pedestrian"),
		frame(2, "front"),
	}}
	matches, err := prog.Run(stream, Options{Channel: "front"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(matches) != 1 || matches[0].Start != 0 || matches[0].End != 1 {
		t.Fatalf("unexpected matches: %+v", matches)
	}
}

func TestRunOnline(t *testing.T) {
	prog, err := Compile(`[:car:][:car:]`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	stream := detect.Stream{Frames: []detect.Frame{
		frame(0, "front", "car"),
		frame(1, "front", "car"),
		frame(2, "front", "car"),
	}}
	matches, err := prog.Run(stream, Options{Channel: "front", Online: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 overlapping-start online matches, got %+v", matches)
	}
}

func TestRunChannelNotFound(t *testing.T) {
	prog, err := Compile(`[:car:]`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	stream := detect.Stream{Frames: []detect.Frame{frame(0, "front", "car")}}
	_, err = prog.Run(stream, Options{Channel: "rear"})
	if serrors.KindOf(err) != serrors.ChannelNotFound {
		t.Fatalf("expected ChannelNotFound, got %v", err)
	}
}

func TestCompileUnboundVariable(t *testing.T) {
	_, err := Compile(`[@area(v)>0]`)
	if serrors.KindOf(err) != serrors.UnboundVariable {
		t.Fatalf("expected UnboundVariable, got %v", err)
	}
}

func TestCompileAtomLimitExceeded(t *testing.T) {
	pattern := ""
	for i := 0; i < 65; i++ {
		pattern += "[:c" + string(rune('a'+i%26)) + string(rune('0'+i/26)) + ":]|"
	}
	pattern += "[:last:]"
	_, err := Compile(pattern)
	if serrors.KindOf(err) != serrors.AtomLimitExceeded {
		t.Fatalf("expected AtomLimitExceeded, got %v", err)
	}
}

func TestCompileSyntaxError(t *testing.T) {
	_, err := Compile(`[:car:`)
	if serrors.KindOf(err) != serrors.SyntaxError {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
}
