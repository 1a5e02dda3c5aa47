package video

import (
	"io"
	"testing"
	"time"

	"github.com/pion/emotioncam/pkg/frame"
	"github.com/pion/emotioncam/pkg/prop"
)

func TestDetectChanges(t *testing.T) {
	sizes := [][2]int{{640, 480}, {640, 480}, {320, 240}}
	var i int
	src := ReaderFunc(func() (*frame.RawFrame, func(), error) {
		if i == len(sizes) {
			return nil, nil, io.EOF
		}
		f := &frame.RawFrame{Width: sizes[i][0], Height: sizes[i][1]}
		i++
		return f, func() {}, nil
	})

	var changes []prop.Video
	r := DetectChanges(time.Hour, func(p prop.Video) {
		changes = append(changes, p)
	})(src)

	for range sizes {
		if _, _, err := r.Read(); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	if _, _, err := r.Read(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}

	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
	if changes[0].Width != 640 || changes[0].Height != 480 {
		t.Errorf("unexpected first change %v", changes[0])
	}
	if changes[1].Width != 320 || changes[1].Height != 240 {
		t.Errorf("unexpected second change %v", changes[1])
	}
}

func TestMerge(t *testing.T) {
	var order []int
	mark := func(n int) TransformFunc {
		return func(r Reader) Reader {
			return ReaderFunc(func() (*frame.RawFrame, func(), error) {
				f, release, err := r.Read()
				order = append(order, n)
				return f, release, err
			})
		}
	}

	src := ReaderFunc(func() (*frame.RawFrame, func(), error) {
		return &frame.RawFrame{}, func() {}, nil
	})
	r := Merge(mark(1), nil, mark(2))(src)
	if _, _, err := r.Read(); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("transforms ran out of order: %v", order)
	}
}
