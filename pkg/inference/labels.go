package inference

import "github.com/pion/emotioncam/pkg/backend"

const (
	// LabelError is reported when a frame could not be classified because
	// something broke: a bad buffer, a missing engine or an engine failure.
	LabelError = "Error"
	// LabelUnknown is reported when the engine ran but returned nothing usable.
	LabelUnknown = "Unknown"
)

// Each model emits scores in its own training order, with its own casing.
// Keep them apart.
var labelTables = map[backend.Backend][]string{
	backend.TFLite: {"angry", "disgust", "fear", "happy", "sad", "surprise", "neutral"},
	backend.ONNX:   {"Angry", "Disgust", "Fear", "Happy", "Neutral", "Sad", "Surprise"},
}

// Labels returns a copy of the label table of b, or nil if b has none.
func Labels(b backend.Backend) []string {
	table, ok := labelTables[b]
	if !ok {
		return nil
	}
	return append([]string(nil), table...)
}

// ArgMax returns the index of the largest score, the first one on ties, or -1
// for an empty vector.
func ArgMax(scores []float32) int {
	if len(scores) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}
