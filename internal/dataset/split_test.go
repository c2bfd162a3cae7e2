package dataset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikel-p-h/PFG/internal/domain/entity"
)

func annotated(id int64, class string) *entity.Frame {
	text := fmt.Sprintf("%s 0.5 0.5 0.2 0.2", class)
	return &entity.Frame{
		ID:         id,
		Name:       entity.FrameName(int(id), ".jpg"),
		Annotation: &text,
		Finished:   true,
	}
}

func TestSplitTrainValPartitions(t *testing.T) {
	var frames []*entity.Frame
	for i := int64(1); i <= 20; i++ {
		frames = append(frames, annotated(i, "0"))
	}

	train, val := SplitTrainVal(frames, 0.15)

	assert.Len(t, val, 3) // floor(0.15 * 20)
	assert.Len(t, train, 17)

	seen := make(map[int64]int)
	for _, f := range train {
		seen[f.ID]++
	}
	for _, f := range val {
		seen[f.ID]++
	}
	require.Len(t, seen, 20, "every frame lands in exactly one partition")
	for id, n := range seen {
		assert.Equal(t, 1, n, "frame %d appears once", id)
	}
}

func TestSplitTrainValIsDeterministic(t *testing.T) {
	var frames []*entity.Frame
	for i := int64(1); i <= 40; i++ {
		frames = append(frames, annotated(i, fmt.Sprintf("%d", i%3)))
	}

	train1, val1 := SplitTrainVal(frames, 0.15)
	train2, val2 := SplitTrainVal(frames, 0.15)

	require.Equal(t, len(train1), len(train2))
	require.Equal(t, len(val1), len(val2))
	for i := range train1 {
		assert.Equal(t, train1[i].ID, train2[i].ID)
	}
	for i := range val1 {
		assert.Equal(t, val1[i].ID, val2[i].ID)
	}
}

func TestSplitTrainValStratifiesByLeadClass(t *testing.T) {
	var frames []*entity.Frame
	for i := int64(1); i <= 20; i++ {
		frames = append(frames, annotated(i, "0"))
	}
	for i := int64(21); i <= 40; i++ {
		frames = append(frames, annotated(i, "1"))
	}

	_, val := SplitTrainVal(frames, 0.15)

	perClass := map[string]int{}
	for _, f := range val {
		perClass[leadClass(f)]++
	}
	assert.Equal(t, 3, perClass["0"], "each class contributes floor(0.15*20)")
	assert.Equal(t, 3, perClass["1"])
}

func TestSplitTrainValRoundingFavorsTrain(t *testing.T) {
	var frames []*entity.Frame
	for i := int64(1); i <= 5; i++ {
		frames = append(frames, annotated(i, "0"))
	}

	train, val := SplitTrainVal(frames, 0.15)

	assert.Empty(t, val, "floor(0.15 * 5) = 0")
	assert.Len(t, train, 5)
}

func TestSplitTrainValUnannotatedStratum(t *testing.T) {
	var frames []*entity.Frame
	for i := int64(1); i <= 10; i++ {
		frames = append(frames, annotated(i, "0"))
	}
	// finished frames without annotation are negative samples
	for i := int64(11); i <= 20; i++ {
		frames = append(frames, &entity.Frame{
			ID:       i,
			Name:     entity.FrameName(int(i), ".jpg"),
			Finished: true,
		})
	}

	train, val := SplitTrainVal(frames, 0.15)

	assert.Len(t, train, 18)
	assert.Len(t, val, 2)
	negatives := 0
	for _, f := range val {
		if f.AnnotationText() == "" {
			negatives++
		}
	}
	assert.Equal(t, 1, negatives, "negative stratum holds out its own share")
}
