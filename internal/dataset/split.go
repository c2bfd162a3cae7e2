package dataset

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/mikel-p-h/PFG/internal/domain/entity"
)

// splitSeed fixes the shuffle so repeated assemblies of an unchanged
// catalog produce the same partitions.
const splitSeed = 42

// SplitTrainVal partitions frames into train and val, stratified by the
// class of each frame's first annotation record so every class keeps
// roughly the same train/val ratio. Rounding always favors train: val
// receives floor(valFraction * stratum size) frames per stratum.
func SplitTrainVal(frames []*entity.Frame, valFraction float64) (train, val []*entity.Frame) {
	strata := make(map[string][]*entity.Frame)
	for _, f := range frames {
		strata[leadClass(f)] = append(strata[leadClass(f)], f)
	}

	keys := make([]string, 0, len(strata))
	for k := range strata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rng := rand.New(rand.NewSource(splitSeed))
	for _, k := range keys {
		group := append([]*entity.Frame(nil), strata[k]...)
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})

		valN := int(valFraction * float64(len(group)))
		val = append(val, group[:valN]...)
		train = append(train, group[valN:]...)
	}
	return train, val
}

// leadClass extracts the class id of the first annotation record, or ""
// for frames with no annotation (negative samples form their own stratum).
func leadClass(f *entity.Frame) string {
	text := f.AnnotationText()
	if text == "" {
		return ""
	}
	firstLine, _, _ := strings.Cut(text, "\n")
	class, _, _ := strings.Cut(strings.TrimSpace(firstLine), " ")
	return class
}
