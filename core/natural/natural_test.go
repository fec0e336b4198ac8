package natural

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"Disk 2", "Disk 10", -1},
		{"Disk 10", "Disk 2", 1},
		{"abc", "abc", 0},
		{"a", "b", -1},
		{"game9", "game10", -1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
		})
	}
}

func TestCompare_SortsBuckets(t *testing.T) {
	keys := []string{"Disk 10", "Disk 1", "Disk 2"}
	slices.SortFunc(keys, Compare)
	assert.Equal(t, []string{"Disk 1", "Disk 2", "Disk 10"}, keys)
}
