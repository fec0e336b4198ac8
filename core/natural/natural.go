package natural

import (
	"strings"

	"github.com/maruel/natural"
)

// Compare orders a and b naturally. Strings that are naturally equivalent,
// such as "a01" and "a1", fall back to byte order so the result is total.
func Compare(a, b string) int {
	switch {
	case a == b:
		return 0
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	}
	return strings.Compare(a, b)
}

// Less reports whether a sorts before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}
