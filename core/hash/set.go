package hash

// Set holds at most one normalized value per kind.
type Set struct {
	values [numKinds]string
}

// Get returns the value for k, or "" when absent.
func (s *Set) Get(k Kind) string {
	if !k.Valid() {
		return ""
	}
	return s.values[k]
}

// Has reports whether a value for k is present.
func (s *Set) Has(k Kind) bool {
	return s.Get(k) != ""
}

// Put normalizes raw and stores it under k. An invalid value clears k.
func (s *Set) Put(k Kind, raw string) {
	if !k.Valid() {
		return
	}
	s.values[k] = Normalize(k, raw)
}

// Clear removes the value for k.
func (s *Set) Clear(k Kind) {
	if k.Valid() {
		s.values[k] = ""
	}
}

// Empty reports whether no kind carries a value.
func (s *Set) Empty() bool {
	for _, v := range s.values {
		if v != "" {
			return false
		}
	}
	return true
}

// Present returns the kinds carrying a value, in declaration order.
func (s *Set) Present() []Kind {
	var kinds []Kind
	for k, v := range s.values {
		if v != "" {
			kinds = append(kinds, Kind(k))
		}
	}
	return kinds
}

// Strongest returns the most discriminating kind present.
func (s *Set) Strongest() (Kind, bool) {
	for _, k := range Strongest {
		if s.Has(k) {
			return k, true
		}
	}
	return 0, false
}

// ConditionalEqual compares the kinds present on both sides. A kind present
// on only one side is not a mismatch. shared reports whether at least one
// kind was compared.
func (s *Set) ConditionalEqual(o *Set) (equal bool, shared bool) {
	for k := range s.values {
		a, b := s.values[k], o.values[k]
		if a == "" || b == "" {
			continue
		}
		shared = true
		if a != b {
			return false, true
		}
	}
	return true, shared
}

// FillMissing copies every value present in o but absent in s. It returns
// the number of kinds filled.
func (s *Set) FillMissing(o *Set) int {
	filled := 0
	for k := range s.values {
		if s.values[k] == "" && o.values[k] != "" {
			s.values[k] = o.values[k]
			filled++
		}
	}
	return filled
}

// IsEmptyFile reports whether every present value equals the empty-file
// digest of its kind. A set with no values is trivially empty-file.
func (s *Set) IsEmptyFile() bool {
	for k, v := range s.values {
		if v != "" && v != emptyFile[k] {
			return false
		}
	}
	return true
}
