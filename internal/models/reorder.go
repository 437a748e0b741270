package models

// MoveWithin returns a copy of ids with the element at from moved to index to.
// Out of range indexes return an unchanged copy.
func MoveWithin(ids []string, from, to int) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}

	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]string{moved}, out[to:]...)...)
	return out
}
