package pricing

// Align returns a view of fields in which every per-level array has exactly
// len(fields[FieldLevelType]) entries. Short arrays are padded with "" and long
// ones are cut, since trailing values past the declared levels belong to no
// level. Keys that are not level arrays are carried over unchanged. The input
// map is not modified.
func Align(fields map[string][]string) map[string][]string {
	n := len(fields[FieldLevelType])
	out := make(map[string][]string, len(fields)+len(levelFields))
	for name, values := range fields {
		out[name] = values
	}
	for _, name := range levelFields {
		out[name] = fit(fields[name], n)
	}
	return out
}

func fit(values []string, n int) []string {
	if len(values) == n {
		return values
	}
	out := make([]string, n)
	copy(out, values)
	return out
}
