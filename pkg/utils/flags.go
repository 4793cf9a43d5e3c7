package utils

// TRUE_LITERAL is the only value accepted as true for a configuration flag.
// "true", "1" and an empty value all read as false.
const TRUE_LITERAL = "True"

const FALSE_LITERAL = "False"

func ParseFlag(value string) bool {
	return value == TRUE_LITERAL
}

func FormatFlag(enabled bool) string {
	if enabled {
		return TRUE_LITERAL
	}

	return FALSE_LITERAL
}
