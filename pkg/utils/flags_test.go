package utils

import "testing"

func TestParseFlag(t *testing.T) {
	tests := map[string]bool{
		"True":  true,
		"true":  false,
		"TRUE":  false,
		"1":     false,
		"":      false,
		"False": false,
		" True": false,
	}

	for in, expected := range tests {
		if got := ParseFlag(in); got != expected {
			t.Errorf("ParseFlag(%q) = %v, expected %v", in, got, expected)
		}
	}
}

func TestFormatFlag(t *testing.T) {
	if FormatFlag(true) != "True" {
		t.Errorf("expected True, got %s", FormatFlag(true))
	}

	if FormatFlag(false) != "False" {
		t.Errorf("expected False, got %s", FormatFlag(false))
	}

	if !ParseFlag(FormatFlag(true)) {
		t.Error("expected a formatted true flag to parse as true")
	}
}
