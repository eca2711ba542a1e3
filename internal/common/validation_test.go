package common

import (
	"strings"
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"json", "text", "markdown"}

	for _, format := range supported {
		if err := ValidateOutputFormat(format, supported); err != nil {
			t.Errorf("ValidateOutputFormat(%q) = %v, want nil", format, err)
		}
	}

	for _, format := range []string{"xml", "JSON", ""} {
		err := ValidateOutputFormat(format, supported)
		if err == nil {
			t.Errorf("ValidateOutputFormat(%q) should fail", format)
			continue
		}
		if !strings.Contains(err.Error(), "unsupported output format") {
			t.Errorf("unexpected error message: %v", err)
		}
	}

	// No restrictions configured means everything passes
	if err := ValidateOutputFormat("xml", nil); err != nil {
		t.Errorf("unrestricted format list should accept anything, got %v", err)
	}
}

func TestGetSupportedFormats(t *testing.T) {
	formats := []string{"json", "text"}
	got := GetSupportedFormats(formats)
	if len(got) != 2 || got[0] != "json" || got[1] != "text" {
		t.Errorf("GetSupportedFormats = %v, want %v", got, formats)
	}
}
