package parser

import (
	"testing"

	"github.com/starford/donno/internal/models"
)

func TestValidate(t *testing.T) {
	ok := models.Note{Title: "t", Notebook: "/Misc", Tags: []string{"a", "b"}}
	if err := Validate(ok); err != nil {
		t.Fatalf("valid note rejected: %v", err)
	}

	bad := map[string]models.Note{
		"no title":      {Notebook: "/Misc"},
		"no notebook":   {Title: "t"},
		"multiline":     {Title: "a\nb", Notebook: "/Misc"},
		"tag separator": {Title: "t", Notebook: "/Misc", Tags: []string{"a; b"}},
		"empty tag":     {Title: "t", Notebook: "/Misc", Tags: []string{""}},
	}
	for name, n := range bad {
		if err := Validate(n); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestValidateEncodable_AllowsEmptyTitle(t *testing.T) {
	if err := ValidateEncodable(models.Note{Notebook: "/Misc"}); err != nil {
		t.Errorf("empty title should be encodable: %v", err)
	}
	if err := ValidateEncodable(models.Note{Tags: []string{"x; y"}}); err == nil {
		t.Error("tag with separator should be rejected")
	}
}
