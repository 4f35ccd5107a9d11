package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func (s *sample) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "from-env")
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("name: ${SAMPLE_NAME}\ncount: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var s sample
	if err := Load(path, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "from-env" || s.Count != 3 {
		t.Errorf("got %+v", s)
	}
}

func TestLoad_Validates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("count: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var s sample
	err := Load(path, &s)
	if err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Errorf("err = %v, want validation failure", err)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "c.yaml")
	in := sample{Name: "x", Count: 7}
	if err := Save(path, &in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	var out sample
	if err := Load(path, &out); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestSave_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := Save(path, &sample{}); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("invalid config should not be written")
	}
}

func TestLoadOrInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "donno", "config.yaml")

	first := sample{Name: "default", Count: 1}
	created, err := LoadOrInit(path, &first)
	if err != nil {
		t.Fatalf("LoadOrInit: %v", err)
	}
	if !created {
		t.Error("first call should create the file")
	}

	second := sample{Name: "other"}
	created, err = LoadOrInit(path, &second)
	if err != nil {
		t.Fatalf("LoadOrInit: %v", err)
	}
	if created {
		t.Error("second call should load the existing file")
	}
	if second != first {
		t.Errorf("got %+v, want %+v", second, first)
	}
}
