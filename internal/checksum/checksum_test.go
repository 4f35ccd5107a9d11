package checksum

import "testing"

func TestSum_Stable(t *testing.T) {
	if Sum([]byte("a")) != Sum([]byte("a")) {
		t.Error("same input should give the same digest")
	}
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Error("different input should give different digests")
	}
}

func TestDirectory(t *testing.T) {
	a := Directory(map[string]string{"/r/1.md": "x", "/r/2.md": "y"})
	b := Directory(map[string]string{"/r/2.md": "y", "/r/1.md": "x"})
	if a != b {
		t.Error("digest depends on insertion order")
	}
	c := Directory(map[string]string{"/r/1.md": "x", "/r/2.md": "z"})
	if a == c {
		t.Error("content change not reflected in digest")
	}
	d := Directory(map[string]string{"/r/1.md": "x"})
	if a == d {
		t.Error("removed file not reflected in digest")
	}
	if Directory(nil) == "" {
		t.Error("empty directory digest should not be empty")
	}
}
