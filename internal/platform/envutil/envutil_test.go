package envutil

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_GET", "  value  ")
	if got := Get("ENVUTIL_TEST_GET", "def"); got != "value" {
		t.Fatalf("Get = %q", got)
	}
	if got := Get("ENVUTIL_TEST_UNSET", "def"); got != "def" {
		t.Fatalf("Get default = %q", got)
	}
}

func TestInt(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_INT", "42")
	if got := Int("ENVUTIL_TEST_INT", 7); got != 42 {
		t.Fatalf("Int = %d", got)
	}
	t.Setenv("ENVUTIL_TEST_INT", "not a number")
	if got := Int("ENVUTIL_TEST_INT", 7); got != 7 {
		t.Fatalf("Int on garbage = %d", got)
	}
	if got := Int("ENVUTIL_TEST_UNSET", 7); got != 7 {
		t.Fatalf("Int default = %d", got)
	}
}

func TestBool(t *testing.T) {
	cases := []struct {
		value string
		def   bool
		want  bool
	}{
		{"1", false, true},
		{"true", false, true},
		{"YES", false, true},
		{"on", false, true},
		{"0", true, false},
		{"false", true, false},
		{"no", true, false},
		{"off", true, false},
		{"", true, true},
		{"", false, false},
		{"maybe", false, false},
		{"maybe", true, true},
	}
	for _, tc := range cases {
		t.Setenv("ENVUTIL_TEST_BOOL", tc.value)
		if got := Bool("ENVUTIL_TEST_BOOL", tc.def); got != tc.want {
			t.Fatalf("Bool(%q, %v) = %v", tc.value, tc.def, got)
		}
	}
}
