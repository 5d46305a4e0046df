package randtoken

import "testing"

func TestNewLengthAndAlphabet(t *testing.T) {
	for _, n := range []int{10, 12, 32} {
		token := New(n)
		if len(token) != n {
			t.Errorf("New(%d) returned %d characters", n, len(token))
		}
		for _, c := range token {
			switch {
			case c >= 'a' && c <= 'z':
			case c >= 'A' && c <= 'Z':
			case c >= '0' && c <= '9':
			default:
				t.Errorf("New(%d) produced non-alphanumeric character %q", n, c)
			}
		}
	}
}

func TestNewIsNotConstant(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 16; i++ {
		seen[New(32)] = true
	}
	if len(seen) < 2 {
		t.Error("expected distinct tokens across calls")
	}
}
