package patch

import "testing"

func TestMatch(t *testing.T) {
	img := NewImage([]byte("A\nB\nC\n"))

	cases := []struct {
		name string
		pre  []Line
		at   int
		want bool
	}{
		{"exact", []Line{{Content: "B\n"}}, 1, true},
		{"mismatch content", []Line{{Content: "X\n"}}, 1, false},
		{"mismatch length", []Line{{Content: "B"}}, 1, false},
		{"out of range", []Line{{Content: "C\n"}, {Content: "D\n"}}, 2, false},
		{"empty preimage at end", nil, 3, true},
		{"negative offset", []Line{{Content: "A\n"}}, -1, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := match(img, c.pre, c.at); got != c.want {
				t.Errorf("match(%v, %d) = %v, want %v", c.pre, c.at, got, c.want)
			}
		})
	}
}
