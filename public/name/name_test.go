package name

import "testing"

func TestResourceOf(t *testing.T) {
	cases := map[string]string{
		"demo.Calc/total": "demo.Calc",
		"demo.Calc":       "demo.Calc",
		"demo.Calc/":      "demo.Calc",
	}
	for in, want := range cases {
		if got := ResourceOf(in); got != want {
			t.Errorf("ResourceOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMemberOf(t *testing.T) {
	cases := map[string]string{
		"demo.Calc/total": "total",
		"demo.Calc":       "",
		"demo.Calc/":      "",
	}
	for in, want := range cases {
		if got := MemberOf(in); got != want {
			t.Errorf("MemberOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestJoin(t *testing.T) {
	if got := Join("demo.Calc", "total"); got != "demo.Calc/total" {
		t.Errorf("Join = %q, want demo.Calc/total", got)
	}
}
