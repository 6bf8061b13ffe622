package sanitize

import "testing"

func TestText(t *testing.T) {
	cases := map[string]string{
		"":                                   "",
		"Jane":                               "Jane",
		" 1 Main St ":                        " 1 Main St ",
		"<b>Jane</b>":                        "Jane",
		"Smith & Co":                         "Smith & Co",
		`<script>alert("x")</script>Doe`:     "Doe",
		`<a href="javascript:void(0)">x</a>`: "x",
		"a<b":                                "a<b",
		"Flat 3<B":                           "Flat 3<B",
		"x<y street":                         "x<y street",
		"3 > 2 & 1 < 2":                      "3 > 2 & 1 < 2",
		"Smith &amp; Co":                     "Smith &amp; Co",
		"<b>Flat 3</b><B":                    "Flat 3<B",
		"<i>a<b</i>":                         "a<b",
	}
	for input, want := range cases {
		if got := Text(input); got != want {
			t.Errorf("Text(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFunc(t *testing.T) {
	if got := Func()("<i>pdf</i>"); got != "pdf" {
		t.Fatalf("Func() = %q, want pdf", got)
	}
}
