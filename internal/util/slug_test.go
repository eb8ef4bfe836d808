package util

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Nubank":            "nubank",
		"Todos os Bancos":   "todos-os-bancos",
		"Cartão de Crédito": "cartao-de-credito",
		"  both  ":          "both",
		"a__b--c":           "a-b-c",
		"Conta Nº 7!":       "conta-n-7",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseOptionalDate(t *testing.T) {
	if d, err := ParseOptionalDate(""); err != nil || d != nil {
		t.Errorf("ParseOptionalDate(\"\") = %v, %v, want nil, nil", d, err)
	}

	d, err := ParseOptionalDate("2025-03-31")
	if err != nil || d == nil {
		t.Fatalf("ParseOptionalDate(valid) error = %v", err)
	}
	if d.Format(DateLayout) != "2025-03-31" {
		t.Errorf("parsed date = %s", d.Format(DateLayout))
	}

	for _, bad := range []string{"31/03/2025", "2025-3-1", "not-a-date"} {
		if _, err := ParseOptionalDate(bad); err == nil {
			t.Errorf("ParseOptionalDate(%q) error = nil, want error", bad)
		}
	}
}
