package db

import "testing"

func TestNormalizeDSN(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"url passthrough", "postgres://u:p@localhost:5432/billing?sslmode=disable", "postgres://u:p@localhost:5432/billing?sslmode=disable"},
		{"postgresql scheme", "postgresql://u@host/db", "postgresql://u@host/db"},
		{"quoted url", `"postgres://u@host/db"`, "postgres://u@host/db"},
		{"kv gets sslmode default", "host=localhost user=billing dbname=billing", "host=localhost user=billing dbname=billing sslmode=disable"},
		{"kv keeps sslmode", "host=localhost dbname=billing sslmode=require", "host=localhost dbname=billing sslmode=require"},
		{"kv collapses whitespace", "  host=localhost   dbname=billing  sslmode=disable ", "host=localhost dbname=billing sslmode=disable"},
		{"empty", "", ""},
		{"opaque string unchanged", "not-a-dsn", "not-a-dsn"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := NormalizeDSN(c.in); got != c.want {
				t.Errorf("NormalizeDSN(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}
