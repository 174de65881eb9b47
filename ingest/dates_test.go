package ingest

import "testing"

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		token string
		want  string
	}{
		{"8/7/25", "2025-08-07"},
		{"8-7-2025", "2025-08-07"},
		{"2025-08-07", "2025-08-07"},
		{"8/7/2025", "2025-08-07"},
		{"8-7-25", "2025-08-07"},
		{"12/31/25", "2025-12-31"},
		{"not a date", ""},
		{"", ""},
		{"13/45/25", ""},
	}
	for _, c := range cases {
		if got := NormalizeDate(c.token); got != c.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", c.token, got, c.want)
		}
	}
}

func TestDateFromFilename(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"report_8-7-2025.xlsx", "2025-08-07"},
		{"aoi 8/7/25.xls", "2025-08-07"},
		{"report.xlsx", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := DateFromFilename(c.filename); got != c.want {
			t.Errorf("DateFromFilename(%q) = %q, want %q", c.filename, got, c.want)
		}
	}
}

func TestResolveDateOrder(t *testing.T) {
	got := ResolveDate(Literal(""), Literal("2025-08-07"), Literal("2025-01-01"))
	if got != "2025-08-07" {
		t.Errorf("expected first non-empty provider to win, got %q", got)
	}
	if got := ResolveDate(Literal(""), Literal("")); got != "" {
		t.Errorf("expected empty resolution, got %q", got)
	}
}
