package calendar

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/ofir/maccabi-ics/internal/fixture"
)

func jerusalem(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		t.Fatalf("loading timezone: %v", err)
	}
	return loc
}

func TestSerialize_Golden(t *testing.T) {
	loc := jerusalem(t)
	stamp := time.Date(2025, 10, 1, 9, 30, 0, 0, time.UTC)
	events := []*fixture.Event{
		fixture.NewEvent(time.Date(2025, 10, 28, 21, 15, 0, 0, loc), "Maccabi TLV vs Panathinaikos (EuroLeague)", "Menora Mivtachim Arena, Tel Aviv"),
		fixture.NewEvent(time.Date(2025, 11, 15, 19, 0, 0, 0, loc), "Maccabi Rapyd TA vs Maccabi TLV (Winner League)", ""),
	}

	got := Serialize(events, DefaultProductID, loc, stamp)

	want := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Ofir//MaccabiTLV Fixtures//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"X-WR-CALNAME:Maccabi Tel Aviv BC (Auto)",
		"X-WR-TIMEZONE:Asia/Jerusalem",
		"BEGIN:VEVENT",
		"UID:maccabi-20251028T211500-17704e74df94@ofir",
		"DTSTAMP:20251001T093000Z",
		"DTSTART;TZID=Asia/Jerusalem:20251028T211500",
		"DTEND;TZID=Asia/Jerusalem:20251028T231500",
		"SUMMARY:Maccabi TLV vs Panathinaikos (EuroLeague)",
		"LOCATION:Menora Mivtachim Arena\\, Tel Aviv",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:maccabi-20251115T190000-bc48e9b17db7@ofir",
		"DTSTAMP:20251001T093000Z",
		"DTSTART;TZID=Asia/Jerusalem:20251115T190000",
		"DTEND;TZID=Asia/Jerusalem:20251115T210000",
		"SUMMARY:Maccabi Rapyd TA vs Maccabi TLV (Winner League)",
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n") + "\r\n"

	if got != want {
		t.Errorf("Serialize() mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestSerialize_Empty(t *testing.T) {
	ics := Serialize(nil, "-//Test//EN", time.UTC, time.Now())

	want := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//Test//EN\r\nCALSCALE:GREGORIAN\r\nMETHOD:PUBLISH\r\n" +
		"X-WR-CALNAME:Maccabi Tel Aviv BC (Auto)\r\nX-WR-TIMEZONE:UTC\r\nEND:VCALENDAR\r\n"
	if ics != want {
		t.Errorf("Serialize(nil) = %q, want %q", ics, want)
	}
	if strings.Contains(ics, "BEGIN:VEVENT") {
		t.Error("empty calendar should have no VEVENT")
	}
}

func TestSerialize_LineEndings(t *testing.T) {
	loc := jerusalem(t)
	events := []*fixture.Event{
		fixture.NewEvent(time.Date(2026, 1, 8, 20, 5, 0, 0, loc), "Line one\nLine two", "Somewhere"),
	}

	ics := Serialize(events, DefaultProductID, loc, time.Now())

	if !strings.HasSuffix(ics, "END:VCALENDAR\r\n") {
		t.Error("ICS should end with CRLF after END:VCALENDAR")
	}
	lines := strings.Split(strings.TrimSuffix(ics, "\r\n"), "\r\n")
	for i, line := range lines {
		if strings.ContainsAny(line, "\r\n") {
			t.Errorf("line %d contains a bare line break: %q", i, line)
		}
	}
	if !strings.Contains(ics, "SUMMARY:Line one\\nLine two\r\n") {
		t.Error("embedded newline should be escaped as \\n")
	}
}

func TestSerialize_NoFolding(t *testing.T) {
	title := "Maccabi TLV vs " + strings.Repeat("A Very Long Opponent Name ", 6) + "(EuroLeague)"
	events := []*fixture.Event{fixture.NewEvent(time.Date(2026, 2, 1, 20, 0, 0, 0, time.UTC), title, "")}

	ics := Serialize(events, DefaultProductID, time.UTC, time.Now())
	if !strings.Contains(ics, "SUMMARY:"+title+"\r\n") {
		t.Error("long SUMMARY should stay on one line")
	}
}

func TestSerialize_TimezoneConversion(t *testing.T) {
	loc := jerusalem(t)
	// 18:00 UTC is 20:00 in Israel in winter.
	start := time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC)
	events := []*fixture.Event{fixture.NewEvent(start, "Game", "")}

	ics := Serialize(events, DefaultProductID, loc, time.Now())

	if !strings.Contains(ics, "DTSTART;TZID=Asia/Jerusalem:20260115T200000\r\n") {
		t.Error("DTSTART should be the local wall-clock time of the source timezone")
	}
	if !strings.Contains(ics, "DTEND;TZID=Asia/Jerusalem:20260115T220000\r\n") {
		t.Error("DTEND should be two hours after DTSTART")
	}
}

func TestDocument_UID(t *testing.T) {
	loc := jerusalem(t)
	doc := NewDocument(DefaultMetadata(loc), nil, time.Now())
	start := time.Date(2025, 10, 28, 21, 15, 0, 0, loc)

	a := doc.UID(fixture.NewEvent(start, "Maccabi TLV vs Panathinaikos (EuroLeague)", ""))
	b := doc.UID(fixture.NewEvent(start, "  MACCABI   tlv vs PANATHINAIKOS (euroleague) ", ""))
	c := doc.UID(fixture.NewEvent(start, "Maccabi TLV vs Olympiacos (EuroLeague)", ""))

	if a != "maccabi-20251028T211500-17704e74df94@ofir" {
		t.Errorf("UID() = %q", a)
	}
	if a != b {
		t.Errorf("titles differing only in case and spacing should share a UID: %q vs %q", a, b)
	}
	if a == c {
		t.Error("different titles should produce different UIDs")
	}

	meta := DefaultMetadata(loc)
	meta.UIDPrefix, meta.UIDDomain = "mtlv", "example.org"
	custom := NewDocument(meta, nil, time.Now()).UID(fixture.NewEvent(start, "Game", ""))
	if !strings.HasPrefix(custom, "mtlv-20251028T211500-") || !strings.HasSuffix(custom, "@example.org") {
		t.Errorf("custom UID = %q", custom)
	}
}

func TestNewDocument_NilLocation(t *testing.T) {
	doc := NewDocument(Metadata{ProductID: "-//X//EN"}, nil, time.Now())
	if doc.Metadata.Location != time.UTC {
		t.Errorf("Location = %v, want UTC", doc.Metadata.Location)
	}
}

func TestFormatICSTime(t *testing.T) {
	loc := time.FixedZone("IST", 2*60*60)
	testTime := time.Date(2026, 3, 15, 14, 30, 0, 0, loc)

	if got, want := formatICSTime(testTime), "20260315T123000Z"; got != want {
		t.Errorf("formatICSTime() = %q, want %q", got, want)
	}
	if got, want := formatLocalTime(testTime, loc), "20260315T143000"; got != want {
		t.Errorf("formatLocalTime() = %q, want %q", got, want)
	}
}

func TestEscapeICS(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Simple text", "Simple text"},
		{"Text with, comma", "Text with\\, comma"},
		{"Text with; semicolon", "Text with\\; semicolon"},
		{"Text with\\backslash", "Text with\\\\backslash"},
		{"Text with\nnewline", "Text with\\nnewline"},
		{"A; B, C\\", "A\\; B\\, C\\\\"},
		{"All, special; chars\\\n", "All\\, special\\; chars\\\\\\n"},
		{"already \\; escaped", "already \\\\\\; escaped"},
		{"מכבי, תל אביב", "מכבי\\, תל אביב"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := escapeICS(tt.input)
			if got != tt.expected {
				t.Errorf("escapeICS(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
