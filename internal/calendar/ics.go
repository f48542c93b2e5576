// Package calendar serializes fixtures to iCalendar and reads calendars back.
package calendar

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ofir/maccabi-ics/internal/fixture"
)

const (
	DefaultProductID = "-//Ofir//MaccabiTLV Fixtures//EN"
	DefaultName      = "Maccabi Tel Aviv BC (Auto)"
	DefaultUIDPrefix = "maccabi"
	DefaultUIDDomain = "ofir"

	// titleDigestLen is the number of hex digits of the title digest kept in a UID.
	titleDigestLen = 12
)

// Metadata is the fixed calendar-level information of a document.
type Metadata struct {
	ProductID string
	Name      string
	// Location is the source timezone; its name becomes X-WR-TIMEZONE and every TZID.
	Location  *time.Location
	UIDPrefix string
	UIDDomain string
}

// DefaultMetadata returns the metadata of the published fixtures calendar in loc.
func DefaultMetadata(loc *time.Location) Metadata {
	return Metadata{
		ProductID: DefaultProductID,
		Name:      DefaultName,
		Location:  loc,
		UIDPrefix: DefaultUIDPrefix,
		UIDDomain: DefaultUIDDomain,
	}
}

// Document is a calendar ready to be serialized. It is built once per run.
type Document struct {
	Metadata Metadata
	Events   []*fixture.Event
	// Stamp is written as DTSTAMP on every event.
	Stamp time.Time
}

// NewDocument creates a document. A nil Location in meta means UTC.
func NewDocument(meta Metadata, events []*fixture.Event, stamp time.Time) *Document {
	if meta.Location == nil {
		meta.Location = time.UTC
	}
	return &Document{Metadata: meta, Events: events, Stamp: stamp}
}

// Serialize renders events with the default metadata and the given product id.
func Serialize(events []*fixture.Event, productID string, loc *time.Location, stamp time.Time) string {
	meta := DefaultMetadata(loc)
	meta.ProductID = productID
	return NewDocument(meta, events, stamp).Serialize()
}

// Serialize renders the document. Lines are not folded and every line,
// the last included, ends with CRLF.
func (d *Document) Serialize() string {
	var ics strings.Builder
	tz := d.Metadata.Location.String()

	writeLine(&ics, "BEGIN:VCALENDAR")
	writeLine(&ics, "VERSION:2.0")
	writeLine(&ics, "PRODID:"+d.Metadata.ProductID)
	writeLine(&ics, "CALSCALE:GREGORIAN")
	writeLine(&ics, "METHOD:PUBLISH")
	writeLine(&ics, "X-WR-CALNAME:"+d.Metadata.Name)
	writeLine(&ics, "X-WR-TIMEZONE:"+tz)

	stamp := formatICSTime(d.Stamp)
	for _, evt := range d.Events {
		writeLine(&ics, "BEGIN:VEVENT")
		writeLine(&ics, "UID:"+d.UID(evt))
		writeLine(&ics, "DTSTAMP:"+stamp)
		writeLine(&ics, fmt.Sprintf("DTSTART;TZID=%s:%s", tz, formatLocalTime(evt.Start, d.Metadata.Location)))
		writeLine(&ics, fmt.Sprintf("DTEND;TZID=%s:%s", tz, formatLocalTime(evt.End, d.Metadata.Location)))
		writeLine(&ics, "SUMMARY:"+escapeICS(evt.Title))
		if evt.Location != "" {
			writeLine(&ics, "LOCATION:"+escapeICS(evt.Location))
		}
		writeLine(&ics, "END:VEVENT")
	}

	writeLine(&ics, "END:VCALENDAR")
	return ics.String()
}

// UID derives the event identifier from its local start time and a digest
// of its normalized title. Two games at the same minute with titles that
// normalize alike share a UID.
func (d *Document) UID(evt *fixture.Event) string {
	return fmt.Sprintf("%s-%s-%s@%s",
		d.Metadata.UIDPrefix,
		formatLocalTime(evt.Start, d.Metadata.Location),
		titleDigest(evt.Title),
		d.Metadata.UIDDomain)
}

// titleDigest hashes the lowercased, whitespace-collapsed title with SHA-1.
func titleDigest(title string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(title), " "))
	sum := sha1.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])[:titleDigestLen]
}

func writeLine(b *strings.Builder, line string) {
	b.WriteString(line)
	b.WriteString("\r\n")
}

// formatICSTime formats a time.Time as an iCalendar UTC datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// formatLocalTime formats the wall-clock time of t in loc, for use with TZID.
func formatLocalTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("20060102T150405")
}

// escapeICS escapes TEXT values per RFC 5545. Backslash goes first so the
// escapes added afterwards are not doubled.
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
