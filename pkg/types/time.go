package types

import (
	"fmt"
	"time"
)

// Layouts used on the wire.
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

// Timestamp is a wall-clock time serialised as "YYYY-MM-DD HH:MM:SS" in
// both JSON and YAML. A nil *Timestamp encodes as JSON null.
type Timestamp struct {
	t time.Time
}

// NewTimestamp truncates t to whole seconds.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t: t.Truncate(time.Second)}
}

// ParseTimestamp parses s in TimestampLayout.
func ParseTimestamp(s string) (Timestamp, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return Timestamp{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return Timestamp{t: t}, nil
}

// MustTimestamp is ParseTimestamp for literals; it panics on bad input.
func MustTimestamp(s string) *Timestamp {
	ts, err := ParseTimestamp(s)
	if err != nil {
		panic(err)
	}
	return &ts
}

// Time returns the underlying time.
func (t Timestamp) Time() time.Time { return t.t }

// Add returns t+d.
func (t Timestamp) Add(d time.Duration) Timestamp { return Timestamp{t: t.t.Add(d)} }

func (t Timestamp) String() string { return t.t.Format(TimestampLayout) }

// MarshalText implements encoding.TextMarshaler.
func (t Timestamp) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Timestamp) UnmarshalText(b []byte) error {
	ts, err := ParseTimestamp(string(b))
	if err != nil {
		return err
	}
	*t = ts
	return nil
}

// Date is a calendar day serialised as "YYYY-MM-DD".
type Date struct {
	t time.Time
}

// NewDate drops the clock part of t, keeping its location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, t.Location())}
}

// ParseDate parses s in DateLayout.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// MustDate is ParseDate for literals; it panics on bad input.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns midnight of the day.
func (d Date) Time() time.Time { return d.t }

// AddDays returns the date n calendar days after d (n may be negative).
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

func (d Date) String() string { return d.t.Format(DateLayout) }

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	pd, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = pd
	return nil
}
