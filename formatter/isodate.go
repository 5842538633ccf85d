package formatter

import (
	"sync/atomic"
	"time"
)

// ISO8601Layout is the Go layout of the "yyyy-MM-dd HH:mm:ss,SSS" format.
const ISO8601Layout = "2006-01-02 15:04:05,000"

// secondPrefix is the formatted "yyyy-MM-dd HH:mm:ss," text of one second.
type secondPrefix struct {
	sec    int64
	prefix []byte
}

// ISO8601DateFormat formats instants as "yyyy-MM-dd HH:mm:ss,SSS" in UTC,
// independent of the process time zone. Entries arrive in bursts within
// the same second, so the text up to the comma is cached and only the
// milliseconds are rendered per call. The zero value is ready to use and
// safe for concurrent use.
type ISO8601DateFormat struct {
	cache atomic.Pointer[secondPrefix]
}

// NewISO8601DateFormat returns an empty date formatter.
func NewISO8601DateFormat() *ISO8601DateFormat {
	return &ISO8601DateFormat{}
}

// AppendFormat appends the formatted UTC time to dst.
func (d *ISO8601DateFormat) AppendFormat(dst []byte, t time.Time) []byte {
	t = t.UTC()
	sec := t.Unix()

	p := d.cache.Load()
	if p == nil || p.sec != sec {
		p = &secondPrefix{
			sec:    sec,
			prefix: t.AppendFormat(make([]byte, 0, 24), "2006-01-02 15:04:05,"),
		}
		d.cache.Store(p)
	}

	ms := t.Nanosecond() / int(time.Millisecond)
	dst = append(dst, p.prefix...)
	return append(dst, byte('0'+ms/100), byte('0'+ms/10%10), byte('0'+ms%10))
}

// Format returns the formatted UTC time.
func (d *ISO8601DateFormat) Format(t time.Time) string {
	return string(d.AppendFormat(make([]byte, 0, len(ISO8601Layout)), t))
}
