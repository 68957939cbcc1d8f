package expression

import (
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kbukum/aggregator/errors"
)

// LoadZone resolves a zone name. Besides IANA names it accepts UTC, GMT and
// fixed offsets written as GMT+8, UTC-05:30 or +0800.
func LoadZone(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	switch strings.ToUpper(name) {
	case "", "UTC", "GMT", "Z":
		return time.UTC, nil
	}
	if loc, ok := fixedZone(name); ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.InvalidFormat("zone", "IANA zone name or GMT offset").
			WithDetail("zone", name).
			WithCause(err)
	}
	return loc, nil
}

func fixedZone(name string) (*time.Location, bool) {
	offset := name
	upper := strings.ToUpper(name)
	for _, prefix := range []string{"GMT", "UTC"} {
		if strings.HasPrefix(upper, prefix) {
			offset = name[len(prefix):]
			break
		}
	}
	if offset == "" || (offset[0] != '+' && offset[0] != '-') {
		return nil, false
	}
	sign := 1
	if offset[0] == '-' {
		sign = -1
	}
	digits := strings.ReplaceAll(offset[1:], ":", "")
	var hours, minutes int
	var err error
	switch len(digits) {
	case 1, 2:
		hours, err = strconv.Atoi(digits)
	case 3, 4:
		hours, err = strconv.Atoi(digits[:len(digits)-2])
		if err == nil {
			minutes, err = strconv.Atoi(digits[len(digits)-2:])
		}
	default:
		return nil, false
	}
	if err != nil || hours > 23 || minutes > 59 {
		return nil, false
	}
	return time.FixedZone(name, sign*(hours*3600+minutes*60)), true
}

// standardOffset returns the zone's offset from UTC in seconds outside
// daylight saving time.
func standardOffset(loc *time.Location) int64 {
	year := time.Now().Year()
	for _, month := range []time.Month{time.January, time.July} {
		t := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		if !t.IsDST() {
			_, offset := t.Zone()
			return int64(offset)
		}
	}
	_, offset := time.Date(year, time.January, 1, 0, 0, 0, 0, loc).Zone()
	return int64(offset)
}
