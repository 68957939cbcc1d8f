package expression

import (
	"testing"
	"time"

	"github.com/kbukum/aggregator/value"
)

// 2023-11-14 22:13:20 UTC
const sampleTS = 1700000000

func TestFormatTime(t *testing.T) {
	rec := value.NewRecord(2)
	rec.Set("t", value.Int(sampleTS))
	rec.Set("ts", value.String("1700000000"))

	tests := []struct {
		desc string
		want string
	}{
		{`{"$formattime": ["$t", "yyyy-MM-dd HH:mm:ss"]}`, "2023-11-14 22:13:20"},
		{`{"$formattime": ["$ts", "yyyy-MM-dd HH:mm:ss"]}`, "2023-11-14 22:13:20"},
		{`{"$formattime": ["$t", "yyyy-MM-dd HH:mm", "GMT+8"]}`, "2023-11-15 06:13"},
		{`{"$formattime": ["$t", "yyMMdd'T'HH 'o''clock'"]}`, "231114T22 o'clock"},
		{`{"$formattime": ["$t", "EEE, d MMM yyyy h a"]}`, "Tue, 14 Nov 2023 10 PM"},
		{`{"$formattime": ["$t", "%Y/%m/%d %H:%M"]}`, "2023/11/14 22:13"},
		{`{"$formattime": ["$t", "%Y-%m-%d", "Asia/Tokyo"]}`, "2023-11-15"},
	}
	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			assertValue(t, value.String(tc.want), eval(t, tc.desc, rec))
		})
	}
}

func TestFormatTime_DefaultZone(t *testing.T) {
	rec := value.NewRecord(1)
	rec.Set("t", value.Int(sampleTS))
	loc := time.FixedZone("plus2", 2*3600)
	got := eval(t, `{"$formattime": ["$t", "HH:mm"]}`, rec, WithDefaultZone(loc))
	assertValue(t, value.String("00:13"), got)
}

func TestDay(t *testing.T) {
	rec := value.NewRecord(1)
	rec.Set("t", value.Int(sampleTS))
	tests := []struct {
		desc string
		want int64
	}{
		{`{"$day": "$t"}`, 1699920000},
		{`{"$day": ["$t"]}`, 1699920000},
		{`{"$day": ["$t", "GMT+8"]}`, 1699977600},
		{`{"$day": ["$t", "UTC-05:00"]}`, 1699938000},
	}
	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			assertValue(t, value.Int(tc.want), eval(t, tc.desc, rec))
		})
	}
}

func TestBetween(t *testing.T) {
	rec := value.NewRecord(3)
	rec.Set("t1", value.Int(sampleTS))
	rec.Set("t2", value.Int(1699920000))
	rec.Set("past", value.Int(sampleTS-3*86400))

	tests := []struct {
		desc string
		want int64
	}{
		{`{"$between": ["$t1", "$past"]}`, 3},
		{`{"$between": ["$past", "$t1"]}`, -3},
		{`{"$between": ["$t1", "$t2"]}`, 0},
		{`{"$between": ["$t1", "$t2", "GMT+8"]}`, 1},
	}
	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			assertValue(t, value.Int(tc.want), eval(t, tc.desc, rec))
		})
	}
}

func TestLoadZone(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		ok     bool
	}{
		{"UTC", 0, true},
		{"GMT", 0, true},
		{"GMT+8", 8 * 3600, true},
		{"GMT-03:30", -(3*3600 + 30*60), true},
		{"+0530", 5*3600 + 30*60, true},
		{"UTC+25", 0, false},
		{"Not/AZone", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			loc, err := LoadZone(tc.name)
			if !tc.ok {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			_, offset := time.Unix(sampleTS, 0).In(loc).Zone()
			if offset != tc.offset {
				t.Errorf("offset = %d, want %d", offset, tc.offset)
			}
		})
	}
}

func TestLetterLayout(t *testing.T) {
	at := time.Unix(sampleTS, 0).UTC()
	tests := []struct {
		pattern string
		want    string
	}{
		{"yyyy-MM-dd HH:mm:ss", "%Y-%m-%d %H:%M:%S"},
		{"EEE, d MMM yyyy h a", "%a, %-d %b %Y %-I %p"},
		{"yyMMdd'T'HH 'o''clock'", "%y%m%dT%H o'clock"},
		{"EEEE MMMM D", "%A %B %-j"},
		{"G kk KK", "AD 22 10"},
		{"HH:mm:ss.SSS XXX", "%H:%M:%S.%L %:z"},
	}
	for _, tc := range tests {
		t.Run(tc.pattern, func(t *testing.T) {
			got, err := letterLayout(tc.pattern, at)
			if err != nil {
				t.Fatalf("letterLayout: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatLetters(t *testing.T) {
	at := time.Date(2023, 11, 14, 22, 13, 20, 5*int(time.Millisecond), time.FixedZone("CET", 3600))
	tests := []struct {
		pattern string
		want    string
	}{
		{"HH:mm:ss.SSS XXX", "22:13:20.005 +01:00"},
		{"yyyy-MM-dd'T'HH:mm:ssZ", "2023-11-14T22:13:20+0100"},
		{"EEEE d MMMM, h:mm a z", "Tuesday 14 November, 10:13 PM CET"},
		{"D 'of' yyyy", "318 of 2023"},
	}
	for _, tc := range tests {
		t.Run(tc.pattern, func(t *testing.T) {
			got, err := formatLetters(tc.pattern, at)
			if err != nil {
				t.Fatalf("formatLetters: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}

	if _, err := formatLetters("yyyy q", at); err == nil {
		t.Error("expected an error for an unsupported letter")
	}
}
