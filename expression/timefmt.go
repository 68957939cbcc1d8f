package expression

import (
	"strconv"
	"strings"
	"time"

	strftime "github.com/ncruces/go-strftime"

	"github.com/kbukum/aggregator/document"
	"github.com/kbukum/aggregator/errors"
	"github.com/kbukum/aggregator/value"
)

const secondsPerDay = 86400

// epochSeconds reads a timestamp in seconds from a number or a numeric
// string.
func epochSeconds(op string, v value.Value) (int64, error) {
	if n, ok := v.AsInt(); ok {
		return n, nil
	}
	if s, ok := v.AsString(); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err == nil {
			return n, nil
		}
		return 0, errors.Evaluationf(op, "can't parse timestamp %q", s).WithCause(err)
	}
	return 0, errors.Evaluationf(op, "timestamp must be a number, got %s", v.Kind())
}

func zoneOf(op string, v value.Value) (*time.Location, error) {
	loc, err := LoadZone(v.String())
	if err != nil {
		return nil, errors.Evaluationf(op, "unknown zone %q", v.String()).WithCause(err)
	}
	return loc, nil
}

// buildFormatTime renders epoch seconds with a date pattern. Patterns that
// contain '%' are strftime patterns; anything else uses the
// yyyy-MM-dd HH:mm:ss letter convention.
func buildFormatTime(b *builder, op string, arg document.Node) (Expression, error) {
	exprs, err := b.span(op, arg, 2, 3, "[<timestamp>, <pattern>, <zone>]")
	if err != nil {
		return nil, err
	}
	defaultZone := b.opts.zone
	return Func(func(rec *value.Record) (value.Value, error) {
		vals, err := evalAll(exprs, rec)
		if err != nil {
			return value.Null(), err
		}
		ts, err := epochSeconds(op, vals[0])
		if err != nil {
			return value.Null(), err
		}
		loc := defaultZone
		if len(vals) == 3 {
			if loc, err = zoneOf(op, vals[2]); err != nil {
				return value.Null(), err
			}
		}
		t := time.Unix(ts, 0).In(loc)
		pattern := vals[1].String()
		if strings.ContainsRune(pattern, '%') {
			return value.String(strftime.Format(pattern, t)), nil
		}
		out, err := formatLetters(pattern, t)
		if err != nil {
			return value.Null(), errors.Evaluation(op, err.Error())
		}
		return value.String(out), nil
	}), nil
}

// buildDay truncates a timestamp to the start of its day. The zone is fixed
// at build time and only its standard offset is applied.
func buildDay(b *builder, op string, arg document.Node) (Expression, error) {
	tsNode := arg
	offset := standardOffset(b.opts.zone)
	if arg.Kind() == document.Array {
		if arg.Len() < 1 || arg.Len() > 2 {
			return nil, errors.Buildf(op, "[<timestamp>, <zone>] - invalid parameters")
		}
		tsNode = arg.Items()[0]
		if arg.Len() == 2 {
			name, ok := arg.Items()[1].Str()
			if !ok {
				return nil, errors.Buildf(op, "zone must be a string, got %s", arg.Items()[1].String())
			}
			loc, err := LoadZone(name)
			if err != nil {
				return nil, errors.Buildf(op, "unknown zone %q", name).WithCause(err)
			}
			offset = standardOffset(loc)
		}
	}
	ts, err := b.build(tsNode)
	if err != nil {
		return nil, err
	}
	return Func(func(rec *value.Record) (value.Value, error) {
		v, err := ts.Evaluate(rec)
		if err != nil {
			return value.Null(), err
		}
		sec, err := epochSeconds(op, v)
		if err != nil {
			return value.Null(), err
		}
		return value.Int(sec - (sec+offset)%secondsPerDay), nil
	}), nil
}

// buildBetween counts the calendar days from the second timestamp to the
// first, both read in the same zone.
func buildBetween(b *builder, op string, arg document.Node) (Expression, error) {
	exprs, err := b.span(op, arg, 2, 3, "[<timestamp1>, <timestamp2>, <zone>]")
	if err != nil {
		return nil, err
	}
	defaultZone := b.opts.zone
	return Func(func(rec *value.Record) (value.Value, error) {
		vals, err := evalAll(exprs, rec)
		if err != nil {
			return value.Null(), err
		}
		t1, err := epochSeconds(op, vals[0])
		if err != nil {
			return value.Null(), err
		}
		t2, err := epochSeconds(op, vals[1])
		if err != nil {
			return value.Null(), err
		}
		loc := defaultZone
		if len(vals) == 3 {
			if loc, err = zoneOf(op, vals[2]); err != nil {
				return value.Null(), err
			}
		}
		return value.Int(civilDay(t1, loc) - civilDay(t2, loc)), nil
	}), nil
}

// civilDay numbers the calendar date of ts in loc as days since 1970-01-01.
func civilDay(ts int64, loc *time.Location) int64 {
	y, m, d := time.Unix(ts, 0).In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}
