package accumulator

import (
	"github.com/kbukum/aggregator/collection"
	"github.com/kbukum/aggregator/document"
	"github.com/kbukum/aggregator/errors"
	"github.com/kbukum/aggregator/value"
)

type skipStage struct {
	next    Stage
	buf     buffer
	pending int64
}

func newSkipStage(next Stage, body document.Node, _ *builder) (Stage, error) {
	n, err := count(StageSkip, body)
	if err != nil {
		return nil, err
	}
	return &skipStage{next: next, pending: n}, nil
}

func (s *skipStage) Put(rec *value.Record) error {
	if s.pending > 0 {
		s.pending--
		return nil
	}
	return forward(s.next, &s.buf, rec)
}

func (s *skipStage) Get() (collection.Collection, error) { return drain(s.next, &s.buf) }

type limitStage struct {
	next  Stage
	buf   buffer
	limit int64
	seen  int64
}

func newLimitStage(next Stage, body document.Node, _ *builder) (Stage, error) {
	n, err := count(StageLimit, body)
	if err != nil {
		return nil, err
	}
	return &limitStage{next: next, limit: n}, nil
}

func (s *limitStage) Put(rec *value.Record) error {
	if s.seen >= s.limit {
		return nil
	}
	s.seen++
	return forward(s.next, &s.buf, rec)
}

func (s *limitStage) Get() (collection.Collection, error) { return drain(s.next, &s.buf) }

func count(stage string, body document.Node) (int64, error) {
	n, ok := body.Number()
	if !ok {
		return 0, errors.Buildf(stage, "<positive integer> - invalid parameters, got %s", body.String())
	}
	return int64(n), nil
}
