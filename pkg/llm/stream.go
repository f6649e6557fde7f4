package llm

import (
	"errors"
	"io"
)

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}

// SliceStream adapts a fixed fragment list to the Stream interface. Used by
// tests and by providers that buffer whole responses.
type SliceStream struct {
	fragments []string
	pos       int
	err       error
}

func NewSliceStream(fragments []string) *SliceStream {
	return &SliceStream{fragments: fragments}
}

// NewErrorStream yields the given fragments and then fails with err instead
// of a clean end of stream.
func NewErrorStream(fragments []string, err error) *SliceStream {
	return &SliceStream{fragments: fragments, err: err}
}

func (s *SliceStream) Recv() (string, error) {
	if s.pos >= len(s.fragments) {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	fragment := s.fragments[s.pos]
	s.pos++
	return fragment, nil
}

func (s *SliceStream) Close() error {
	return nil
}
