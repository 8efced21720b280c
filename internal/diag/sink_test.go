package diag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkKeepsNewestFirst(t *testing.T) {
	s := NewSink(nil, 3)
	for i := 1; i <= 5; i++ {
		s.Report("visitor", fmt.Errorf("failure %d", i))
	}
	s.Report("visitor", nil)

	recent := s.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "failure 5", recent[0].Message)
	assert.Equal(t, "failure 3", recent[2].Message)
	assert.Equal(t, int64(5), s.Total())
}

func TestSinkPartiallyFilled(t *testing.T) {
	s := NewSink(nil, 10)
	s.Report("geo", errors.New("timeout"))

	recent := s.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, "geo", recent[0].Source)
	assert.False(t, recent[0].Timestamp.IsZero())
}
