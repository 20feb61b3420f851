package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/tictable/testhelpers"
)

func TestLevelCounts(t *testing.T) {
	is := is.New(t)
	exported := testhelpers.Compiled(3)

	counts := levelCounts(exported, 3)
	is.Equal(counts, []int{1, 9, 72, 252, 756, 1260, 1520, 1140, 390, 78})

	var buf bytes.Buffer
	is.NoErr(printLevels(&buf, exported, 3))
	is.True(strings.HasPrefix(buf.String(), "level  0: 1\n"))
	is.True(strings.Contains(buf.String(), "level  6: 1,520\n"))
}
