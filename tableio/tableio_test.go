package tableio

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/domino14/tictable/graph"
	"github.com/domino14/tictable/testhelpers"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func sameTable(is *is.I, got, want map[string]*graph.Node) {
	is.Helper()
	is.Equal(len(got), len(want))
	for key, w := range want {
		g, ok := got[key]
		is.True(ok)
		is.Equal(g.ID, w.ID)
		is.Equal(g.Level, w.Level)
		is.Equal(g.Score, w.Score)
		is.Equal(len(g.Parents), len(w.Parents))
		for i := range w.Parents {
			is.Equal(g.Parents[i], w.Parents[i])
		}
		is.Equal(len(g.Children), len(w.Children))
		for i := range w.Children {
			is.Equal(g.Children[i], w.Children[i])
		}
	}
}

func TestRoundTrip(t *testing.T) {
	is := is.New(t)
	for _, f := range []Format{FormatJSON, FormatYAML} {
		for _, size := range []int{2, 3} {
			nodes := testhelpers.Compiled(size)
			var buf bytes.Buffer
			is.NoErr(Write(&buf, size, nodes, f))
			table, err := Read(&buf, f)
			is.NoErr(err)
			is.Equal(table.BoardSize, size)
			sameTable(is, table.Nodes, nodes)
			is.Equal(Checksum(table.Nodes), Checksum(nodes))
		}
	}
}

func TestNodesAreWrittenInIDOrder(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	is.NoErr(Write(&buf, 2, testhelpers.Compiled(2), FormatJSON))
	var env envelope
	is.NoErr(json.Unmarshal(buf.Bytes(), &env))
	is.Equal(len(env.Nodes), 29)
	for i := 1; i < len(env.Nodes); i++ {
		is.True(env.Nodes[i-1].ID.Less(env.Nodes[i].ID))
	}
	is.True(env.Nodes[0].ID.IsZero())
}

func TestTamperedTableIsRejected(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	is.NoErr(Write(&buf, 3, testhelpers.Compiled(3), FormatJSON))

	var env envelope
	is.NoErr(json.Unmarshal(buf.Bytes(), &env))
	env.Nodes[0].Score = graph.WinScore
	tampered, err := json.Marshal(env)
	is.NoErr(err)

	_, err = Read(bytes.NewReader(tampered), FormatJSON)
	is.True(errors.Is(err, ErrChecksum))
}

func TestNullNodeIsRejected(t *testing.T) {
	is := is.New(t)
	for _, doc := range []string{
		`{"board_size":3,"checksum":"x","nodes":[null]}`,
		`{"board_size":3,"checksum":"x","nodes":[null,{"id":"1"}]}`,
	} {
		_, err := Read(strings.NewReader(doc), FormatJSON)
		is.True(errors.Is(err, ErrBadNode))
	}
	_, err := Read(strings.NewReader("board_size: 3\nchecksum: x\nnodes:\n  - null\n"), FormatYAML)
	is.True(errors.Is(err, ErrBadNode))
}

func TestChecksumIgnoresFormat(t *testing.T) {
	is := is.New(t)
	nodes := testhelpers.Compiled(2)
	var j, y bytes.Buffer
	is.NoErr(Write(&j, 2, nodes, FormatJSON))
	is.NoErr(Write(&y, 2, nodes, FormatYAML))

	var fromJSON, fromYAML envelope
	is.NoErr(json.Unmarshal(j.Bytes(), &fromJSON))
	is.NoErr(yaml.Unmarshal(y.Bytes(), &fromYAML))
	is.Equal(fromJSON.Checksum, fromYAML.Checksum)
	is.True(fromJSON.Checksum != "")
}

func TestFormats(t *testing.T) {
	is := is.New(t)
	for _, s := range []string{"none", "json", "yaml"} {
		f, err := ParseFormat(s)
		is.NoErr(err)
		is.Equal(string(f), s)
	}
	_, err := ParseFormat("xml")
	is.True(errors.Is(err, ErrFormat))

	var buf bytes.Buffer
	is.NoErr(Write(&buf, 3, testhelpers.Compiled(1), FormatNone))
	is.Equal(buf.Len(), 0)
	_, err = Read(&buf, FormatNone)
	is.True(errors.Is(err, ErrFormat))
}
