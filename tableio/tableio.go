// Package tableio reads and writes exported solution tables.
//
// A written table is an envelope holding the board size, the nodes in
// ascending id order and an xxhash64 checksum of the nodes. The checksum
// does not depend on the format, so a table written as YAML and one
// written as JSON carry the same value.
package tableio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/domino14/tictable/graph"
	"github.com/domino14/tictable/state"
)

type Format string

const (
	FormatNone Format = "none"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	ErrChecksum  = errors.New("checksum mismatch")
	ErrFormat    = errors.New("unknown table format")
	ErrDuplicate = errors.New("duplicate node")
	ErrBadNode   = errors.New("malformed node")
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatNone, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrFormat, s)
}

// Table is a decoded export.
type Table struct {
	BoardSize int
	Nodes     map[string]*graph.Node
}

type envelope struct {
	BoardSize int           `json:"board_size" yaml:"board_size"`
	Checksum  string        `json:"checksum" yaml:"checksum"`
	Nodes     []*graph.Node `json:"nodes" yaml:"nodes"`
}

func sorted(nodes map[string]*graph.Node) []*graph.Node {
	list := lo.Values(nodes)
	sort.Slice(list, func(i, j int) bool { return list[i].ID.Less(list[j].ID) })
	return list
}

// Checksum hashes the nodes in ascending id order.
func Checksum(nodes map[string]*graph.Node) uint64 {
	return checksum(sorted(nodes))
}

func checksum(list []*graph.Node) uint64 {
	d := xxhash.New()
	var buf []byte
	for _, n := range list {
		buf = buf[:0]
		buf = append(buf, n.ID.String()...)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, int64(n.Level), 10)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, int64(n.Score), 10)
		buf = appendIDs(append(buf, '|'), n.Parents)
		buf = appendIDs(append(buf, '|'), n.Children)
		buf = append(buf, '\n')
		d.Write(buf)
	}
	return d.Sum64()
}

func appendIDs(buf []byte, ids []state.ID) []byte {
	for i, id := range ids {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, id.String()...)
	}
	return buf
}

// Write encodes the table to w in format f. FormatNone writes nothing.
func Write(w io.Writer, boardSize int, nodes map[string]*graph.Node, f Format) error {
	list := sorted(nodes)
	env := envelope{
		BoardSize: boardSize,
		Checksum:  strconv.FormatUint(checksum(list), 16),
		Nodes:     list,
	}
	var err error
	switch f {
	case FormatNone:
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		err = enc.Encode(env)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(env); err == nil {
			err = enc.Close()
		}
	default:
		return fmt.Errorf("%w: %q", ErrFormat, f)
	}
	if err != nil {
		return err
	}
	log.Debug().Int("nodes", len(list)).Str("format", string(f)).Str("checksum", env.Checksum).Msg("table-written")
	return nil
}

// Read decodes a table written by Write and checks its checksum.
func Read(r io.Reader, f Format) (*Table, error) {
	var env envelope
	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&env)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&env)
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, f)
	}
	if err != nil {
		return nil, err
	}
	for i, n := range env.Nodes {
		if n == nil {
			return nil, fmt.Errorf("%w: entry %d is empty", ErrBadNode, i)
		}
	}

	sort.Slice(env.Nodes, func(i, j int) bool { return env.Nodes[i].ID.Less(env.Nodes[j].ID) })
	sum := strconv.FormatUint(checksum(env.Nodes), 16)
	if sum != env.Checksum {
		return nil, fmt.Errorf("%w: have %s, computed %s", ErrChecksum, env.Checksum, sum)
	}
	t := &Table{BoardSize: env.BoardSize, Nodes: make(map[string]*graph.Node, len(env.Nodes))}
	for _, n := range env.Nodes {
		key := n.ID.String()
		if _, ok := t.Nodes[key]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, key)
		}
		t.Nodes[key] = n
	}
	return t, nil
}
