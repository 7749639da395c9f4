package cas

import (
	"bytes"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Field is one metadata line of a commit.
type Field struct {
	Key, Value string
}

// Commit records a tree, the commits it descends from, a log message,
// and optional metadata fields.
//
// Its body is:
//
//	tree <hex id>
//	parent <hex id>      (zero or more)
//	<key> <value>        (zero or more)
//
//	<log message>
//
// The first empty line ends the header,
// so the log message may contain anything, including more empty lines.
type Commit struct {
	tree    ID
	parents []ID
	fields  []Field
	log     string
	e       encoding
}

var _ Object = (*Commit)(nil)

// NewCommit produces a Commit.
// Extra metadata is encoded in key order.
// It is an ErrInvalid error for a metadata key to be empty,
// to contain a space or newline,
// or to be "tree" or "parent";
// or for a value to contain a newline.
func NewCommit(tree ID, parents []ID, log string, extra map[string]string) (*Commit, error) {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		v := extra[k]
		switch {
		case k == "":
			return nil, errors.Wrap(ErrInvalid, "empty commit metadata key")
		case k == "tree" || k == "parent":
			return nil, errors.Wrapf(ErrInvalid, "reserved commit metadata key %q", k)
		case strings.ContainsAny(k, " \n"):
			return nil, errors.Wrapf(ErrInvalid, "commit metadata key %q contains a space or newline", k)
		case strings.Contains(v, "\n"):
			return nil, errors.Wrapf(ErrInvalid, "commit metadata value for %q contains a newline", k)
		}
		fields = append(fields, Field{Key: k, Value: v})
	}

	return newCommit(tree, parents, fields, log), nil
}

func newCommit(tree ID, parents []ID, fields []Field, log string) *Commit {
	c := &Commit{tree: tree, log: log}
	if len(parents) > 0 {
		c.parents = make([]ID, len(parents))
		copy(c.parents, parents)
	}
	if len(fields) > 0 {
		c.fields = make([]Field, len(fields))
		copy(c.fields, fields)
	}
	return c
}

// Tree is the ID of the commit's tree.
func (c *Commit) Tree() ID { return c.tree }

// Parents returns the commit's parent IDs in order.
func (c *Commit) Parents() []ID {
	out := make([]ID, len(c.parents))
	copy(out, c.parents)
	return out
}

// Log is the commit's log message.
func (c *Commit) Log() string { return c.log }

// Fields returns the commit's metadata in encoding order.
func (c *Commit) Fields() []Field {
	out := make([]Field, len(c.fields))
	copy(out, c.fields)
	return out
}

// Extra returns the commit's metadata as a map.
// If a key repeats, the last value wins.
func (c *Commit) Extra() map[string]string {
	out := make(map[string]string, len(c.fields))
	for _, f := range c.fields {
		out[f.Key] = f.Value
	}
	return out
}

// Type implements Object.
func (c *Commit) Type() string { return TypeCommit }

// Encode implements Object.
func (c *Commit) Encode() []byte { return c.e.encode(TypeCommit, c.body) }

// ID implements Object.
func (c *Commit) ID() ID { return c.e.ident(TypeCommit, c.body) }

func (c *Commit) body() []byte {
	buf := new(bytes.Buffer)
	buf.WriteString("tree " + c.tree.String() + "\n")
	for _, p := range c.parents {
		buf.WriteString("parent " + p.String() + "\n")
	}
	for _, f := range c.fields {
		buf.WriteString(f.Key + " " + f.Value + "\n")
	}
	buf.WriteByte('\n')
	buf.WriteString(c.log)
	return buf.Bytes()
}

func commitBody(body []byte) (*Commit, error) {
	var (
		lines   = strings.Split(string(body), "\n")
		tree    ID
		hasTree bool
		parents []ID
		fields  []Field
	)
	for {
		if len(lines) == 0 {
			return nil, errors.Wrap(ErrFormat, "commit header has no terminating empty line")
		}
		line := lines[0]
		lines = lines[1:]
		if line == "" {
			break
		}
		word, rest, ok := strings.Cut(line, " ")
		if !ok {
			return nil, errors.Wrapf(ErrFormat, "commit header line %q has no value", line)
		}
		switch word {
		case "tree":
			if hasTree {
				return nil, errors.Wrap(ErrFormat, "commit has more than one tree line")
			}
			id, err := lowerHexID(rest)
			if err != nil {
				return nil, errors.Wrap(err, "parsing commit tree")
			}
			tree, hasTree = id, true

		case "parent":
			id, err := lowerHexID(rest)
			if err != nil {
				return nil, errors.Wrap(err, "parsing commit parent")
			}
			parents = append(parents, id)

		default:
			fields = append(fields, Field{Key: word, Value: rest})
		}
	}
	if !hasTree {
		return nil, errors.Wrap(ErrFormat, "commit has no tree line")
	}
	return newCommit(tree, parents, fields, strings.Join(lines, "\n")), nil
}

// lowerHexID parses an ID written the way Commit encodes one.
func lowerHexID(s string) (ID, error) {
	if strings.ContainsAny(s, "ABCDEF") {
		return Zero, errors.Wrapf(ErrFormat, "id %q is not lowercase", s)
	}
	return IDFromHex(s)
}
