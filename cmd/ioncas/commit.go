package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/ooici/cas"
)

func (c maincmd) commit(ctx context.Context, fs *flag.FlagSet, args []string) error {
	var (
		treestr = fs.String("tree", "", "id of the commit's tree")
		msg     = fs.String("m", "", "log message")
		parents []cas.ID
		extra   = make(map[string]string)
	)
	fs.Func("parent", "id of a parent commit (repeatable)", func(s string) error {
		id, err := cas.IDFromHex(s)
		if err != nil {
			return err
		}
		parents = append(parents, id)
		return nil
	})
	fs.Func("meta", "key=value metadata (repeatable)", func(s string) error {
		k, v, ok := strings.Cut(s, "=")
		if !ok {
			return fmt.Errorf("metadata %q is not key=value", s)
		}
		extra[k] = v
		return nil
	})
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if *treestr == "" {
		return errors.New("must supply -tree")
	}

	tree, err := cas.IDFromHex(*treestr)
	if err != nil {
		return errors.Wrap(err, "parsing -tree")
	}
	commit, err := cas.NewCommit(tree, parents, *msg, extra)
	if err != nil {
		return errors.Wrap(err, "building commit")
	}
	id, err := c.s.Put(ctx, commit)
	if err != nil {
		return errors.Wrap(err, "storing commit")
	}
	fmt.Println(id)
	return nil
}

func (c maincmd) log(ctx context.Context, fs *flag.FlagSet, args []string) error {
	idstr := fs.String("id", "", "id of the newest commit")
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if *idstr == "" {
		return errors.New("must supply -id")
	}

	head, err := cas.IDFromHex(*idstr)
	if err != nil {
		return errors.Wrap(err, "parsing -id")
	}
	return c.s.Log(ctx, head, func(id cas.ID, commit *cas.Commit) error {
		return writeCommit(os.Stdout, id, commit)
	})
}

func writeCommit(w io.Writer, id cas.ID, commit *cas.Commit) error {
	var b strings.Builder
	fmt.Fprintf(&b, "commit %s\n", id)
	fmt.Fprintf(&b, "tree %s\n", commit.Tree())
	for _, p := range commit.Parents() {
		fmt.Fprintf(&b, "parent %s\n", p)
	}
	for _, f := range commit.Fields() {
		fmt.Fprintf(&b, "%s %s\n", f.Key, f.Value)
	}
	b.WriteString("\n")
	for _, line := range strings.Split(commit.Log(), "\n") {
		fmt.Fprintf(&b, "    %s\n", line)
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}
