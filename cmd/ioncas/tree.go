package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/ooici/cas"
)

// mktree reads entries from stdin, one per line, in the form
//
//	<mode> <id>\t<name>
//
// and stores the resulting tree.
func (c maincmd) mktree(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	entries, err := parseTreeEntries(os.Stdin)
	if err != nil {
		return err
	}
	tree, err := cas.NewTree(entries...)
	if err != nil {
		return errors.Wrap(err, "building tree")
	}
	id, err := c.s.Put(ctx, tree)
	if err != nil {
		return errors.Wrap(err, "storing tree")
	}
	fmt.Println(id)
	return nil
}

func parseTreeEntries(r io.Reader) ([]cas.TreeEntry, error) {
	var (
		entries []cas.TreeEntry
		sc      = bufio.NewScanner(r)
		lineno  int
	)
	for sc.Scan() {
		lineno++
		line := sc.Text()
		if line == "" {
			continue
		}
		header, name, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("line %d: no tab before name", lineno)
		}
		mode, idstr, ok := strings.Cut(header, " ")
		if !ok {
			return nil, fmt.Errorf("line %d: want \"<mode> <id>\"", lineno)
		}
		id, err := cas.IDFromHex(idstr)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineno)
		}
		entries = append(entries, cas.TreeEntry{Name: name, Mode: mode, ID: id})
	}
	return entries, errors.Wrap(sc.Err(), "reading tree entries")
}

func (c maincmd) ls(ctx context.Context, fs *flag.FlagSet, args []string) error {
	idstr := fs.String("id", "", "id of tree, or of a commit whose tree to list")
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if *idstr == "" {
		return errors.New("must supply -id")
	}

	obj, err := c.s.GetHex(ctx, *idstr)
	if err != nil {
		return errors.Wrapf(err, "getting object %s", *idstr)
	}
	if commit, ok := obj.(*cas.Commit); ok {
		obj, err = c.s.Get(ctx, commit.Tree())
		if err != nil {
			return errors.Wrapf(err, "getting tree of commit %s", *idstr)
		}
	}
	tree, ok := obj.(*cas.Tree)
	if !ok {
		return fmt.Errorf("object %s is a %s, not a tree", *idstr, obj.Type())
	}
	return writeTree(os.Stdout, tree)
}

func writeTree(w io.Writer, tree *cas.Tree) error {
	for _, e := range tree.Entries() {
		if _, err := fmt.Fprintf(w, "%s %s\t%s\n", e.Mode, e.ID, e.Name); err != nil {
			return err
		}
	}
	return nil
}
