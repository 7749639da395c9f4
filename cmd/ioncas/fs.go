package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/ooici/cas/fs"
)

func (c maincmd) add(ctx context.Context, fset *flag.FlagSet, args []string) error {
	err := fset.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	args = fset.Args()
	if len(args) != 1 {
		return errors.New("usage: add DIR")
	}

	id, err := fs.Ingest(ctx, c.s, args[0])
	if err != nil {
		return errors.Wrapf(err, "adding %s", args[0])
	}
	fmt.Println(id)
	return nil
}

func (c maincmd) extract(ctx context.Context, fset *flag.FlagSet, args []string) error {
	var (
		idstr = fset.String("id", "", "id of tree to extract")
		dest  = fset.String("dir", ".", "destination directory")
	)
	err := fset.Parse(args)
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
	return fs.Extract(ctx, c.s, obj.ID(), *dest)
}
