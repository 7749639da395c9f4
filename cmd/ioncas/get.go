package main

import (
	"context"
	"flag"
	"os"

	"github.com/pkg/errors"

	"github.com/ooici/cas"
)

func (c maincmd) get(ctx context.Context, fs *flag.FlagSet, args []string) error {
	var (
		idstr = fs.String("id", "", "id of object to get")
		raw   = fs.Bool("raw", false, "write the canonical encoding instead of the content")
	)
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

	if *raw {
		_, err = os.Stdout.Write(obj.Encode())
		return errors.Wrap(err, "writing object to stdout")
	}

	switch obj := obj.(type) {
	case *cas.Blob:
		_, err = os.Stdout.Write(obj.Content())
	case *cas.Tree:
		err = writeTree(os.Stdout, obj)
	case *cas.Commit:
		err = writeCommit(os.Stdout, obj.ID(), obj)
	default:
		_, err = os.Stdout.Write(obj.Encode())
	}
	return errors.Wrap(err, "writing object to stdout")
}
