package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/ooici/cas"
)

func (c maincmd) put(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	var data []byte
	if fs.NArg() > 0 {
		data, err = os.ReadFile(fs.Arg(0))
		if err != nil {
			return errors.Wrapf(err, "reading %s", fs.Arg(0))
		}
	} else {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return errors.Wrap(err, "reading stdin")
		}
	}

	id, err := c.s.Put(ctx, cas.NewBlob(data))
	if err != nil {
		return errors.Wrap(err, "storing blob")
	}
	fmt.Println(id)
	return nil
}
