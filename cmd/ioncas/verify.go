package main

import (
	"context"
	"flag"
	"log"
	"regexp"

	"github.com/pkg/errors"

	"github.com/ooici/cas/store"
)

func (c maincmd) verify(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if err := c.s.Verify(ctx); err != nil {
		return err
	}
	log.Print("all objects verified")
	return nil
}

// sync copies the objects of this namespace between the configured backend
// and the backends of the config files named as arguments,
// so that each ends up with all of them.
func (c maincmd) sync(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	backends := []store.Backend{c.b}
	for _, arg := range fs.Args() {
		other, err := loadConfig(arg)
		if err != nil {
			return errors.Wrapf(err, "reading %s", arg)
		}
		ob, err := other.backend(ctx)
		if err != nil {
			return err
		}
		backends = append(backends, ob)
	}

	pattern := "^" + regexp.QuoteMeta(c.s.Namespace()+".objs.")
	n, err := store.Sync(ctx, pattern, backends)
	if err != nil {
		return errors.Wrap(err, "syncing")
	}
	log.Printf("copied %d objects", n)
	return nil
}
