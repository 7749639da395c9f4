// Command ioncas is a CLI for content-addressable object stores.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/bobg/subcmd"

	"github.com/ooici/cas"
	"github.com/ooici/cas/store"
	_ "github.com/ooici/cas/store/badger"
	_ "github.com/ooici/cas/store/bolt"
	_ "github.com/ooici/cas/store/bt"
	_ "github.com/ooici/cas/store/compress"
	_ "github.com/ooici/cas/store/file"
	_ "github.com/ooici/cas/store/gcs"
	_ "github.com/ooici/cas/store/logging"
	_ "github.com/ooici/cas/store/lru"
	_ "github.com/ooici/cas/store/mem"
	_ "github.com/ooici/cas/store/minio"
	_ "github.com/ooici/cas/store/namespace"
	_ "github.com/ooici/cas/store/pg"
	_ "github.com/ooici/cas/store/redis"
	_ "github.com/ooici/cas/store/replica"
	_ "github.com/ooici/cas/store/sqlite3"
)

type maincmd struct {
	s *cas.Store
	b store.Backend
}

func main() {
	var (
		configFile = flag.String("config", "casconf.json", "path to config file (.json or .toml)")
		ns         = flag.String("ns", "", "namespace (default: from config, or \"cas\")")
	)
	flag.Parse()

	if *configFile == "" {
		log.Fatal("Config value not set")
	}

	ctx := context.Background()

	c, err := loadConfig(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	if *ns != "" {
		c.namespace = *ns
	}

	b, err := c.backend(ctx)
	if err != nil {
		log.Fatal(err)
	}

	err = subcmd.Run(ctx, maincmd{s: cas.New(b, c.namespace), b: b}, flag.Args())
	if err != nil {
		log.Fatal(err)
	}
}

func (c maincmd) Subcmds() map[string]subcmd.Subcmd {
	return map[string]subcmd.Subcmd{
		"add":     c.add,
		"commit":  c.commit,
		"extract": c.extract,
		"get":     c.get,
		"log":     c.log,
		"ls":      c.ls,
		"mktree":  c.mktree,
		"put":     c.put,
		"sync":    c.sync,
		"verify":  c.verify,
	}
}
