package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/ooici/cas/store"
)

const defaultNamespace = "cas"

type config struct {
	filename  string
	namespace string
	conf      map[string]interface{}
}

// loadConfig reads a backend config map from a JSON file,
// or a TOML file if the name ends in .toml.
// The map's "type" names the backend;
// an optional "namespace" sets the object namespace.
func loadConfig(filename string) (*config, error) {
	var conf map[string]interface{}

	if strings.HasSuffix(filename, ".toml") {
		if _, err := toml.DecodeFile(filename, &conf); err != nil {
			return nil, errors.Wrapf(err, "decoding config file %s", filename)
		}
	} else {
		f, err := os.Open(filename)
		if err != nil {
			return nil, errors.Wrapf(err, "opening config file %s", filename)
		}
		defer f.Close()

		dec := json.NewDecoder(f)
		dec.UseNumber()
		if err := dec.Decode(&conf); err != nil {
			return nil, errors.Wrapf(err, "decoding config file %s", filename)
		}
	}

	if _, ok := conf["type"].(string); !ok {
		return nil, fmt.Errorf("config file %s missing `type` parameter", filename)
	}

	ns, ok := conf["namespace"].(string)
	if !ok {
		ns = defaultNamespace
	}
	return &config{filename: filename, namespace: ns, conf: conf}, nil
}

func (c *config) backend(ctx context.Context) (store.Backend, error) {
	typ := c.conf["type"].(string)
	b, err := store.Create(ctx, typ, c.conf)
	return b, errors.Wrapf(err, "creating %s-type store from %s", typ, c.filename)
}
