package redis

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/ooici/cas/testutil"
)

const addrVar = "CAS_REDIS_TESTING_ADDR"

func TestStore(t *testing.T) {
	addr := os.Getenv(addrVar)
	if addr == "" {
		t.Skipf("to run %s, set %s to the address of a Redis server", t.Name(), addrVar)
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatal(err)
	}

	testutil.Backend(ctx, t, New(client))
}

func TestGlobEscape(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{in: "", want: ""},
		{in: "ns.objs.", want: "ns.objs."},
		{in: "a*b?c[d]", want: `a\*b\?c\[d\]`},
		{in: `x\y`, want: `x\\y`},
	}
	for _, c := range cases {
		if got := globEscape(c.in); got != c.want {
			t.Errorf("globEscape(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
