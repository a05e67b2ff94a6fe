package cli

import (
	"fmt"
	"strconv"

	"github.com/ecanvass/hypergeom"
	"github.com/ecanvass/hypergeom/internal/config"
)

// newEngine builds an Engine from the --config file, or from defaults
// when no file is given.
func newEngine(opts *RootOptions) (*hypergeom.Engine, error) {
	cfg := hypergeom.DefaultConfig()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	return hypergeom.New(cfg)
}

// parseCount parses one query integer.
func parseCount(name, s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: not an integer", name, s)
	}
	return v, nil
}

// parseQuery parses the four positional count arguments, in the order
// k, M, sample, N. Range problems (k outside the support, N > M) are
// not rejected here; the engine resolves them to their closed-form
// probabilities.
func parseQuery(args []string) (hypergeom.Query, error) {
	names := [4]string{"k", "M", "sample", "N"}
	var vals [4]int64
	for i, a := range args {
		v, err := parseCount(names[i], a)
		if err != nil {
			return hypergeom.Query{}, err
		}
		vals[i] = v
	}
	return hypergeom.Query{K: vals[0], M: vals[1], Sample: vals[2], N: vals[3]}, nil
}
