package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/davidbalbert/lsr/common"
	"github.com/davidbalbert/lsr/router"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every error caused by a bad value, as opposed to one caused by
// failing to read the file.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	RouterID   common.RouterID
	NSEHost    string
	NSEPort    int
	RouterPort int

	// Routers is the size of the simulated network.
	Routers int

	Journal   string
	LogFile   string
	APISocket string

	FramingErrors router.FramingPolicy

	// BootstrapTimeout bounds the wait for the circuit database. Zero waits forever.
	BootstrapTimeout time.Duration
}

func Default() *Config {
	return &Config{
		Routers:       router.DefaultRouters,
		FramingErrors: router.FramingIgnore,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}

// Load reads a YAML config file. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	s, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return Parse(string(s))
}

func Parse(s string) (*Config, error) {
	var data map[string]interface{}

	if err := yaml.Unmarshal([]byte(s), &data); err != nil {
		return nil, invalid("%v", err)
	}

	c := Default()

	for k, v := range data {
		switch k {
		case "router-id":
			id, err := intInRange(k, v, 1, math.MaxInt32)
			if err != nil {
				return nil, err
			}
			c.RouterID = common.RouterID(id)
		case "nse-host":
			host, ok := v.(string)
			if !ok || host == "" {
				return nil, invalid("nse-host must be a non-empty string")
			}
			c.NSEHost = host
		case "nse-port":
			port, err := intInRange(k, v, 1, math.MaxUint16)
			if err != nil {
				return nil, err
			}
			c.NSEPort = port
		case "router-port":
			port, err := intInRange(k, v, 1, math.MaxUint16)
			if err != nil {
				return nil, err
			}
			c.RouterPort = port
		case "routers":
			n, err := intInRange(k, v, 1, router.MaxRouters)
			if err != nil {
				return nil, err
			}
			c.Routers = n
		case "journal", "log-file", "api-socket":
			path, ok := v.(string)
			if !ok {
				return nil, invalid("%s must be a string", k)
			}

			switch k {
			case "journal":
				c.Journal = path
			case "log-file":
				c.LogFile = path
			case "api-socket":
				c.APISocket = path
			}
		case "framing-errors":
			s, ok := v.(string)
			if !ok {
				return nil, invalid("framing-errors must be a string")
			}

			p, err := ParseFramingPolicy(s)
			if err != nil {
				return nil, err
			}
			c.FramingErrors = p
		case "bootstrap-timeout":
			d, err := parseSeconds(k, v)
			if err != nil {
				return nil, err
			}
			c.BootstrapTimeout = d
		default:
			return nil, invalid("unknown key: %s", k)
		}
	}

	return c, nil
}

func intInRange(key string, v interface{}, min, max int) (int, error) {
	n, ok := v.(int)
	if !ok {
		return 0, invalid("%s must be an integer", key)
	}

	if n < min {
		return 0, invalid("%s too small: %d", key, n)
	} else if n > max {
		return 0, invalid("%s too big: %d", key, n)
	}

	return n, nil
}

func parseSeconds(key string, v interface{}) (time.Duration, error) {
	var secs float64
	switch v := v.(type) {
	case int:
		secs = float64(v)
	case float64:
		secs = v
	default:
		return 0, invalid("%s must be a number of seconds", key)
	}

	if secs < 0 {
		return 0, invalid("%s must not be negative: %v", key, v)
	}

	return time.Duration(secs * float64(time.Second)), nil
}

func ParseFramingPolicy(s string) (router.FramingPolicy, error) {
	switch s {
	case "ignore":
		return router.FramingIgnore, nil
	case "abort":
		return router.FramingAbort, nil
	default:
		return 0, invalid("framing-errors must be ignore or abort: %q", s)
	}
}

// ApplyArgs overrides the file with the daemon's positional arguments:
// router id, emulator host, emulator port, local port.
func (c *Config) ApplyArgs(args []string) error {
	if len(args) != 4 {
		return invalid("expected 4 arguments, got %d", len(args))
	}

	id, err := parseArg("router-id", args[0], 1, math.MaxInt32)
	if err != nil {
		return err
	}

	nsePort, err := parseArg("nse-port", args[2], 1, math.MaxUint16)
	if err != nil {
		return err
	}

	routerPort, err := parseArg("router-port", args[3], 1, math.MaxUint16)
	if err != nil {
		return err
	}

	if args[1] == "" {
		return invalid("nse-host must not be empty")
	}

	c.RouterID = common.RouterID(id)
	c.NSEHost = args[1]
	c.NSEPort = nsePort
	c.RouterPort = routerPort

	return nil
}

func parseArg(key, s string, min, max int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, invalid("%s must be an integer: %q", key, s)
	}

	return intInRange(key, n, min, max)
}

// Validate checks the fields that depend on each other, and that everything needed to
// start a router is present.
func (c *Config) Validate() error {
	if c.RouterID == 0 {
		return invalid("router-id is required")
	}

	if c.NSEHost == "" {
		return invalid("nse-host is required")
	}

	if c.NSEPort == 0 {
		return invalid("nse-port is required")
	}

	if c.RouterPort == 0 {
		return invalid("router-port is required")
	}

	if int(c.RouterID) > c.Routers {
		return invalid("router-id %d out of range 1..%d", c.RouterID, c.Routers)
	}

	return nil
}

// JournalPath is the configured journal, or router<id>.log.
func (c *Config) JournalPath() string {
	if c.Journal != "" {
		return c.Journal
	}

	return fmt.Sprintf("router%d.log", c.RouterID)
}
