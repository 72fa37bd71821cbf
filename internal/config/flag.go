package config

import (
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Flag is a boolean option that also accepts the quoted spellings older configuration files carry
// ("True", "false", "1", "yes"). It is decoded once here; the engine only sees real booleans.
type Flag bool

// UnmarshalYAML implements yaml.Unmarshaler. An unparseable value leaves the flag at its default
// (false) and logs a warning instead of failing the whole load.
func (f *Flag) UnmarshalYAML(node *yaml.Node) error {
	v, ok := parseFlag(node.Value)
	if !ok {
		log.WithFields(log.Fields{"value": node.Value, "line": node.Line}).Warn("unparseable flag, using false")
		*f = false
		return nil
	}
	*f = Flag(v)
	return nil
}

// On reports whether the flag is set.
func (f Flag) On() bool { return bool(f) }

func parseFlag(s string) (bool, bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "yes", "y", "on":
		return true, true
	case "no", "n", "off", "":
		return false, true
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return v, true
}
