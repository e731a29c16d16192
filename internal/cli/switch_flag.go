package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

const (
	switchTypeName         = "bool"
	switchEnabledLiteral   = "true"
	switchLiteralListing   = "true, false, yes, no, on, off, 1, 0"
	switchValueErrorFormat = "invalid value %q for --%s; accepted values: %s"
	longFlagPrefix         = "--"
	flagValueSeparator     = "="
	argumentTerminator     = "--"
)

var switchLiterals = map[string]bool{
	"true":  true,
	"yes":   true,
	"on":    true,
	"1":     true,
	"false": false,
	"no":    false,
	"off":   false,
	"0":     false,
}

func parseSwitchLiteral(text string) (bool, bool) {
	enabled, known := switchLiterals[strings.ToLower(strings.TrimSpace(text))]
	return enabled, known
}

// switchValue backs on/off flags such as --git and --no-prompt. A bare flag turns
// the switch on; --name=<literal> sets it from switchLiterals.
type switchValue struct {
	name    string
	enabled *bool
}

func (value *switchValue) Set(text string) error {
	if strings.TrimSpace(text) == "" {
		*value.enabled = true
		return nil
	}
	enabled, known := parseSwitchLiteral(text)
	if !known {
		return fmt.Errorf(switchValueErrorFormat, text, value.name, switchLiteralListing)
	}
	*value.enabled = enabled
	return nil
}

func (value *switchValue) String() string {
	if value.enabled == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.enabled)
}

func (value *switchValue) Type() string {
	return switchTypeName
}

func registerSwitch(flagSet *pflag.FlagSet, target *bool, name string, usage string) {
	flagSet.Var(&switchValue{name: name, enabled: target}, name, usage)
	registered := flagSet.Lookup(name)
	registered.DefValue = strconv.FormatBool(*target)
	registered.NoOptDefVal = switchEnabledLiteral
}

// joinSwitchLiterals rewrites "--name literal" into "--name=literal" for switches.
// A literal that names an existing path stays a positional include pattern, and
// nothing after the "--" terminator is touched.
func joinSwitchLiterals(flagSet *pflag.FlagSet, arguments []string, pathExists func(string) bool) []string {
	switches := switchNames(flagSet)
	joined := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == argumentTerminator {
			return append(joined, arguments[index:]...)
		}
		if index+1 < len(arguments) && takesSwitchLiteral(switches, argument, arguments[index+1], pathExists) {
			joined = append(joined, argument+flagValueSeparator+arguments[index+1])
			index++
			continue
		}
		joined = append(joined, argument)
	}
	return joined
}

func takesSwitchLiteral(switches map[string]struct{}, argument string, next string, pathExists func(string) bool) bool {
	if !strings.HasPrefix(argument, longFlagPrefix) || strings.Contains(argument, flagValueSeparator) {
		return false
	}
	if _, isSwitch := switches[canonicalFlagName(strings.TrimPrefix(argument, longFlagPrefix))]; !isSwitch {
		return false
	}
	if _, known := parseSwitchLiteral(next); !known {
		return false
	}
	return pathExists == nil || !pathExists(next)
}

func switchNames(flagSet *pflag.FlagSet) map[string]struct{} {
	names := map[string]struct{}{}
	flagSet.VisitAll(func(flag *pflag.Flag) {
		if _, isSwitch := flag.Value.(*switchValue); isSwitch {
			names[flag.Name] = struct{}{}
		}
	})
	return names
}
