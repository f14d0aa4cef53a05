package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

const (
	switchFlagTypeName       = "bool"
	switchFlagTrueLiteral    = "true"
	switchFlagAcceptedValues = "true, false, yes, no, on, off, 1, 0"
	errorSwitchValueFormat   = "invalid boolean value %q for --%s; accepted values: %s"
)

var switchFlagLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

// switchValue is a boolean flag that also accepts yes/no and on/off after an equals sign,
// so a configuration default of true can be turned off with --flag=no.
type switchValue struct {
	target   *bool
	flagName string
}

func (value *switchValue) Set(input string) error {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		normalized = switchFlagTrueLiteral
	}
	parsed, ok := switchFlagLiterals[normalized]
	if !ok {
		return fmt.Errorf(errorSwitchValueFormat, input, value.flagName, switchFlagAcceptedValues)
	}
	*value.target = parsed
	return nil
}

func (value *switchValue) String() string {
	if value == nil || value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *switchValue) Type() string {
	return switchFlagTypeName
}

func registerSwitch(flagSet *pflag.FlagSet, target *bool, name string, usage string) {
	*target = false
	flagSet.Var(&switchValue{target: target, flagName: name}, name, usage)
	if flag := flagSet.Lookup(name); flag != nil {
		flag.DefValue = strconv.FormatBool(false)
		flag.NoOptDefVal = switchFlagTrueLiteral
	}
}
