package conf

import (
	"fmt"
	"strings"

	"gopkg.in/alecthomas/kingpin.v2"
)

const stringListDelimiter = ","

// StringListVar is a custom kingpin parser which resolves flag's parameters which consist of
// a string slice delimited by `stringListDelimiter`.
//
// When user specifies options `--cpuids=0,2 --cpuids=4` the target variable
// becomes a slice with 0,2,4 items.
type StringListVar []string

// Set parses the input string and appends it as a slice. Implements kingpin.Value.
func (s *StringListVar) Set(value string) error {
	*s = append((*s), strings.Split(value, stringListDelimiter)...)
	return nil
}

// String returns string value from StringListVar. Implements kingpin.Value.
func (s *StringListVar) String() string {
	return fmt.Sprintf("%v", *s)
}

// IsCumulative implements optional interface (kingpin.repeatableFlag) for flags that can be repeated.
func (s *StringListVar) IsCumulative() bool {
	return true
}

// StringList is a helper for defining kingpin flags.
func StringList(s kingpin.Settings) (target *[]string) {
	target = new([]string)
	s.SetValue((*StringListVar)(target))
	return
}
