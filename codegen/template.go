package codegen

import (
	_ "embed"
	"strconv"
	"strings"
)

// The preamble carried at the top of every generated file: type aliases,
// the evaluation stack, the timer/counter runtime, and the scan helpers.
//
//go:embed plcmodel.tmpl
var plcModelTemplate string

// Preamble substitutes the template placeholders. Substitution is literal
// text, matching the $-placeholder convention of the template file.
func Preamble(stackSize, scanTime int) string {
	replacer := strings.NewReplacer(
		"$stack_size", strconv.Itoa(stackSize),
		"$scan_time", strconv.Itoa(scanTime),
	)
	return replacer.Replace(plcModelTemplate)
}
