package codegen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alairjunior/l5x2c/l5x"
)

// Rung comments may smuggle raw C into the output around the compiled
// statement. Payload text is emitted verbatim, no quoting.
var (
	cbeforeRe = regexp.MustCompile(`(?s)<CBEFORE!(.*?)!>`)
	cafterRe  = regexp.MustCompile(`(?s)<CAFTER!(.*?)!>`)
)

func commentDirective(re *regexp.Regexp, comment string) (string, bool) {
	m := re.FindStringSubmatch(comment)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Routine compiles each rung of a routine in source order and wraps the
// result in a void function. A rung that fails to parse becomes a
// "// Syntax Error" marker; the rest of the routine still compiles.
func (g *Generator) Routine(routine *l5x.Routine) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "void %s() {\n", routine.Name)
	for _, r := range routine.Rungs {
		sb.WriteString(g.rungBlock(routine.Name, r))
	}
	sb.WriteString("}\n")
	return sb.String()
}

func (g *Generator) rungBlock(routineName string, r l5x.Rung) string {
	var sb strings.Builder
	if g.RungComments {
		fmt.Fprintf(&sb, "    // (Rung %d) %s\n", r.Number, r.Logic)
	}
	if payload, ok := commentDirective(cbeforeRe, r.Comment); ok {
		sb.WriteString(payload)
		sb.WriteString("\n")
	}

	compiled, diags, err := g.lowerer.Compile(r.Logic)
	for _, lexErr := range diags.Errors {
		g.Warnings = append(g.Warnings,
			fmt.Sprintf("%s rung %d: %s", routineName, r.Number, lexErr.Error()))
	}
	if err != nil {
		g.Warnings = append(g.Warnings,
			fmt.Sprintf("%s rung %d: %s", routineName, r.Number, err.Error()))
		sb.WriteString("    // Syntax Error\n")
	} else {
		sb.WriteString("    " + compiled + "\n")
	}

	if payload, ok := commentDirective(cafterRe, r.Comment); ok {
		sb.WriteString(payload)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	return sb.String()
}
