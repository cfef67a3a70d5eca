package codegen

import (
	"fmt"
	"io"
	"strings"

	"github.com/alairjunior/l5x2c/l5x"
)

// Generator writes the C translation unit for one project. Options default
// from the config file; rung-level problems become warnings, not failures.
type Generator struct {
	StackSize    int
	ScanTime     int
	RungComments bool
	EmitScanLoop bool

	// Warnings accumulated across the translation: unsupported
	// instructions and per-rung diagnostics. Reader warnings stay on the
	// l5x.Reader.
	Warnings []string

	lowerer Lowerer
}

// NewGenerator creates a generator with the given scan parameters
func NewGenerator(stackSize, scanTime int) *Generator {
	return &Generator{
		StackSize:    stackSize,
		ScanTime:     scanTime,
		RungComments: true,
		EmitScanLoop: true,
	}
}

// Translate writes the complete C program for the project: preamble, data
// types in dependency order, controller tags, per-program tags and
// routines, and the scan loop.
func (g *Generator) Translate(project *l5x.Project, w io.Writer) error {
	var sb strings.Builder

	sb.WriteString(Preamble(g.StackSize, g.ScanTime))
	sb.WriteString("\n")

	ordered, err := OrderTypes(project.DataTypes)
	if err != nil {
		return err
	}
	if len(ordered) > 0 {
		sb.WriteString("// Data types\n")
		for _, dt := range ordered {
			sb.WriteString(DataTypeDecl(dt))
			sb.WriteString("\n")
		}
	}

	if len(project.ControllerTags) > 0 {
		sb.WriteString("// Controller tags\n")
		for _, tag := range project.ControllerTags {
			sb.WriteString(TagDecl(tag))
		}
		sb.WriteString("\n")
	}

	// Prototypes keep JSR targets callable regardless of routine order
	var prototypes []string
	for _, program := range project.Programs {
		for _, routine := range program.Routines {
			prototypes = append(prototypes, fmt.Sprintf("void %s();\n", routine.Name))
		}
	}
	if len(prototypes) > 0 {
		sb.WriteString("// Routine prototypes\n")
		for _, proto := range prototypes {
			sb.WriteString(proto)
		}
		sb.WriteString("\n")
	}

	for _, program := range project.Programs {
		fmt.Fprintf(&sb, "// Program %s\n", program.Name)
		for _, tag := range program.Tags {
			sb.WriteString(TagDecl(tag))
		}
		if len(program.Tags) > 0 {
			sb.WriteString("\n")
		}
		for _, routine := range program.Routines {
			sb.WriteString(g.Routine(routine))
			sb.WriteString("\n")
		}
	}

	if g.EmitScanLoop {
		sb.WriteString(g.scanLoop(project))
	}

	// The lowerer's unsupported-instruction warnings surface with the rest
	g.Warnings = append(g.Warnings, g.lowerer.Warnings...)
	g.lowerer.Warnings = nil

	_, err = io.WriteString(w, sb.String())
	return err
}

// scanLoop emits the generated program's entry point: one scan calls each
// program's main routine in document order, then sleeps out the period.
func (g *Generator) scanLoop(project *l5x.Project) string {
	var sb strings.Builder
	sb.WriteString("int main() {\n")
	sb.WriteString("    while (1) {\n")
	for _, program := range project.Programs {
		if program.MainRoutine == "" {
			continue
		}
		fmt.Fprintf(&sb, "        %s();\n", program.MainRoutine)
	}
	sb.WriteString("        plc_sleep();\n")
	sb.WriteString("    }\n")
	sb.WriteString("    return 0;\n")
	sb.WriteString("}\n")
	return sb.String()
}
