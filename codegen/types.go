package codegen

import (
	"fmt"
	"strings"

	"github.com/alairjunior/l5x2c/l5x"
)

// builtinTypes maps Rockwell atomic type names to C types declared (or
// included) by the preamble.
var builtinTypes = map[string]string{
	"SINT":    "int8_t",
	"INT":     "int16_t",
	"DINT":    "int32_t",
	"LINT":    "int64_t",
	"USINT":   "uint8_t",
	"UINT":    "uint16_t",
	"UDINT":   "uint32_t",
	"ULINT":   "uint64_t",
	"REAL":    "float",
	"LREAL":   "double",
	"BOOL":    "bool",
	"BIT":     "bool",
	"TIMER":   "timer",
	"COUNTER": "counter",
}

// CType resolves a Rockwell type name to its C spelling. Unknown names are
// user-defined structs emitted as <name>_t.
func CType(name string) string {
	if ctype, ok := builtinTypes[name]; ok {
		return ctype
	}
	return name + "_t"
}

// OrderTypes sorts user-defined types so that every type is declared after
// its dependencies (Kahn's algorithm over the dependency lists, stable on
// document order). Dependencies naming types outside the set (atomic types,
// modules) do not block. A dependency cycle is a dedicated error.
func OrderTypes(datatypes []*l5x.DataType) ([]*l5x.DataType, error) {
	known := make(map[string]bool, len(datatypes))
	for _, dt := range datatypes {
		known[dt.Name] = true
	}

	emitted := make(map[string]bool, len(datatypes))
	ordered := make([]*l5x.DataType, 0, len(datatypes))
	remaining := append([]*l5x.DataType(nil), datatypes...)

	for len(remaining) > 0 {
		var blocked []*l5x.DataType
		progress := false
		for _, dt := range remaining {
			ready := true
			for _, dep := range dt.Dependencies {
				if known[dep] && !emitted[dep] {
					ready = false
					break
				}
			}
			if ready {
				ordered = append(ordered, dt)
				emitted[dt.Name] = true
				progress = true
			} else {
				blocked = append(blocked, dt)
			}
		}
		if !progress {
			names := make([]string, len(blocked))
			for i, dt := range blocked {
				names[i] = dt.Name
			}
			return nil, fmt.Errorf("dependency cycle among data types: %s", strings.Join(names, ", "))
		}
		remaining = blocked
	}
	return ordered, nil
}

// DataTypeDecl emits one user-defined type as a typedef'd struct. A hidden
// carrier member with grouped bit members becomes a union of the carrier
// word and a bitfield struct, so the word is addressable both ways.
func DataTypeDecl(dt *l5x.DataType) string {
	var sb strings.Builder
	sb.WriteString("typedef struct {\n")
	for _, member := range dt.Members {
		sb.WriteString(memberDecl(member, "    "))
	}
	fmt.Fprintf(&sb, "} %s;\n", CType(dt.Name))
	return sb.String()
}

func memberDecl(member *l5x.Member, indent string) string {
	if len(member.Inner) > 0 {
		var sb strings.Builder
		sb.WriteString(indent + "union {\n")
		fmt.Fprintf(&sb, "%s    %s %s;\n", indent, CType(member.Type), member.Name)
		sb.WriteString(indent + "    struct {\n")
		for _, bit := range member.Inner {
			fmt.Fprintf(&sb, "%s        bool %s : 1;\n", indent, bit.Name)
		}
		sb.WriteString(indent + "    };\n")
		sb.WriteString(indent + "};\n")
		return sb.String()
	}
	if member.Type == "BIT" {
		return fmt.Sprintf("%sbool %s : 1;\n", indent, member.Name)
	}
	if member.Dimension > 0 {
		return fmt.Sprintf("%s%s %s[%d];\n", indent, CType(member.Type), member.Name, member.Dimension)
	}
	return fmt.Sprintf("%s%s %s;\n", indent, CType(member.Type), member.Name)
}
