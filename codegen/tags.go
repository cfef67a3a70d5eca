package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alairjunior/l5x2c/l5x"
)

// TagDecl emits one tag as a C variable declaration with its initializer.
// Tag names pass through verbatim; no renaming or escaping.
func TagDecl(tag *l5x.Tag) string {
	switch tag.Data.Kind {
	case l5x.ValueArray:
		return fmt.Sprintf("%s %s[%d] = %s;\n",
			CType(tag.Type), tag.Name, tag.Data.Dimensions, initializer(tag.Data))
	default:
		return fmt.Sprintf("%s %s = %s;\n", CType(tag.Type), tag.Name, initializer(tag.Data))
	}
}

// initializer renders a tag value as a C99 initializer: scalars as
// literals, arrays as brace lists in ascending index order, structures as
// designated initializers.
func initializer(value *l5x.Value) string {
	switch value.Kind {
	case l5x.ValueScalar:
		return scalarLiteral(value.Scalar)
	case l5x.ValueArray:
		elements := append([]l5x.ArrayElement(nil), value.Elements...)
		sort.Slice(elements, func(i, j int) bool { return elements[i].Index < elements[j].Index })
		parts := make([]string, 0, len(elements))
		next := 0
		for _, element := range elements {
			part := initializer(element.Value)
			// After a gap, a designator keeps the value at its own index
			if element.Index != next {
				part = fmt.Sprintf("[%d] = %s", element.Index, part)
			}
			parts = append(parts, part)
			next = element.Index + 1
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case l5x.ValueStruct:
		parts := make([]string, 0, len(value.Fields))
		for _, field := range value.Fields {
			parts = append(parts, fmt.Sprintf(".%s = %s", field.Name, initializer(field.Value)))
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	}
	return "{ 0 }"
}

// scalarLiteral passes decorated values through, defaulting empties to 0.
func scalarLiteral(text string) string {
	if text == "" {
		return "0"
	}
	return text
}
