package l5x

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Reader extracts a Project from an L5X document. Recoverable schema
// surprises (tags without decorated data, unknown member shapes) are
// collected as warnings and the offending item is skipped.
type Reader struct {
	Warnings []string

	programTags map[string][]*Tag
}

func (r *Reader) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// ParseFile reads and extracts a single L5X file. The document is parsed
// once per invocation; no caching.
func (r *Reader) ParseFile(filename string) (*Project, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(filename); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return r.parse(doc)
}

// ParseString extracts a Project from L5X text
func (r *Reader) ParseString(content string) (*Project, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(content); err != nil {
		return nil, fmt.Errorf("reading L5X document: %w", err)
	}
	return r.parse(doc)
}

func (r *Reader) parse(doc *etree.Document) (*Project, error) {
	project := &Project{}
	project.DataTypes = r.parseDataTypes(doc)
	r.parseTags(doc, project)
	project.Programs = append(project.Programs, r.parsePrograms(doc)...)
	return project, nil
}

func (r *Reader) parseDataTypes(doc *etree.Document) []*DataType {
	var datatypes []*DataType
	for _, dtNode := range doc.FindElements("//DataTypes/DataType") {
		dt := &DataType{Name: dtNode.SelectAttrValue("Name", "")}

		// BIT members reference a hidden carrier member through Target;
		// they are grouped under the carrier so the emitter can produce a
		// word/bits union.
		carriers := make(map[string]*Member)
		for _, memberNode := range dtNode.FindElements("Members/Member") {
			member := &Member{
				Name:      memberNode.SelectAttrValue("Name", ""),
				Type:      memberNode.SelectAttrValue("DataType", ""),
				Radix:     memberNode.SelectAttrValue("Radix", ""),
				Hidden:    memberNode.SelectAttrValue("Hidden", "") == "true",
				Target:    memberNode.SelectAttrValue("Target", ""),
				Dimension: atoiOrZero(memberNode.SelectAttrValue("Dimension", "")),
				BitNumber: atoiOrZero(memberNode.SelectAttrValue("BitNumber", "")),
			}
			if member.Type == "BIT" && member.Target != "" {
				carrier, ok := carriers[member.Target]
				if !ok {
					r.warnf("Member %s of %s targets unknown member %s. Member was ignored.",
						member.Name, dt.Name, member.Target)
					continue
				}
				carrier.Inner = append(carrier.Inner, member)
				continue
			}
			dt.Members = append(dt.Members, member)
			if member.Hidden {
				carriers[member.Name] = member
			}
		}

		for _, depNode := range dtNode.FindElements("Dependencies/Dependency") {
			if depNode.SelectAttrValue("Type", "") == "DataType" {
				dt.Dependencies = append(dt.Dependencies, depNode.SelectAttrValue("Name", ""))
			}
		}
		datatypes = append(datatypes, dt)
	}
	return datatypes
}

// parseTags walks every Tags element, dispatching on the parent: the
// controller's tag table or a program's.
func (r *Reader) parseTags(doc *etree.Document, project *Project) {
	programTags := make(map[string][]*Tag)
	for _, tagsNode := range doc.FindElements("//Tags") {
		parent := tagsNode.Parent()
		if parent == nil {
			continue
		}
		switch parent.Tag {
		case "Controller":
			project.ControllerTags = append(project.ControllerTags, r.parseTagTable(tagsNode)...)
		case "Program":
			name := parent.SelectAttrValue("Name", "")
			programTags[name] = append(programTags[name], r.parseTagTable(tagsNode)...)
		default:
			r.warnf("Unsupported parent tag: %s", parent.Tag)
		}
	}
	r.programTags = programTags
}

func (r *Reader) parseTagTable(tagsNode *etree.Element) []*Tag {
	var tags []*Tag
	for _, tagNode := range tagsNode.FindElements("Tag") {
		name := tagNode.SelectAttrValue("Name", "")
		tagtype := tagNode.SelectAttrValue("DataType", "")

		var decorated *etree.Element
		for _, dataNode := range tagNode.FindElements("Data") {
			if dataNode.SelectAttrValue("Format", "") == "Decorated" {
				decorated = dataNode
				break
			}
		}
		if decorated == nil {
			r.warnf("Tag %s has no Decorated Data. Ignored.", name)
			continue
		}

		value := r.parseDataStructure(decorated, tagtype)
		if value == nil {
			r.warnf("Unsupported tag type %s. Tag %s was ignored.", tagtype, name)
			continue
		}
		tags = append(tags, &Tag{Name: name, Type: tagtype, Data: value})
	}
	return tags
}

// parseDataStructure picks the decorated element whose DataType matches the
// tag's declared type and builds the recursive value.
func (r *Reader) parseDataStructure(dataNode *etree.Element, tagtype string) *Value {
	for _, content := range dataNode.ChildElements() {
		if content.SelectAttrValue("DataType", "") != tagtype {
			continue
		}
		switch content.Tag {
		case "Structure":
			return r.buildStructValue(content)
		case "DataValue":
			return r.buildScalarValue(content)
		case "Array":
			return r.buildArrayValue(content)
		}
	}
	return nil
}

func (r *Reader) buildScalarValue(node *etree.Element) *Value {
	return &Value{
		Kind:   ValueScalar,
		Type:   node.SelectAttrValue("DataType", ""),
		Scalar: node.SelectAttrValue("Value", ""),
	}
}

func (r *Reader) buildArrayValue(node *etree.Element) *Value {
	datatype := node.SelectAttrValue("DataType", "")
	value := &Value{
		Kind:       ValueArray,
		Type:       datatype,
		Dimensions: atoiOrZero(node.SelectAttrValue("Dimensions", "")),
	}
	for _, element := range node.FindElements("Element") {
		index := element.SelectAttrValue("Index", "")
		if len(index) < 2 {
			continue
		}
		n, err := strconv.Atoi(index[1 : len(index)-1])
		if err != nil {
			continue
		}
		if element.SelectAttr("Value") != nil {
			value.Elements = append(value.Elements, ArrayElement{
				Index: n,
				Value: &Value{Kind: ValueScalar, Type: datatype, Scalar: element.SelectAttrValue("Value", "")},
			})
			continue
		}
		for _, structure := range element.FindElements("Structure") {
			if structure.SelectAttrValue("DataType", "") == datatype {
				value.Elements = append(value.Elements, ArrayElement{
					Index: n,
					Value: r.buildStructValue(structure),
				})
			}
		}
	}
	return value
}

func (r *Reader) buildStructValue(node *etree.Element) *Value {
	value := &Value{
		Kind: ValueStruct,
		Type: node.SelectAttrValue("DataType", ""),
	}
	for _, field := range node.ChildElements() {
		fieldname := field.SelectAttrValue("Name", "")
		switch field.Tag {
		case "DataValueMember":
			value.Fields = append(value.Fields, Field{Name: fieldname, Value: r.buildScalarValue(field)})
		case "ArrayMember":
			value.Fields = append(value.Fields, Field{Name: fieldname, Value: r.buildArrayValue(field)})
		case "StructureMember":
			value.Fields = append(value.Fields, Field{Name: fieldname, Value: r.buildStructValue(field)})
		default:
			r.warnf("Unsupported field type %s. Field %s was ignored", field.Tag, fieldname)
		}
	}
	return value
}

func (r *Reader) parsePrograms(doc *etree.Document) []*Program {
	var programs []*Program
	for _, programNode := range doc.FindElements("//Programs/Program") {
		program := &Program{
			Name:        programNode.SelectAttrValue("Name", ""),
			MainRoutine: programNode.SelectAttrValue("MainRoutineName", ""),
			Tags:        r.programTags[programNode.SelectAttrValue("Name", "")],
		}
		for _, routineNode := range programNode.FindElements("Routines/Routine") {
			routine := &Routine{Name: routineNode.SelectAttrValue("Name", "")}
			for _, rungNode := range routineNode.FindElements("RLLContent/Rung") {
				rung := Rung{
					Number: atoiOrZero(rungNode.SelectAttrValue("Number", "")),
				}
				if text := rungNode.FindElement("Text"); text != nil {
					rung.Logic = strings.TrimSpace(text.Text())
				}
				if comment := rungNode.FindElement("Comment"); comment != nil {
					rung.Comment = comment.Text()
				}
				routine.Rungs = append(routine.Rungs, rung)
			}
			program.Routines = append(program.Routines, routine)
		}
		programs = append(programs, program)
	}
	return programs
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
