package codegen

import (
	"strings"
	"testing"

	"github.com/alairjunior/l5x2c/l5x"
)

func TestCType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"SINT", "int8_t"},
		{"INT", "int16_t"},
		{"DINT", "int32_t"},
		{"LINT", "int64_t"},
		{"USINT", "uint8_t"},
		{"UINT", "uint16_t"},
		{"UDINT", "uint32_t"},
		{"ULINT", "uint64_t"},
		{"REAL", "float"},
		{"LREAL", "double"},
		{"BOOL", "bool"},
		{"BIT", "bool"},
		{"TIMER", "timer"},
		{"COUNTER", "counter"},
		{"MyType", "MyType_t"},
	}
	for _, tt := range tests {
		if got := CType(tt.name); got != tt.want {
			t.Errorf("CType(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestOrderTypesDependenciesFirst(t *testing.T) {
	datatypes := []*l5x.DataType{
		{Name: "Machine", Dependencies: []string{"Motor", "Sensor"}},
		{Name: "Motor", Dependencies: []string{"Sensor"}},
		{Name: "Sensor"},
	}
	ordered, err := OrderTypes(datatypes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	position := make(map[string]int)
	for i, dt := range ordered {
		position[dt.Name] = i
	}
	if position["Sensor"] > position["Motor"] {
		t.Error("Sensor must be declared before Motor")
	}
	if position["Motor"] > position["Machine"] {
		t.Error("Motor must be declared before Machine")
	}
}

func TestOrderTypesIgnoresExternalDeps(t *testing.T) {
	// Dependencies on atomic types or modules outside the set do not block.
	datatypes := []*l5x.DataType{
		{Name: "A", Dependencies: []string{"DINT", "SomeModule"}},
	}
	ordered, err := OrderTypes(datatypes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ordered) != 1 {
		t.Fatalf("expected 1 type, got %d", len(ordered))
	}
}

func TestOrderTypesCycle(t *testing.T) {
	datatypes := []*l5x.DataType{
		{Name: "A", Dependencies: []string{"B"}},
		{Name: "B", Dependencies: []string{"A"}},
	}
	_, err := OrderTypes(datatypes)
	if err == nil {
		t.Fatal("expected a dependency cycle error")
	}
	if !strings.Contains(err.Error(), "cycle") {
		t.Errorf("error should name the cycle: %v", err)
	}
}

func TestDataTypeDeclMembers(t *testing.T) {
	dt := &l5x.DataType{
		Name: "Machine",
		Members: []*l5x.Member{
			{Name: "speed", Type: "DINT"},
			{Name: "temps", Type: "REAL", Dimension: 4},
			{Name: "running", Type: "BIT"},
			{Name: "drive", Type: "Motor"},
		},
	}
	out := DataTypeDecl(dt)

	want := []string{
		"typedef struct {\n",
		"    int32_t speed;\n",
		"    float temps[4];\n",
		"    bool running : 1;\n",
		"    Motor_t drive;\n",
		"} Machine_t;\n",
	}
	for _, fragment := range want {
		if !strings.Contains(out, fragment) {
			t.Errorf("missing %q in:\n%s", fragment, out)
		}
	}
}

func TestDataTypeDeclBitCarrierUnion(t *testing.T) {
	// A hidden carrier with grouped bit members is emitted as a union so
	// the word is addressable as an aggregate and as its bits.
	dt := &l5x.DataType{
		Name: "Flags",
		Members: []*l5x.Member{
			{
				Name:   "ZZZZZZZZZZFlags0",
				Type:   "SINT",
				Hidden: true,
				Inner: []*l5x.Member{
					{Name: "Run", Type: "BIT", BitNumber: 0},
					{Name: "Stop", Type: "BIT", BitNumber: 1},
				},
			},
		},
	}
	out := DataTypeDecl(dt)

	want := []string{
		"union {",
		"int8_t ZZZZZZZZZZFlags0;",
		"bool Run : 1;",
		"bool Stop : 1;",
	}
	for _, fragment := range want {
		if !strings.Contains(out, fragment) {
			t.Errorf("missing %q in:\n%s", fragment, out)
		}
	}
}
