package codegen

import (
	"strings"
	"testing"

	"github.com/alairjunior/l5x2c/l5x"
)

func sampleProject() *l5x.Project {
	return &l5x.Project{
		DataTypes: []*l5x.DataType{
			{Name: "Machine", Members: []*l5x.Member{{Name: "drive", Type: "Motor"}}, Dependencies: []string{"Motor"}},
			{Name: "Motor", Members: []*l5x.Member{{Name: "speed", Type: "DINT"}}},
		},
		ControllerTags: []*l5x.Tag{
			{Name: "start", Type: "BOOL", Data: &l5x.Value{Kind: l5x.ValueScalar, Scalar: "0"}},
		},
		Programs: []*l5x.Program{
			{
				Name:        "MainProgram",
				MainRoutine: "MainRoutine",
				Tags: []*l5x.Tag{
					{Name: "local_flag", Type: "BOOL", Data: &l5x.Value{Kind: l5x.ValueScalar, Scalar: "0"}},
				},
				Routines: []*l5x.Routine{
					{Name: "MainRoutine", Rungs: []l5x.Rung{
						{Number: 0, Logic: "XIC(start)JSR(Helper,0);"},
					}},
					{Name: "Helper", Rungs: []l5x.Rung{
						{Number: 0, Logic: "OTE(start);"},
					}},
				},
			},
		},
	}
}

func TestTranslateSections(t *testing.T) {
	project := sampleProject()

	g := NewGenerator(2000, 50)
	var sb strings.Builder
	if err := g.Translate(project, &sb); err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	out := sb.String()

	// template substitution is literal
	if !strings.Contains(out, "#define STACK_SIZE 2000") {
		t.Error("stack size not substituted")
	}
	if !strings.Contains(out, "#define SCAN_TIME 50") {
		t.Error("scan time not substituted")
	}

	// dependency order: Motor before Machine
	motorIdx := strings.Index(out, "} Motor_t;")
	machineIdx := strings.Index(out, "} Machine_t;")
	if motorIdx < 0 || machineIdx < 0 {
		t.Fatal("data type declarations missing")
	}
	if motorIdx > machineIdx {
		t.Error("Motor must be declared before Machine")
	}

	if !strings.Contains(out, "// Controller tags\nbool start = 0;") {
		t.Error("controller tag section missing")
	}
	if !strings.Contains(out, "// Program MainProgram") {
		t.Error("program section missing")
	}
	if !strings.Contains(out, "void MainRoutine() {") {
		t.Error("routine function missing")
	}
	if !strings.Contains(out, "void Helper();") {
		t.Error("routine prototype missing")
	}
	if !strings.Contains(out, "if(acc())Helper();") {
		t.Error("compiled JSR missing")
	}

	// scan loop calls the program's main routine only
	mainIdx := strings.Index(out, "int main() {")
	if mainIdx < 0 {
		t.Fatal("scan loop missing")
	}
	loop := out[mainIdx:]
	if !strings.Contains(loop, "MainRoutine();") {
		t.Error("scan loop does not call the main routine")
	}
	if strings.Contains(loop, "Helper();") {
		t.Error("scan loop must not call non-main routines")
	}
}

func TestTranslateCycleFails(t *testing.T) {
	project := &l5x.Project{
		DataTypes: []*l5x.DataType{
			{Name: "A", Dependencies: []string{"B"}},
			{Name: "B", Dependencies: []string{"A"}},
		},
	}
	g := NewGenerator(1000, 100)
	var sb strings.Builder
	if err := g.Translate(project, &sb); err == nil {
		t.Fatal("expected a dependency cycle error")
	}
}

func TestTranslateWithoutScanLoop(t *testing.T) {
	project := sampleProject()

	g := NewGenerator(1000, 100)
	g.EmitScanLoop = false
	var sb strings.Builder
	if err := g.Translate(project, &sb); err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if strings.Contains(sb.String(), "int main() {") {
		t.Error("scan loop emitted despite EmitScanLoop=false")
	}
}

func TestPreambleRuntimeSurface(t *testing.T) {
	out := Preamble(1000, 100)
	for _, symbol := range []string{
		"static void clear()",
		"static void push(bool value)",
		"static bool pop()",
		"static bool acc()",
		"static void and()",
		"static void or()",
		"static void ton(bool enable, timer *t)",
		"static void tof(bool enable, timer *t)",
		"static void ctu(bool enable, counter *c)",
		"static int get_scan_time()",
	} {
		if !strings.Contains(out, symbol) {
			t.Errorf("preamble missing %q", symbol)
		}
	}
	if strings.Contains(out, "$stack_size") || strings.Contains(out, "$scan_time") {
		t.Error("unsubstituted placeholder left in preamble")
	}
}
