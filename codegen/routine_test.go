package codegen

import (
	"strings"
	"testing"

	"github.com/alairjunior/l5x2c/l5x"
)

func TestRoutineWrapsRungs(t *testing.T) {
	g := NewGenerator(1000, 100)
	routine := &l5x.Routine{
		Name: "MainRoutine",
		Rungs: []l5x.Rung{
			{Number: 0, Logic: "XIC(a)OTE(b);"},
			{Number: 1, Logic: "OTE(c);"},
		},
	}
	out := g.Routine(routine)

	if !strings.HasPrefix(out, "void MainRoutine() {\n") {
		t.Errorf("missing function header: %q", out)
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Errorf("missing function footer: %q", out)
	}
	if !strings.Contains(out, "// (Rung 0) XIC(a)OTE(b);") {
		t.Error("missing rung 0 comment")
	}
	if !strings.Contains(out, "// (Rung 1) OTE(c);") {
		t.Error("missing rung 1 comment")
	}
	if !strings.Contains(out, "    clear();push(true);push(a);and();b=acc();\n") {
		t.Error("missing compiled rung 0")
	}
}

func TestRoutineSyntaxErrorRecovery(t *testing.T) {
	// A rung that fails to parse is replaced with a marker; its neighbors
	// still compile.
	g := NewGenerator(1000, 100)
	routine := &l5x.Routine{
		Name: "R",
		Rungs: []l5x.Rung{
			{Number: 0, Logic: "XIC(a)OTE(b);"},
			{Number: 1, Logic: "XIC(OTE(x));"},
			{Number: 2, Logic: "OTE(c);"},
		},
	}
	out := g.Routine(routine)

	if !strings.Contains(out, "// Syntax Error") {
		t.Error("missing syntax error marker")
	}
	if !strings.Contains(out, "clear();push(true);push(a);and();b=acc();") {
		t.Error("rung before the bad one did not compile")
	}
	if !strings.Contains(out, "clear();push(true);c=acc();") {
		t.Error("rung after the bad one did not compile")
	}
	if len(g.Warnings) == 0 {
		t.Error("expected a warning for the failed rung")
	}
}

func TestRoutineCommentDirectives(t *testing.T) {
	g := NewGenerator(1000, 100)
	routine := &l5x.Routine{
		Name: "R",
		Rungs: []l5x.Rung{
			{
				Number:  0,
				Logic:   "XIC(a)OTE(b);",
				Comment: "setup <CBEFORE!int guard = 0;!> teardown <CAFTER!guard = 1;!>",
			},
		},
	}
	out := g.Routine(routine)

	beforeIdx := strings.Index(out, "int guard = 0;")
	rungIdx := strings.Index(out, "clear();push(true);")
	afterIdx := strings.Index(out, "guard = 1;")

	if beforeIdx < 0 || rungIdx < 0 || afterIdx < 0 {
		t.Fatalf("directive payloads missing from output:\n%s", out)
	}
	if !(beforeIdx < rungIdx && rungIdx < afterIdx) {
		t.Errorf("payloads out of order: before=%d rung=%d after=%d", beforeIdx, rungIdx, afterIdx)
	}
}

func TestRoutineWithoutRungComments(t *testing.T) {
	g := NewGenerator(1000, 100)
	g.RungComments = false
	routine := &l5x.Routine{
		Name:  "R",
		Rungs: []l5x.Rung{{Number: 0, Logic: "OTE(a);"}},
	}
	out := g.Routine(routine)
	if strings.Contains(out, "// (Rung") {
		t.Error("rung comment emitted despite RungComments=false")
	}
}
