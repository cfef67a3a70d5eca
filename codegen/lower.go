// Package codegen lowers parsed rungs to C statement text over the
// evaluation-stack ABI (clear/push/pop/acc/and/or) and assembles the
// surrounding translation unit: data-type structs, tag declarations,
// routine functions, and the scan-loop runtime preamble.
package codegen

import (
	"fmt"
	"strings"

	"github.com/alairjunior/l5x2c/rung"
)

// Lowerer turns rung syntax trees into straight-line C statements. It
// carries the warnings produced for structurally recognized instructions
// whose lowering is empty.
type Lowerer struct {
	Warnings []string
}

func (l *Lowerer) warnUnsupported(op rung.TokenType) {
	l.Warnings = append(l.Warnings,
		fmt.Sprintf("Instruction %s is not supported. Instruction was ignored.", op))
}

// Rung emits the statement sequence for one rung. Every rung starts from an
// empty stack with the rail true; the emitted text leaves the rung's final
// rail on top of the stack.
func (l *Lowerer) Rung(r *rung.Rung) string {
	var sb strings.Builder
	sb.WriteString("clear();push(true);")
	for _, node := range r.Inputs {
		sb.WriteString(l.inputNode(node))
	}
	for _, node := range r.Outputs {
		sb.WriteString(l.outputNode(node))
	}
	return sb.String()
}

func (l *Lowerer) inputList(nodes []rung.InputNode) string {
	var sb strings.Builder
	for _, node := range nodes {
		sb.WriteString(l.inputNode(node))
	}
	return sb.String()
}

func (l *Lowerer) inputNode(node rung.InputNode) string {
	switch n := node.(type) {
	case *rung.InputInstr:
		return l.inputInstr(n)
	case *rung.InputBranch:
		return l.inputBranch(n)
	}
	return ""
}

// inputBranch ORs the alternatives together and ANDs the result into the
// pre-branch rail. Below the rail sits an accumulator that starts false and
// collects each alternative's result at the separating commas; an empty
// alternative is a wire and contributes true. The empty branch emits
// nothing at all.
func (l *Lowerer) inputBranch(b *rung.InputBranch) string {
	if b.Alternatives == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("push(false);push(true);")
	for i, alt := range b.Alternatives {
		if i > 0 {
			sb.WriteString("or();push(true);")
		}
		sb.WriteString(l.inputList(alt))
	}
	sb.WriteString("or();and();")
	return sb.String()
}

func (l *Lowerer) inputInstr(n *rung.InputInstr) string {
	p := n.Params
	switch n.Op {
	case rung.TokenXIC:
		return "push(" + p[0] + ");and();"
	case rung.TokenXIO:
		return "push(!" + p[0] + ");and();"
	case rung.TokenONS:
		return "if(" + p[0] + "==acc()){if(acc()){pop();push(false);}}else{" + p[0] + "=acc();}"
	case rung.TokenEQU:
		return fmt.Sprintf("push(%s==%s);and();", p[0], p[1])
	case rung.TokenGEQ:
		return fmt.Sprintf("push(%s>=%s);and();", p[0], p[1])
	case rung.TokenNEQ:
		return fmt.Sprintf("push(%s!=%s);and();", p[0], p[1])
	case rung.TokenLEQ:
		return fmt.Sprintf("push(%s<=%s);and();", p[0], p[1])
	case rung.TokenGRT:
		return fmt.Sprintf("push(%s>%s);and();", p[0], p[1])
	case rung.TokenLIM:
		// Inside the low..high envelope when low <= high; outside the
		// high..low gap otherwise. Failure forces the rail false.
		low, value, high := p[0], p[1], p[2]
		return fmt.Sprintf(
			"if(acc()){if(%[1]s<=%[3]s){if(%[1]s>%[2]s||%[2]s>%[3]s){pop();push(false);}}else{if(%[1]s>%[2]s&&%[2]s>%[3]s){pop();push(false);}}}",
			low, value, high)
	}
	return ""
}

func (l *Lowerer) outputList(nodes []rung.OutputNode) string {
	var sb strings.Builder
	for _, node := range nodes {
		sb.WriteString(l.outputNode(node))
	}
	return sb.String()
}

func (l *Lowerer) outputNode(node rung.OutputNode) string {
	switch n := node.(type) {
	case *rung.OutputInstr:
		return l.outputInstr(n)
	case *rung.OutputBranch:
		return l.outputBranch(n)
	}
	return ""
}

// outputBranch preserves the pre-branch rail across levels: each level runs
// against a pushed copy of the rail, and the copy is dropped and renewed at
// every comma. The rail on top after the closing bracket is the pre-branch
// rail itself.
func (l *Lowerer) outputBranch(b *rung.OutputBranch) string {
	var sb strings.Builder
	sb.WriteString("push(acc());")
	for i, level := range b.Levels {
		if i > 0 {
			sb.WriteString("pop();push(acc());")
		}
		sb.WriteString(l.inputList(level.Inputs))
		sb.WriteString(l.outputList(level.Outputs))
	}
	sb.WriteString("pop();")
	return sb.String()
}

func (l *Lowerer) outputInstr(n *rung.OutputInstr) string {
	p := n.Params
	switch n.Op {
	case rung.TokenOTE:
		return p[0] + "=acc();"
	case rung.TokenOTU:
		return "if(acc())" + p[0] + "=0;"
	case rung.TokenOTL:
		return "if(acc())" + p[0] + "=1;"
	case rung.TokenRES:
		return "if(acc())" + p[0] + ".ACC=0;"
	case rung.TokenMOV:
		return "if(acc())" + p[1] + "=" + p[0] + ";"
	case rung.TokenTON:
		return "ton(acc(), &" + p[0] + ");"
	case rung.TokenTOF:
		return "tof(acc(), &" + p[0] + ");"
	case rung.TokenCTU:
		return "ctu(acc(), &" + p[0] + ");"
	case rung.TokenJSR:
		return "if(acc())" + p[0] + "();"
	case rung.TokenADD:
		return fmt.Sprintf("if(acc()){%s=%s+%s;};", p[2], p[0], p[1])
	case rung.TokenSUB:
		return fmt.Sprintf("if(acc()){%s=%s-%s;};", p[2], p[0], p[1])
	case rung.TokenDIV:
		return fmt.Sprintf("if(acc()){%s=%s/%s;};", p[2], p[0], p[1])
	case rung.TokenCLR:
		return fmt.Sprintf("if(acc()){%s=0;};", p[0])
	case rung.TokenCPT:
		return fmt.Sprintf("if(acc()){%s=%s;};", p[0], n.Expr)
	case rung.TokenCOP, rung.TokenBTD, rung.TokenMSG:
		l.warnUnsupported(n.Op)
		return ""
	}
	return ""
}

// Compile parses and lowers a single rung text. Lexical diagnostics are
// returned alongside; a syntax error fails the rung.
func (l *Lowerer) Compile(logic string) (string, *rung.ErrorList, error) {
	parser := rung.NewParser(logic)
	tree, err := parser.Parse()
	if err != nil {
		return "", parser.Errors(), err
	}
	return l.Rung(tree), parser.Errors(), nil
}
