package rung

import "fmt"

// Parser parses the rung grammar:
//
//	rung          : input_list output_list ';'  |  output_list ';'
//	input_list    : one or more input instructions and input branches
//	input_branch  : '[' alternatives ']'  |  '[' ']'
//	output_list   : output_seq  |  output_branch
//	output_branch : '[' level (',' level)* ']'
//	level         : [input_list] output_list
//
// A bracket group is an input branch exactly when no output mnemonic occurs
// anywhere inside it; the parser decides with a balanced-bracket scan over
// the token stream.
type Parser struct {
	tokens       []Token
	pos          int
	currentToken Token
	peekToken    Token
	errors       *ErrorList
}

// NewParser creates a new parser over the given rung text
func NewParser(input string) *Parser {
	lexer := NewLexer(input)
	p := &Parser{
		errors: &ErrorList{},
	}
	p.tokens = lexer.TokenizeAll()

	// Lexical diagnostics do not abort the parse; the offending characters
	// were skipped and the remaining tokens may still form a valid rung.
	for _, err := range lexer.Errors().Errors {
		p.errors.AddError(err)
	}

	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns lexical diagnostics collected while tokenizing
func (p *Parser) Errors() *ErrorList {
	return p.errors
}

// nextToken advances to the next token
func (p *Parser) nextToken() {
	p.currentToken = p.peekToken
	if p.pos < len(p.tokens) {
		p.peekToken = p.tokens[p.pos]
		p.pos++
	} else {
		p.peekToken = Token{Type: TokenEOF, Line: p.currentToken.Line}
	}
}

func (p *Parser) syntaxError(format string, args ...interface{}) error {
	return NewError(Position{Line: p.currentToken.Line}, ErrorSyntax,
		fmt.Sprintf(format, args...))
}

func (p *Parser) expect(t TokenType) error {
	if p.currentToken.Type != t {
		return p.syntaxError("expected %q, found %q", t.String(), p.currentToken.Literal)
	}
	p.nextToken()
	return nil
}

// Parse parses a complete rung terminated by ';'
func (p *Parser) Parse() (*Rung, error) {
	rung := &Rung{}

	for p.startsInputItem() {
		node, err := p.parseInputItem()
		if err != nil {
			return nil, err
		}
		rung.Inputs = append(rung.Inputs, node)
	}

	outputs, err := p.parseOutputList()
	if err != nil {
		return nil, err
	}
	rung.Outputs = outputs

	if err := p.expect(TokenSemicolon); err != nil {
		return nil, err
	}
	if p.currentToken.Type != TokenEOF {
		return nil, p.syntaxError("unexpected %q after rung terminator", p.currentToken.Literal)
	}
	return rung, nil
}

// startsInputItem reports whether the current token begins an input
// instruction or an input branch.
func (p *Parser) startsInputItem() bool {
	if p.currentToken.Type.IsInputInstruction() {
		return true
	}
	if p.currentToken.Type == TokenLBra {
		return p.bracketGroupIsInput()
	}
	return false
}

// bracketGroupIsInput scans the balanced group starting at the current '['
// for output mnemonics. Output instructions only ever occur inside output
// branches, so their absence identifies an input branch.
func (p *Parser) bracketGroupIsInput() bool {
	// currentToken sits at tokens[p.pos-2], peek at tokens[p.pos-1]
	depth := 1
	for i := p.pos - 1; i < len(p.tokens); i++ {
		switch tok := p.tokens[i]; {
		case tok.Type == TokenLBra:
			depth++
		case tok.Type == TokenRBra:
			depth--
			if depth == 0 {
				return true
			}
		case tok.Type.IsOutputInstruction():
			return false
		}
	}
	// Unbalanced group; classify as input and let the parse fail on it.
	return true
}

func (p *Parser) parseInputItem() (InputNode, error) {
	if p.currentToken.Type == TokenLBra {
		return p.parseInputBranch()
	}
	return p.parseInputInstr()
}

// parseInputBranch parses '[' alternatives ']'. Empty alternatives are
// plain wires; a completely empty branch is a no-op.
func (p *Parser) parseInputBranch() (*InputBranch, error) {
	if err := p.expect(TokenLBra); err != nil {
		return nil, err
	}

	if p.currentToken.Type == TokenRBra {
		p.nextToken()
		return &InputBranch{}, nil
	}

	branch := &InputBranch{}
	for {
		var alt []InputNode
		for p.startsInputItem() {
			node, err := p.parseInputItem()
			if err != nil {
				return nil, err
			}
			alt = append(alt, node)
		}
		branch.Alternatives = append(branch.Alternatives, alt)

		switch p.currentToken.Type {
		case TokenComma:
			p.nextToken()
		case TokenRBra:
			p.nextToken()
			return branch, nil
		default:
			return nil, p.syntaxError("expected ',' or ']' in branch, found %q", p.currentToken.Literal)
		}
	}
}

func (p *Parser) parseInputInstr() (*InputInstr, error) {
	op := p.currentToken.Type
	line := p.currentToken.Line

	var arity int
	switch op {
	case TokenXIC, TokenXIO, TokenONS:
		arity = 1
	case TokenEQU, TokenGEQ, TokenNEQ, TokenLEQ, TokenGRT:
		arity = 2
	case TokenLIM:
		arity = 3
	default:
		return nil, p.syntaxError("expected input instruction, found %q", p.currentToken.Literal)
	}
	p.nextToken()

	params, err := p.parseParams(arity)
	if err != nil {
		return nil, err
	}
	return &InputInstr{Op: op, Params: params, Line: line}, nil
}

// parseOutputList parses an output branch or a sequence of one or more
// output instructions. A branch is the whole output list: the grammar does
// not allow further coils after a closing ']'.
func (p *Parser) parseOutputList() ([]OutputNode, error) {
	if p.currentToken.Type == TokenLBra {
		branch, err := p.parseOutputBranch()
		if err != nil {
			return nil, err
		}
		return []OutputNode{branch}, nil
	}

	var seq []OutputNode
	for p.currentToken.Type.IsOutputInstruction() {
		instr, err := p.parseOutputInstr()
		if err != nil {
			return nil, err
		}
		seq = append(seq, instr)
	}
	if len(seq) == 0 {
		return nil, p.syntaxError("expected output instruction, found %q", p.currentToken.Literal)
	}
	return seq, nil
}

// parseOutputBranch parses '[' level (',' level)* ']' where every level is
// an optional series of contacts followed by its outputs. An empty level,
// including one produced by doubled commas, is a syntax error.
func (p *Parser) parseOutputBranch() (*OutputBranch, error) {
	if err := p.expect(TokenLBra); err != nil {
		return nil, err
	}

	branch := &OutputBranch{}
	for {
		var level OutputLevel
		for p.startsInputItem() {
			node, err := p.parseInputItem()
			if err != nil {
				return nil, err
			}
			level.Inputs = append(level.Inputs, node)
		}

		outputs, err := p.parseOutputList()
		if err != nil {
			return nil, err
		}
		level.Outputs = outputs
		branch.Levels = append(branch.Levels, level)

		switch p.currentToken.Type {
		case TokenComma:
			p.nextToken()
		case TokenRBra:
			p.nextToken()
			return branch, nil
		default:
			return nil, p.syntaxError("expected ',' or ']' in output branch, found %q", p.currentToken.Literal)
		}
	}
}

func (p *Parser) parseOutputInstr() (*OutputInstr, error) {
	op := p.currentToken.Type
	line := p.currentToken.Line
	p.nextToken()

	if err := p.expect(TokenLPar); err != nil {
		return nil, err
	}

	instr := &OutputInstr{Op: op, Line: line}

	switch op {
	case TokenOTE, TokenOTU, TokenOTL, TokenRES, TokenCLR, TokenMSG:
		param, err := p.parseParam()
		if err != nil {
			return nil, err
		}
		instr.Params = []string{param}

	case TokenMOV:
		params, err := p.parseParamSeq(2)
		if err != nil {
			return nil, err
		}
		instr.Params = params

	case TokenCOP, TokenADD, TokenSUB, TokenDIV:
		params, err := p.parseParamSeq(3)
		if err != nil {
			return nil, err
		}
		instr.Params = params

	case TokenTON, TokenTOF, TokenCTU:
		param, err := p.parseParam()
		if err != nil {
			return nil, err
		}
		for i := 0; i < 2; i++ {
			if err := p.expect(TokenComma); err != nil {
				return nil, err
			}
			if err := p.expect(TokenUndefVal); err != nil {
				return nil, err
			}
		}
		instr.Params = []string{param}

	case TokenJSR:
		param, err := p.parseParam()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenComma); err != nil {
			return nil, err
		}
		count := p.currentToken.Literal
		if err := p.expect(TokenNumber); err != nil {
			return nil, err
		}
		instr.Params = []string{param, count}

	case TokenBTD:
		// BTD(source, source-bit, dest, dest-bit, length)
		var params []string
		numeric := []bool{false, true, false, true, true}
		for i, wantNumber := range numeric {
			if i > 0 {
				if err := p.expect(TokenComma); err != nil {
					return nil, err
				}
			}
			if wantNumber {
				lit := p.currentToken.Literal
				if err := p.expect(TokenNumber); err != nil {
					return nil, err
				}
				params = append(params, lit)
				continue
			}
			param, err := p.parseParam()
			if err != nil {
				return nil, err
			}
			params = append(params, param)
		}
		instr.Params = params

	case TokenCPT:
		param, err := p.parseParam()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenComma); err != nil {
			return nil, err
		}
		expr, err := p.parseCptExpression(0)
		if err != nil {
			return nil, err
		}
		instr.Params = []string{param}
		instr.Expr = expr

	default:
		return nil, p.syntaxError("expected output instruction, found %q", tokenNames[op])
	}

	if err := p.expect(TokenRPar); err != nil {
		return nil, err
	}
	return instr, nil
}

// parseParams parses '(' p1 ',' ... ',' pn ')'
func (p *Parser) parseParams(n int) ([]string, error) {
	if err := p.expect(TokenLPar); err != nil {
		return nil, err
	}
	params, err := p.parseParamSeq(n)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenRPar); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseParamSeq(n int) ([]string, error) {
	params := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			if err := p.expect(TokenComma); err != nil {
				return nil, err
			}
		}
		param, err := p.parseParam()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
	}
	return params, nil
}

// parseParam parses a tag, communication tag, or numeric literal. The
// operand text passes through to the emitted C verbatim.
func (p *Parser) parseParam() (string, error) {
	switch p.currentToken.Type {
	case TokenTag, TokenCommTag, TokenNumber:
		lit := p.currentToken.Literal
		p.nextToken()
		return lit, nil
	case TokenMinus:
		p.nextToken()
		lit := p.currentToken.Literal
		if err := p.expect(TokenNumber); err != nil {
			return "", err
		}
		return "-" + lit, nil
	default:
		return "", p.syntaxError("expected parameter, found %q", p.currentToken.Literal)
	}
}

// Binding powers for the CPT expression operators: '+' '-' below '*' '/',
// all left-associative.
func cptPrecedence(t TokenType) int {
	switch t {
	case TokenPlus, TokenMinus:
		return 1
	case TokenTimes, TokenDiv:
		return 2
	}
	return 0
}

// parseCptExpression renders the embedded infix expression of a CPT
// instruction to C text by precedence climbing.
func (p *Parser) parseCptExpression(minPrec int) (string, error) {
	left, err := p.parseCptPrimary()
	if err != nil {
		return "", err
	}

	for {
		prec := cptPrecedence(p.currentToken.Type)
		if prec == 0 || prec <= minPrec {
			return left, nil
		}
		op := p.currentToken.Literal
		p.nextToken()

		// left-associative: the right side binds strictly tighter
		right, err := p.parseCptExpression(prec)
		if err != nil {
			return "", err
		}
		left = left + op + right
	}
}

func (p *Parser) parseCptPrimary() (string, error) {
	switch p.currentToken.Type {
	case TokenLPar:
		p.nextToken()
		inner, err := p.parseCptExpression(0)
		if err != nil {
			return "", err
		}
		if err := p.expect(TokenRPar); err != nil {
			return "", err
		}
		return "(" + inner + ")", nil
	default:
		return p.parseParam()
	}
}
