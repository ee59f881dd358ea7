package cpu

import (
	"errors"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// statement is an instruction or directive, after any labels.
type statement struct {
	Mnemonic string     `@Ident`
	Operands []*operand `( @@ ( "," @@ )* )?`
}

// operand is a single instruction or directive operand.
type operand struct {
	Memory     *memoryRef `  @@`
	Register   *string    `| @Register`
	Expression *string    `| @Expression`
	Immediate  *string    `| @Immediate`
	Number     *string    `| @Number`
	Label      *string    `| @Ident`
}

// memoryRef is a 'disp(%reg)' memory reference.
type memoryRef struct {
	Displacement *string `( @Number | @Expression | @Ident )?`
	Base         string  `"(" @Register ")"`
}

var y86Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},

	// $(...) compile time expressions, with one level of nesting.
	{Name: "Expression", Pattern: `\$\((?:[^()]|\([^()]*\))*\)`},
	{Name: "Immediate", Pattern: `\$-?[A-Za-z0-9_.]+`},
	{Name: "Register", Pattern: `%[A-Za-z0-9]+`},
	{Name: "Number", Pattern: `-?(?:0[xX][0-9a-fA-F]+|[0-9]+)`},
	{Name: "Ident", Pattern: `[A-Za-z_.][A-Za-z0-9_.]*`},
	{Name: "Punct", Pattern: `[(),]`},
})

var statementParser = participle.MustBuild[statement](
	participle.Lexer(y86Lexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// parseStatement parses the text of a line following its labels.
func parseStatement(text string) (stmt *statement, err error) {
	stmt, err = statementParser.ParseString("", text)
	if err != nil {
		err = errors.Join(ErrOperandSyntax, err)
	}
	return
}
