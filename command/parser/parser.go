package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/squareup/tdcodec/common"
	"github.com/squareup/tdcodec/errors"
)

var (
	lex = lexer.MustSimple([]lexer.SimpleRule{
		{Name: `Ident`, Pattern: `[a-zA-Z_][a-zA-Z_0-9$#]*`},
		{Name: `QuotedIdent`, Pattern: `"[^"]*"`},
		{Name: `Number`, Pattern: `\d+`},
		{Name: `Punct`, Pattern: `[(),;]`},
		{Name: `Comment`, Pattern: `--[^\n]*|/\*([^*]|\*+[^*/])*\*+/`},
		{Name: `Whitespace`, Pattern: `\s+`},
	})
	parser = participle.MustBuild[Schema](
		participle.Lexer(lex),
		participle.CaseInsensitive("Ident"),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(2),
		participle.Unquote("QuotedIdent"),
	)
)

// ParseSchema parses a DEFINE SCHEMA statement, or a bare parenthesised column list.
func ParseSchema(text string) (*Schema, error) {
	schema, err := parser.ParseString("", text)
	if err != nil {
		return nil, errors.WithStack(errors.NewInvalidSchemaDefinitionError(err.Error()))
	}
	return schema, nil
}

// ParseColumns parses a schema definition into the Columns its rows are encoded with.
func ParseColumns(text string) (*common.Columns, error) {
	schema, err := ParseSchema(text)
	if err != nil {
		return nil, err
	}
	descs, err := schema.Descriptors()
	if err != nil {
		return nil, err
	}
	return common.NewColumnsFromDescriptors(descs), nil
}
