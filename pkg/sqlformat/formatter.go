// Package sqlformat pretty-prints SQL statements for display.
package sqlformat

import (
	"fmt"
	"strings"

	"github.com/xwb1989/sqlparser"
)

// MySQL is the only supported dialect.
const MySQL = "mysql"

// Options configures a Formatter.
type Options struct {
	// Dialect selects the grammar; only "mysql" is supported.
	Dialect string

	// Indent is written before each clause body line. Defaults to two spaces.
	Indent string

	// UppercaseKeywords upper-cases clause keywords in the output.
	UppercaseKeywords bool

	// Strict returns parse errors instead of laying out the raw text.
	Strict bool
}

// Formatter lays out SQL one clause per line.
type Formatter struct {
	indent    string
	uppercase bool
	strict    bool
}

// New creates a Formatter for the given options.
func New(opts Options) (*Formatter, error) {
	dialect := strings.ToLower(strings.TrimSpace(opts.Dialect))
	if dialect == "" {
		dialect = MySQL
	}
	if dialect != MySQL {
		return nil, fmt.Errorf("unsupported sql dialect %q", opts.Dialect)
	}

	indent := opts.Indent
	if indent == "" {
		indent = "  "
	}

	return &Formatter{
		indent:    indent,
		uppercase: opts.UppercaseKeywords,
		strict:    opts.Strict,
	}, nil
}

// Format parses raw and returns it laid out with one clause per line.
func (f *Formatter) Format(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	source, err := canonical(raw)
	if err != nil {
		if f.strict {
			return "", fmt.Errorf("parse sql: %w", err)
		}
		source = raw
	}

	return f.layout(words(source)), nil
}

// canonical returns the parser's serialisation of DML statements. Other
// statement kinds print lossily (DDL drops column definitions), so their
// source text is kept.
func canonical(raw string) (string, error) {
	stmt, err := sqlparser.Parse(raw)
	if err != nil {
		return "", err
	}

	switch stmt.(type) {
	case *sqlparser.Select, *sqlparser.Union, *sqlparser.ParenSelect,
		*sqlparser.Insert, *sqlparser.Update, *sqlparser.Delete:
		buf := sqlparser.NewTrackedBuffer(formatNode)
		buf.Myprintf("%v", stmt)
		return buf.String(), nil
	default:
		return raw, nil
	}
}

// formatNode prints ascending order terms without the implied "asc".
func formatNode(buf *sqlparser.TrackedBuffer, node sqlparser.SQLNode) {
	if o, ok := node.(*sqlparser.Order); ok && o.Direction == sqlparser.AscScr {
		buf.Myprintf("%v", o.Expr)
		return
	}
	node.Format(buf)
}
