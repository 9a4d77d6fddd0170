package sqlformat

import "strings"

type clauseKind int

const (
	// clauseBlock puts the keyword on its own line and indents the body.
	clauseBlock clauseKind = iota
	// clauseInline starts an indented line and keeps the body beside it.
	clauseInline
	// clauseSetOp sits alone on an unindented line.
	clauseSetOp
	// clauseTrailer starts an unindented line and keeps the body beside it.
	clauseTrailer
)

type clause struct {
	words []string
	kind  clauseKind
	// flat keeps top-level commas in the body on one line.
	flat bool
}

// clauses is ordered so that longer keyword sequences win over their prefixes.
var clauses = []clause{
	{words: []string{"on", "duplicate", "key", "update"}, kind: clauseBlock},
	{words: []string{"insert", "ignore", "into"}, kind: clauseBlock},
	{words: []string{"lock", "in", "share", "mode"}, kind: clauseTrailer},
	{words: []string{"natural", "right", "join"}, kind: clauseInline},
	{words: []string{"natural", "left", "join"}, kind: clauseInline},
	{words: []string{"select", "distinct"}, kind: clauseBlock},
	{words: []string{"insert", "into"}, kind: clauseBlock},
	{words: []string{"replace", "into"}, kind: clauseBlock},
	{words: []string{"delete", "from"}, kind: clauseBlock},
	{words: []string{"group", "by"}, kind: clauseBlock},
	{words: []string{"order", "by"}, kind: clauseBlock},
	{words: []string{"for", "update"}, kind: clauseTrailer},
	{words: []string{"union", "all"}, kind: clauseSetOp},
	{words: []string{"union", "distinct"}, kind: clauseSetOp},
	{words: []string{"left", "join"}, kind: clauseInline},
	{words: []string{"right", "join"}, kind: clauseInline},
	{words: []string{"inner", "join"}, kind: clauseInline},
	{words: []string{"cross", "join"}, kind: clauseInline},
	{words: []string{"natural", "join"}, kind: clauseInline},
	{words: []string{"select"}, kind: clauseBlock},
	{words: []string{"from"}, kind: clauseBlock},
	{words: []string{"where"}, kind: clauseBlock},
	{words: []string{"having"}, kind: clauseBlock},
	{words: []string{"limit"}, kind: clauseBlock, flat: true},
	{words: []string{"values"}, kind: clauseBlock},
	{words: []string{"update"}, kind: clauseBlock},
	{words: []string{"set"}, kind: clauseBlock},
	{words: []string{"union"}, kind: clauseSetOp},
	{words: []string{"straight_join"}, kind: clauseInline},
	{words: []string{"join"}, kind: clauseInline},
}

// word is a whitespace-delimited run of source text. Quoted strings and
// identifiers are never split.
type word struct {
	text string
	// depth is the parenthesis depth where the word starts.
	depth int
	// topComma and topSemi report a trailing ',' or ';' outside any parens.
	topComma bool
	topSemi  bool
}

// words splits s on whitespace outside quotes and records paren depth.
func words(s string) []word {
	var (
		out   []word
		cur   strings.Builder
		depth int
		start int
		quote rune
	)

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		text := cur.String()
		w := word{text: text, depth: start}
		if depth == 0 {
			w.topComma = strings.HasSuffix(text, ",")
			w.topSemi = strings.HasSuffix(text, ";")
		}
		out = append(out, w)
		cur.Reset()
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if quote != 0 {
			cur.WriteRune(r)
			switch {
			case r == '\\' && quote != '`' && i+1 < len(runes):
				i++
				cur.WriteRune(runes[i])
			case r == quote && i+1 < len(runes) && runes[i+1] == quote:
				i++
				cur.WriteRune(runes[i])
			case r == quote:
				quote = 0
			}
			continue
		}

		switch r {
		case ' ', '\t', '\n', '\r':
			flush()
			continue
		case '\'', '"', '`':
			quote = r
		case '(':
			if cur.Len() == 0 {
				start = depth
			}
			cur.WriteRune(r)
			depth++
			continue
		case ')':
			if depth > 0 {
				depth--
			}
		}

		if cur.Len() == 0 {
			start = depth
		}
		cur.WriteRune(r)
	}
	flush()

	return out
}

// match reports the clause starting at ws[i], if any.
func match(ws []word, i int) (clause, bool) {
	if ws[i].depth != 0 {
		return clause{}, false
	}

	for _, c := range clauses {
		if i+len(c.words) > len(ws) {
			continue
		}
		ok := true
		for j, kw := range c.words {
			w := ws[i+j]
			if w.depth != 0 || !strings.EqualFold(w.text, kw) {
				ok = false
				break
			}
		}
		if ok {
			return c, true
		}
	}

	return clause{}, false
}

// printer accumulates formatted output.
type printer struct {
	b       strings.Builder
	indent  string
	inBody  bool
	flat    bool
	needSep bool
	// breakNext starts a new line before the next word unless a clause
	// starts one first.
	breakNext bool
}

func (p *printer) newline(indented bool) {
	if p.b.Len() > 0 {
		p.b.WriteByte('\n')
	}
	if indented {
		p.b.WriteString(p.indent)
	}
	p.needSep = false
	p.breakNext = false
}

func (p *printer) write(s string) {
	if p.breakNext {
		p.newline(false)
	}
	if p.needSep {
		p.b.WriteByte(' ')
	}
	p.b.WriteString(s)
	p.needSep = true
}

func (f *Formatter) layout(ws []word) string {
	p := &printer{indent: f.indent}

	for i := 0; i < len(ws); {
		if c, ok := match(ws, i); ok {
			kw := make([]string, len(c.words))
			for j := range c.words {
				kw[j] = ws[i+j].text
			}
			text := strings.Join(kw, " ")
			if f.uppercase {
				text = strings.ToUpper(text)
			}
			i += len(c.words)
			p.flat = c.flat

			switch c.kind {
			case clauseBlock:
				p.newline(false)
				p.write(text)
				p.newline(true)
				p.inBody = true
			case clauseInline:
				p.newline(p.inBody)
				p.write(text)
			case clauseSetOp:
				p.newline(false)
				p.write(text)
				p.breakNext = true
				p.inBody = false
			case clauseTrailer:
				p.newline(false)
				p.write(text)
				p.inBody = false
			}
			continue
		}

		w := ws[i]
		i++
		p.write(w.text)

		switch {
		case w.topComma && !p.flat:
			p.newline(p.inBody)
		case w.topSemi && i < len(ws):
			// The next clause's newline leaves one blank line between statements.
			p.b.WriteByte('\n')
			p.needSep = false
			p.inBody = false
			p.flat = false
		}
	}

	return strings.TrimRight(p.b.String(), " \t")
}
