package step

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Record is a keyword with its parameter list, used for header entries
// and for the parts of complex entity instances.
type Record struct {
	Type  string
	Attrs []Value
}

// Entity is an instance from the data section.
type Entity struct {
	ID    int
	Type  string // upper case; empty for complex instances
	Attrs []Value
	Parts []Record // set for complex instances only
}

// Attr returns attribute i, or Null when out of range.
func (e *Entity) Attr(i int) Value {
	if e == nil || i < 0 || i >= len(e.Attrs) {
		return Null
	}
	return e.Attrs[i]
}

// Is reports whether the entity has the given type (case insensitive).
// Complex instances match any of their parts.
func (e *Entity) Is(typ string) bool {
	typ = strings.ToUpper(typ)
	if e.Type == typ {
		return true
	}
	for _, p := range e.Parts {
		if p.Type == typ {
			return true
		}
	}
	return false
}

// Part returns the part of a complex instance with the given type.
// A simple instance of that type is returned as a single record.
func (e *Entity) Part(typ string) (Record, bool) {
	typ = strings.ToUpper(typ)
	if e.Type == typ {
		return Record{Type: e.Type, Attrs: e.Attrs}, true
	}
	for _, p := range e.Parts {
		if p.Type == typ {
			return p, true
		}
	}
	return Record{}, false
}

// Header holds the records of the HEADER section.
type Header struct {
	Records []Record
}

// Get returns the first header record with the given keyword.
func (h Header) Get(keyword string) (Record, bool) {
	keyword = strings.ToUpper(keyword)
	for _, r := range h.Records {
		if r.Type == keyword {
			return r, true
		}
	}
	return Record{}, false
}

// File is a parsed exchange structure.
type File struct {
	Header   Header
	entities map[int]*Entity
	order    []int
	maxID    int
}

// NewFile creates an empty exchange structure.
func NewFile() *File {
	return &File{entities: make(map[int]*Entity)}
}

// ReadFile parses the exchange structure stored at path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Entity returns the instance with the given name.
func (f *File) Entity(id int) (*Entity, bool) {
	e, ok := f.entities[id]
	return e, ok
}

// Resolve follows a reference value to its instance.
func (f *File) Resolve(v Value) (*Entity, bool) {
	id, ok := v.RefID()
	if !ok {
		return nil, false
	}
	return f.Entity(id)
}

// Entities returns all instances in file order.
func (f *File) Entities() []*Entity {
	out := make([]*Entity, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.entities[id])
	}
	return out
}

// Len returns the number of instances.
func (f *File) Len() int { return len(f.order) }

// Schema returns the first schema identifier from FILE_SCHEMA, upper case.
func (f *File) Schema() string {
	rec, ok := f.Header.Get("FILE_SCHEMA")
	if !ok || len(rec.Attrs) == 0 {
		return ""
	}
	items, ok := rec.Attrs[0].List()
	if !ok || len(items) == 0 {
		return ""
	}
	s, _ := items[0].Text()
	return strings.ToUpper(s)
}

// Add appends a new instance with the next free instance name.
func (f *File) Add(typ string, attrs ...Value) *Entity {
	f.maxID++
	e := &Entity{ID: f.maxID, Type: strings.ToUpper(typ), Attrs: attrs}
	f.entities[e.ID] = e
	f.order = append(f.order, e.ID)
	return e
}

func (f *File) insert(e *Entity) error {
	if _, dup := f.entities[e.ID]; dup {
		return fmt.Errorf("duplicate instance #%d", e.ID)
	}
	f.entities[e.ID] = e
	f.order = append(f.order, e.ID)
	if e.ID > f.maxID {
		f.maxID = e.ID
	}
	return nil
}

// Write encodes the exchange structure.
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "ISO-10303-21;")
	fmt.Fprintln(bw, "HEADER;")
	for _, r := range f.Header.Records {
		fmt.Fprintf(bw, "%s;\n", encodeRecord(r))
	}
	fmt.Fprintln(bw, "ENDSEC;")
	fmt.Fprintln(bw, "DATA;")
	ids := append([]int(nil), f.order...)
	sort.Ints(ids)
	for _, id := range ids {
		e := f.entities[id]
		if len(e.Parts) > 0 {
			parts := make([]string, len(e.Parts))
			for i, p := range e.Parts {
				parts[i] = encodeRecord(p)
			}
			fmt.Fprintf(bw, "#%d=(%s);\n", id, strings.Join(parts, ""))
			continue
		}
		fmt.Fprintf(bw, "#%d=%s;\n", id, encodeRecord(Record{Type: e.Type, Attrs: e.Attrs}))
	}
	fmt.Fprintln(bw, "ENDSEC;")
	fmt.Fprintln(bw, "END-ISO-10303-21;")
	return bw.Flush()
}

// WriteFile encodes the exchange structure to path.
func (f *File) WriteFile(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Write(out); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func encodeRecord(r Record) string {
	var b strings.Builder
	b.WriteString(r.Type)
	b.WriteByte('(')
	for i, a := range r.Attrs {
		if i > 0 {
			b.WriteByte(',')
		}
		a.encode(&b)
	}
	b.WriteByte(')')
	return b.String()
}

// Parse parses an exchange structure.
func Parse(src []byte) (*File, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseFile()
}

type parser struct {
	lex *lexer
	tok token
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Line: p.tok.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(k tokenKind) (token, error) {
	t := p.tok
	if t.kind != k {
		return t, p.errorf("expected %s, found %s %q", k, t.kind, t.text)
	}
	return t, p.advance()
}

func (p *parser) expectKeyword(kw string) error {
	if p.tok.kind != tokKeyword || !strings.EqualFold(p.tok.text, kw) {
		return p.errorf("expected %s, found %q", kw, p.tok.text)
	}
	return p.advance()
}

func (p *parser) parseFile() (*File, error) {
	f := NewFile()
	if err := p.expectKeyword("ISO-10303-21"); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokSemicolon); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("HEADER"); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokSemicolon); err != nil {
		return nil, err
	}
	for !(p.tok.kind == tokKeyword && strings.EqualFold(p.tok.text, "ENDSEC")) {
		rec, err := p.parseRecord()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokSemicolon); err != nil {
			return nil, err
		}
		f.Header.Records = append(f.Header.Records, rec)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokSemicolon); err != nil {
		return nil, err
	}

	for p.tok.kind == tokKeyword && strings.EqualFold(p.tok.text, "DATA") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		// DATA sections may carry a parameter list naming the section.
		if p.tok.kind == tokLParen {
			if _, err := p.parseList(); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(tokSemicolon); err != nil {
			return nil, err
		}
		for p.tok.kind == tokInstance {
			e, err := p.parseInstance()
			if err != nil {
				return nil, err
			}
			if err := f.insert(e); err != nil {
				return nil, p.errorf("%v", err)
			}
		}
		if err := p.expectKeyword("ENDSEC"); err != nil {
			return nil, err
		}
		if _, err := p.expect(tokSemicolon); err != nil {
			return nil, err
		}
	}
	if err := p.expectKeyword("END-ISO-10303-21"); err != nil {
		return nil, err
	}
	return f, nil
}

func (p *parser) parseInstance() (*Entity, error) {
	t, err := p.expect(tokInstance)
	if err != nil {
		return nil, err
	}
	id, err := strconv.Atoi(t.text)
	if err != nil {
		return nil, &SyntaxError{Line: t.line, Msg: "invalid instance name #" + t.text}
	}
	if _, err := p.expect(tokEquals); err != nil {
		return nil, err
	}
	e := &Entity{ID: id}
	if p.tok.kind == tokLParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		for p.tok.kind != tokRParen {
			rec, err := p.parseRecord()
			if err != nil {
				return nil, err
			}
			e.Parts = append(e.Parts, rec)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	} else {
		rec, err := p.parseRecord()
		if err != nil {
			return nil, err
		}
		e.Type, e.Attrs = rec.Type, rec.Attrs
	}
	if _, err := p.expect(tokSemicolon); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *parser) parseRecord() (Record, error) {
	t, err := p.expect(tokKeyword)
	if err != nil {
		return Record{}, err
	}
	list, err := p.parseList()
	if err != nil {
		return Record{}, err
	}
	return Record{Type: strings.ToUpper(t.text), Attrs: list.Items}, nil
}

func (p *parser) parseList() (Value, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return Value{}, err
	}
	list := Value{Kind: KindList}
	for p.tok.kind != tokRParen {
		v, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		list.Items = append(list.Items, v)
		if p.tok.kind == tokComma {
			if err := p.advance(); err != nil {
				return Value{}, err
			}
			continue
		}
		if p.tok.kind != tokRParen {
			return Value{}, p.errorf("expected ',' or ')', found %s %q", p.tok.kind, p.tok.text)
		}
	}
	return list, p.advance()
}

func (p *parser) parseValue() (Value, error) {
	t := p.tok
	switch t.kind {
	case tokDollar:
		return Null, p.advance()
	case tokStar:
		return Value{Kind: KindDerived, Raw: "*"}, p.advance()
	case tokInstance:
		id, err := strconv.Atoi(t.text)
		if err != nil {
			return Value{}, p.errorf("invalid instance name #%s", t.text)
		}
		return Value{Kind: KindRef, Ref: id, Raw: "#" + t.text}, p.advance()
	case tokInteger:
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return Value{}, p.errorf("invalid integer %q", t.text)
		}
		return Value{Kind: KindInteger, Int: n, Real: float64(n), Raw: t.text}, p.advance()
	case tokReal:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return Value{}, p.errorf("invalid real %q", t.text)
		}
		return Value{Kind: KindReal, Real: f, Raw: t.text}, p.advance()
	case tokString:
		s, err := decodeString(t.text[1 : len(t.text)-1])
		if err != nil {
			return Value{}, &SyntaxError{Line: t.line, Msg: err.Error()}
		}
		return Value{Kind: KindString, Str: s, Raw: t.text}, p.advance()
	case tokEnum:
		return Value{Kind: KindEnum, Str: strings.ToUpper(t.text[1 : len(t.text)-1]), Raw: t.text}, p.advance()
	case tokBinary:
		return Value{Kind: KindBinary, Str: t.text[1 : len(t.text)-1], Raw: t.text}, p.advance()
	case tokLParen:
		return p.parseList()
	case tokKeyword:
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		inner, err := p.parseList()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindTyped, Str: strings.ToUpper(t.text), Items: inner.Items}, nil
	}
	return Value{}, p.errorf("unexpected %s %q", t.kind, t.text)
}
