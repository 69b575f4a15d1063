package builtins

import (
	"strconv"
	"strings"

	"github.com/apfeltee/ecma5go/internal/object"
)

// installJSON wires the JSON namespace object's stringify/parse (ES5 15.12).
// original_source has no dedicated JSON translation unit to ground this
// against; stringify walks the object/array tree directly using the same
// ToPrimitive/property-enumeration machinery installObject already
// exercises (no replacer/indent support — a functioning parse/stringify
// pair, not the full Annex B surface).
func installJSON(ctx *object.Context, global *object.Object) {
	j := object.New(object.KindJSON, ctx.Proto.Object)
	defineValue(ctx, global, "JSON", object.Value{Tag: object.TagObject, Object: j}, object.FlagHidden)

	defineMethod(ctx, j, "stringify", 1, func(ctx *object.Context) object.Value {
		var sb strings.Builder
		if !jsonWrite(ctx, &sb, arg(ctx, 0), map[*object.Object]bool{}) {
			return object.Undefined
		}
		return object.InlineString(sb.String())
	})
	defineMethod(ctx, j, "parse", 1, func(ctx *object.Context) object.Value {
		s := ctx.ToString(arg(ctx, 0))
		p := &jsonParser{src: s, ctx: ctx}
		p.skipSpace()
		v := p.parseValue()
		p.skipSpace()
		if p.pos != len(p.src) {
			panic(ctx.NewSyntaxError("unexpected trailing characters in JSON"))
		}
		return v
	})
}

func jsonWrite(ctx *object.Context, sb *strings.Builder, v object.Value, seen map[*object.Object]bool) bool {
	switch {
	case v.IsUndefined():
		return false
	case v.Tag == object.TagFunction:
		return false
	case v.IsNull():
		sb.WriteString("null")
	case v.IsBoolean():
		if v.IsTrue() {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case v.IsNumber():
		n := ctx.ToBinary(v)
		sb.WriteString(strconv.FormatFloat(n, 'g', -1, 64))
	case v.IsString():
		writeJSONString(sb, v.StringValue())
	case v.IsObject() && v.Object.Kind == object.KindArray:
		if seen[v.Object] {
			panic(ctx.NewTypeError("converting circular structure to JSON"))
		}
		seen[v.Object] = true
		sb.WriteByte('[')
		for i := 0; i < v.Object.ElementCount; i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			ev, ok := v.Object.GetElement(i)
			if !ok || !jsonWrite(ctx, sb, ev, seen) {
				sb.WriteString("null")
			}
		}
		sb.WriteByte(']')
		delete(seen, v.Object)
	case v.IsObject():
		if seen[v.Object] {
			panic(ctx.NewTypeError("converting circular structure to JSON"))
		}
		if m, _, ok := v.Object.Member(k(ctx, "toJSON"), false); ok && m.Tag == object.TagFunction {
			r, thrown := object.Invoke(ctx, m.Object, v, nil)
			if thrown != nil {
				panic(thrown)
			}
			return jsonWrite(ctx, sb, r, seen)
		}
		seen[v.Object] = true
		sb.WriteByte('{')
		first := true
		for _, key := range v.Object.OwnKeys() {
			pv, _ := v.Object.GetSlot(key)
			var fieldBuf strings.Builder
			if !jsonWrite(ctx, &fieldBuf, pv, seen) {
				continue
			}
			if !first {
				sb.WriteByte(',')
			}
			first = false
			writeJSONString(sb, ctx.Keys.TextOf(key))
			sb.WriteByte(':')
			sb.WriteString(fieldBuf.String())
		}
		sb.WriteByte('}')
		delete(seen, v.Object)
	default:
		return false
	}
	return true
}

func writeJSONString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				sb.WriteString("\\u")
				sb.WriteString(strconv.FormatInt(int64(r), 16))
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
}

// jsonParser is a minimal recursive-descent JSON reader; it mirrors
// internal/lexer's byte-cursor style rather than pulling in an external JSON
// library, since the grammar is small and fixed (ES5 15.12.1's own grammar).
type jsonParser struct {
	src string
	pos int
	ctx *object.Context
}

func (p *jsonParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *jsonParser) fail(msg string) {
	panic(p.ctx.NewSyntaxError(msg))
}

func (p *jsonParser) parseValue() object.Value {
	p.skipSpace()
	if p.pos >= len(p.src) {
		p.fail("unexpected end of JSON input")
	}
	switch c := p.src[p.pos]; {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"':
		return object.InlineString(p.parseString())
	case c == 't':
		p.expectLiteral("true")
		return object.True
	case c == 'f':
		p.expectLiteral("false")
		return object.False
	case c == 'n':
		p.expectLiteral("null")
		return object.Null
	default:
		return p.parseNumber()
	}
}

func (p *jsonParser) expectLiteral(lit string) {
	if p.pos+len(lit) > len(p.src) || p.src[p.pos:p.pos+len(lit)] != lit {
		p.fail("invalid JSON literal")
	}
	p.pos += len(lit)
}

func (p *jsonParser) parseObject() object.Value {
	p.pos++ // {
	o := object.New(object.KindPlain, p.ctx.Proto.Object)
	this := object.Value{Tag: object.TagObject, Object: o}
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '}' {
		p.pos++
		return this
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != '"' {
			p.fail("expected string key in JSON object")
		}
		key := p.parseString()
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ':' {
			p.fail("expected ':' in JSON object")
		}
		p.pos++
		v := p.parseValue()
		p.ctx.Put(o, object.KeyValue(p.ctx.Keys.MakeFromString(key)), v, this, false)
		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		break
	}
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '}' {
		p.fail("expected '}' in JSON object")
	}
	p.pos++
	return this
}

func (p *jsonParser) parseArray() object.Value {
	p.pos++ // [
	arr := object.New(object.KindArray, p.ctx.Proto.Array)
	p.skipSpace()
	n := 0
	if p.pos < len(p.src) && p.src[p.pos] == ']' {
		p.pos++
		return object.ObjectValue(object.TagObject, arr)
	}
	for {
		v := p.parseValue()
		arr.SetElement(n, v)
		n++
		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		break
	}
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != ']' {
		p.fail("expected ']' in JSON array")
	}
	p.pos++
	return object.ObjectValue(object.TagObject, arr)
}

func (p *jsonParser) parseString() string {
	p.pos++ // opening quote
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '"' {
			p.pos++
			return sb.String()
		}
		if c == '\\' {
			p.pos++
			if p.pos >= len(p.src) {
				break
			}
			switch p.src[p.pos] {
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case '/':
				sb.WriteByte('/')
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case 'u':
				if p.pos+5 <= len(p.src) {
					n, err := strconv.ParseInt(p.src[p.pos+1:p.pos+5], 16, 32)
					if err == nil {
						sb.WriteRune(rune(n))
					}
					p.pos += 4
				}
			}
			p.pos++
			continue
		}
		sb.WriteByte(c)
		p.pos++
	}
	p.fail("unterminated JSON string")
	return ""
}

func (p *jsonParser) parseNumber() object.Value {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E' {
			p.pos++
			continue
		}
		break
	}
	n, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		p.fail("invalid number in JSON")
	}
	return object.Bin(n)
}
