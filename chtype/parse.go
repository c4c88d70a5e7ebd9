package chtype

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Parse 解析规范类型串，是 Type.String 的逆操作。
// 查询结果中服务端返回的类型串通过这里还原成类型描述。
func Parse(s string) (Type, error) {
	p := &parser{input: s}
	t, err := p.parseType()
	if err != nil {
		return Type{}, err
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return Type{}, errors.Errorf("unexpected trailing input at %d in %q", p.pos, s)
	}
	if err := t.Validate(); err != nil {
		return Type{}, errors.WithMessagef(err, "invalid type %q", s)
	}
	return t, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) parseType() (Type, error) {
	name, err := p.parseIdent()
	if err != nil {
		return Type{}, err
	}

	switch Kind(name) {
	case KindDateTime64, KindDecimal64:
		n, err := p.parseIntArg()
		if err != nil {
			return Type{}, errors.WithMessagef(err, "parse %s argument failed", name)
		}
		if Kind(name) == KindDateTime64 {
			return Type{Kind: KindDateTime64, Precision: n}, nil
		}
		return Type{Kind: KindDecimal64, Scale: n}, nil
	case KindNullable, KindArray, KindLowCardinality:
		elems, err := p.parseTypeArgs()
		if err != nil {
			return Type{}, errors.WithMessagef(err, "parse %s arguments failed", name)
		}
		return Type{Kind: Kind(name), Elems: elems}, nil
	case KindTuple, KindMap:
		elems, err := p.parseTypeArgs()
		if err != nil {
			return Type{}, errors.WithMessagef(err, "parse %s arguments failed", name)
		}
		return Type{Kind: Kind(name), Elems: elems}, nil
	case KindEnum8, KindEnum16:
		members, err := p.parseEnumMembers()
		if err != nil {
			return Type{}, errors.WithMessagef(err, "parse %s members failed", name)
		}
		return Type{Kind: Kind(name), Members: members}, nil
	}

	if scalarKinds[Kind(name)] {
		return Type{Kind: Kind(name)}, nil
	}
	return Type{}, errors.Errorf("unknown type name %q", name)
}

func (p *parser) parseTypeArgs() ([]Type, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	var elems []Type
	for {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		elems = append(elems, t)
		more, err := p.commaOrClose()
		if err != nil {
			return nil, err
		}
		if !more {
			return elems, nil
		}
	}
}

func (p *parser) parseIntArg() (int, error) {
	if err := p.expect('('); err != nil {
		return 0, err
	}
	p.skipSpaces()
	begin := p.pos
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
	}
	if begin == p.pos {
		return 0, errors.Errorf("expect digits at %d", begin)
	}
	n, err := strconv.Atoi(p.input[begin:p.pos])
	if err != nil {
		return 0, errors.WithMessage(err, "strconv.Atoi failed")
	}
	if err := p.expect(')'); err != nil {
		return 0, err
	}
	return n, nil
}

func (p *parser) parseEnumMembers() ([]EnumMember, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	var members []EnumMember
	for {
		name, err := p.parseQuoted()
		if err != nil {
			return nil, err
		}
		if err := p.expect('='); err != nil {
			return nil, err
		}
		p.skipSpaces()
		begin := p.pos
		if p.pos < len(p.input) && (p.input[p.pos] == '-' || p.input[p.pos] == '+') {
			p.pos++
		}
		for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
			p.pos++
		}
		if begin == p.pos {
			return nil, errors.Errorf("expect integer at %d", begin)
		}
		value, err := strconv.ParseInt(p.input[begin:p.pos], 10, 64)
		if err != nil {
			return nil, errors.WithMessage(err, "strconv.ParseInt failed")
		}
		members = append(members, EnumMember{Name: name, Value: value})

		more, err := p.commaOrClose()
		if err != nil {
			return nil, err
		}
		if !more {
			return members, nil
		}
	}
}

// parseQuoted 解析单引号括起的枚举名，支持 \' 和 \\ 转义
func (p *parser) parseQuoted() (string, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) || p.input[p.pos] != '\'' {
		return "", errors.Errorf("expect quote at %d", p.pos)
	}
	p.pos++
	var sb strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch c {
		case '\\':
			if p.pos+1 >= len(p.input) {
				return "", errors.Errorf("unterminated escape at %d", p.pos)
			}
			sb.WriteByte(p.input[p.pos+1])
			p.pos += 2
		case '\'':
			p.pos++
			return sb.String(), nil
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", errors.Errorf("unterminated quoted string at %d", p.pos)
}

func (p *parser) parseIdent() (string, error) {
	p.skipSpaces()
	begin := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	if begin == p.pos {
		return "", errors.Errorf("expect identifier at %d", begin)
	}
	return p.input[begin:p.pos], nil
}

// commaOrClose 消费一个逗号返回 true，消费一个右括号返回 false
func (p *parser) commaOrClose() (bool, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return false, errors.Errorf("unexpected end of input at %d", p.pos)
	}
	switch p.input[p.pos] {
	case ',':
		p.pos++
		return true, nil
	case ')':
		p.pos++
		return false, nil
	}
	return false, errors.Errorf("expect ',' or ')' at %d, got %q", p.pos, p.input[p.pos])
}

func (p *parser) expect(c byte) error {
	p.skipSpaces()
	if p.pos >= len(p.input) || p.input[p.pos] != c {
		return errors.Errorf("expect %q at %d", string(c), p.pos)
	}
	p.pos++
	return nil
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}
