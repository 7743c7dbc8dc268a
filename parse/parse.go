package parse

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/c360/telemsend/errors"
)

// uriSchemes are the schemes a value token may carry to be inferred as a URI
// reference. Anything else falls through to plain text.
var uriSchemes = map[string]bool{
	"file":  true,
	"http":  true,
	"https": true,
	"ftp":   true,
	"ftps":  true,
}

// widthSuffixes maps integer literal suffixes to their kind. Longer suffixes
// are checked first so that "ll" is not read as "l".
var widthSuffixes = []struct {
	suffix string
	kind   Kind
	signed bool
}{
	{"ull", KindUint64, false},
	{"ub", KindUint8, false},
	{"uh", KindUint16, false},
	{"ul", KindUint32, false},
	{"ll", KindInt64, true},
	{"u", KindUint64, false},
	{"b", KindInt8, true},
	{"h", KindInt16, true},
	{"l", KindInt32, true},
}

var floatPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// rules is the ordered inference cascade. The first rule that matches commits
// the value; a rule whose strict conversion fails simply does not match and
// the cascade continues. The terminal fallback is plain text.
var rules = []func(string) (Value, bool){
	matchQuoted,
	matchBool,
	matchInt,
	matchHex,
	matchFloat,
	matchURI,
}

// ParsePair converts one raw token into a key/value pair.
//
// A token is either "key" (null value), "key=value" (inferred value), or
// invalid when it contains more than one '='.
func ParsePair(token string) (Pair, error) {
	if strings.Count(token, "=") > 1 {
		return Pair{}, errors.WrapInvalid(errors.ErrAmbiguousDelimiter, "parse", "ParsePair", "split "+strconv.Quote(token))
	}

	key, raw, found := strings.Cut(token, "=")
	if !found {
		return Pair{Key: token, Value: Null()}, nil
	}

	for _, rule := range rules {
		if v, ok := rule(raw); ok {
			return Pair{Key: key, Value: v}, nil
		}
	}
	return Pair{Key: key, Value: Text(raw)}, nil
}

// ParsePairs converts a token sequence in order, failing on the first bad
// token.
func ParsePairs(tokens []string) ([]Pair, error) {
	pairs := make([]Pair, 0, len(tokens))
	for _, tok := range tokens {
		p, err := ParsePair(tok)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

// matchQuoted strips matching single or double quotes. Quoted content is
// always text and never re-enters the cascade.
func matchQuoted(s string) (Value, bool) {
	if len(s) < 2 {
		return Value{}, false
	}
	first, last := s[0], s[len(s)-1]
	if first != last || (first != '\'' && first != '"') {
		return Value{}, false
	}
	return Text(s[1 : len(s)-1]), true
}

func matchBool(s string) (Value, bool) {
	switch s {
	case "true":
		return Bool(true), true
	case "false":
		return Bool(false), true
	}
	return Value{}, false
}

// matchInt handles bare decimals and decimals with a width suffix. The suffix
// is stripped before the numeric parse, and the parse is range-checked against
// the indicated width.
func matchInt(s string) (Value, bool) {
	digits := s
	kind := KindInt64
	signed := true
	for _, ws := range widthSuffixes {
		if strings.HasSuffix(s, ws.suffix) {
			digits = s[:len(s)-len(ws.suffix)]
			kind = ws.kind
			signed = ws.signed
			break
		}
	}
	if digits == "" {
		return Value{}, false
	}

	if signed {
		v, err := strconv.ParseInt(digits, 10, kind.Width()*8)
		if err != nil {
			return Value{}, false
		}
		return Int(kind, v), true
	}
	v, err := strconv.ParseUint(digits, 10, kind.Width()*8)
	if err != nil {
		return Value{}, false
	}
	return Uint(kind, v), true
}

func matchHex(s string) (Value, bool) {
	if len(s) < 3 || (!strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X")) {
		return Value{}, false
	}
	v, err := strconv.ParseUint(s[2:], 16, 64)
	if err != nil {
		return Value{}, false
	}
	return Uint(KindUint64, v), true
}

// matchFloat requires literal shape before the strict parse so that words
// strconv accepts ("NaN", "Inf") stay text.
func matchFloat(s string) (Value, bool) {
	if !floatPattern.MatchString(s) {
		return Value{}, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, false
	}
	return Float(v), true
}

func matchURI(s string) (Value, bool) {
	u, err := url.Parse(s)
	if err != nil || !uriSchemes[u.Scheme] {
		return Value{}, false
	}
	return URI(s), true
}
