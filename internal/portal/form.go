package portal

import "strings"

// FormContentType is the only header the client sets.
const FormContentType = "application/x-www-form-urlencoded"

// Form is an urlencoded body whose fields keep insertion order.
// Unlike url.Values it never sorts, and values are encoded with
// EncodeComponent rather than url.QueryEscape.
type Form struct {
	pairs [][2]string
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// Add appends a field. Empty names and values are kept.
func (f *Form) Add(name, value string) *Form {
	f.pairs = append(f.pairs, [2]string{name, value})
	return f
}

// Len returns the number of fields.
func (f *Form) Len() int {
	return len(f.pairs)
}

// Encode returns name=value pairs joined by '&' in insertion order.
func (f *Form) Encode() string {
	var b strings.Builder
	for i, p := range f.pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(EncodeComponent(p[0]))
		b.WriteByte('=')
		b.WriteString(EncodeComponent(p[1]))
	}
	return b.String()
}

const upperhex = "0123456789ABCDEF"

// EncodeComponent percent-encodes s byte by byte. Letters, digits and
// - _ . ! ~ * ' ( ) pass through; every other byte, including each byte of
// a multi-byte UTF-8 sequence, becomes %XX with uppercase hex. A space is
// %20, never '+'.
func EncodeComponent(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	buf := make([]byte, 0, len(s)+2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			buf = append(buf, c)
			continue
		}
		buf = append(buf, '%', upperhex[c>>4], upperhex[c&0x0F])
	}
	return string(buf)
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
