package expression

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	strftime "github.com/ncruces/go-strftime"
)

// formatLetters renders t with a letter pattern such as "yyyy-MM-dd HH:mm:ss".
// Runs of the same letter form one field; text inside single quotes is
// copied verbatim and '' is a literal quote. Other non-letters are copied.
func formatLetters(pattern string, t time.Time) (string, error) {
	layout, err := letterLayout(pattern, t)
	if err != nil {
		return "", err
	}
	return strftime.Format(layout, t), nil
}

// letterLayout translates a letter pattern into a strftime layout. Fields
// with no strftime directive are rendered from t and embedded as literals.
func letterLayout(pattern string, t time.Time) (string, error) {
	var sb strings.Builder
	literal := func(s string) {
		sb.WriteString(strings.ReplaceAll(s, "%", "%%"))
	}
	runes := []rune(pattern)
	for i := 0; i < len(runes); {
		c := runes[i]
		if c == '\'' {
			j := i + 1
			if j < len(runes) && runes[j] == '\'' {
				literal("'")
				i += 2
				continue
			}
			for j < len(runes) {
				if runes[j] == '\'' {
					if j+1 < len(runes) && runes[j+1] == '\'' {
						literal("'")
						j += 2
						continue
					}
					break
				}
				literal(string(runes[j]))
				j++
			}
			i = j + 1
			continue
		}
		if !isLetter(c) {
			literal(string(c))
			i++
			continue
		}
		n := 1
		for i+n < len(runes) && runes[i+n] == c {
			n++
		}
		if d := directive(c, n); d != "" {
			sb.WriteString(d)
		} else {
			text, err := renderField(c, n, t)
			if err != nil {
				return "", err
			}
			literal(text)
		}
		i += n
	}
	return sb.String(), nil
}

func isLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// padded picks the zero-padded directive for runs of two or more letters.
func padded(n int, spec string) string {
	if n >= 2 {
		return "%" + spec
	}
	return "%-" + spec
}

// directive maps a run of n pattern letters to a strftime directive, or ""
// when strftime has none.
func directive(c rune, n int) string {
	switch c {
	case 'y', 'Y':
		if n == 2 {
			return "%y"
		}
		return "%Y"
	case 'M':
		switch {
		case n >= 4:
			return "%B"
		case n == 3:
			return "%b"
		}
		return padded(n, "m")
	case 'd':
		return padded(n, "d")
	case 'D':
		if n >= 3 {
			return "%j"
		}
		return "%-j"
	case 'E':
		if n >= 4 {
			return "%A"
		}
		return "%a"
	case 'u':
		return "%u"
	case 'a':
		return "%p"
	case 'H':
		return padded(n, "H")
	case 'h':
		return padded(n, "I")
	case 'm':
		return padded(n, "M")
	case 's':
		return padded(n, "S")
	case 'S':
		return "%L"
	case 'z':
		if n < 4 {
			return "%Z"
		}
	case 'Z':
		return "%z"
	case 'X':
		if n >= 3 {
			return "%:z"
		}
		return "%z"
	}
	return ""
}

// renderField covers the letters strftime has no directive for: era,
// 1-24 and 0-11 hours, and the full zone name.
func renderField(c rune, n int, t time.Time) (string, error) {
	switch c {
	case 'G':
		if t.Year() <= 0 {
			return "BC", nil
		}
		return "AD", nil
	case 'k':
		h := t.Hour()
		if h == 0 {
			h = 24
		}
		return pad(h, n), nil
	case 'K':
		return pad(t.Hour()%12, n), nil
	case 'z':
		return t.Location().String(), nil
	}
	return "", fmt.Errorf("unsupported pattern letter %q", string(c))
}

func pad(n, width int) string {
	s := strconv.Itoa(n)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
