package solrq

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// solrDateLayout is the ISO-8601 form Solr expects for date fields
const solrDateLayout = "2006-01-02T15:04:05.999Z"

// queryMetaChars are the characters with special meaning in the standard query parser
const queryMetaChars = `\+-!():^[]"{}~*?|&;/`

// EscapeQueryChars escapes Solr query syntax characters and whitespace in s
// so it is matched as a literal term.
//
// Example:
//
//	EscapeQueryChars("a:b c") // `a\:b\ c`
func EscapeQueryChars(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(queryMetaChars, r) || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// FormatValue renders a Go value as a Solr query term.
// Strings are escaped, times are converted to UTC, and nil becomes the
// open range marker "*".
func FormatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "*"
	case string:
		return EscapeQueryChars(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return EscapeQueryChars(strconv.Itoa(v))
	case int64:
		return EscapeQueryChars(strconv.FormatInt(v, 10))
	case float64:
		return EscapeQueryChars(strconv.FormatFloat(v, 'f', -1, 64))
	case float32:
		return EscapeQueryChars(strconv.FormatFloat(float64(v), 'f', -1, 32))
	case time.Time:
		return EscapeQueryChars(v.UTC().Format(solrDateLayout))
	case *time.Time:
		if v == nil {
			return "*"
		}
		return EscapeQueryChars(v.UTC().Format(solrDateLayout))
	case Field:
		return EscapeQueryChars(v.Name())
	case fmt.Stringer:
		return EscapeQueryChars(v.String())
	}
	return EscapeQueryChars(fmt.Sprint(value))
}

// localParamValue quotes a local-param value when it would otherwise end the
// {!...} block or split on whitespace.
func localParamValue(s string) string {
	if !strings.ContainsAny(s, " \t\n'}") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

// renderJoin renders j as a {!join} local-params prefix
func renderJoin(j Join) string {
	var sb strings.Builder
	sb.WriteString("{!join from=")
	sb.WriteString(localParamValue(j.From().Name()))
	sb.WriteString(" to=")
	sb.WriteString(localParamValue(j.To().Name()))
	if idx, ok := j.FromIndex(); ok {
		sb.WriteString(" fromIndex=")
		sb.WriteString(localParamValue(idx.Name()))
	}
	sb.WriteString("}")
	return sb.String()
}
