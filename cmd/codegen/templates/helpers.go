package templates

import (
	"strconv"
	"strings"
)

func prefixedStrings(prefix string, count int) string {
	var sb strings.Builder
	for i := 0; i < count; i++ {
		sb.WriteString(prefix)
		sb.WriteString(strconv.Itoa(i))
		if i < count-1 {
			sb.WriteString(", ")
		}
	}
	return sb.String()
}

func castArgs(count int) string {
	var sb strings.Builder
	for i := 0; i < count; i++ {
		n := strconv.Itoa(i)
		sb.WriteString("args[")
		sb.WriteString(n)
		sb.WriteString("].(T")
		sb.WriteString(n)
		sb.WriteString(")")
		if i < count-1 {
			sb.WriteString(", ")
		}
	}
	return sb.String()
}
