package utils

import "strings"

// ParseID accepts a raw snowflake or a user, channel or role mention and
// returns the id. It returns "" when arg is neither.
func ParseID(arg string) string {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "<") && strings.HasSuffix(arg, ">") {
		arg = strings.TrimSuffix(strings.TrimPrefix(arg, "<"), ">")
		arg = strings.TrimLeft(arg, "@#!&")
	}
	if arg == "" {
		return ""
	}
	for _, r := range arg {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return arg
}
