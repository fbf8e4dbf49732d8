package cstr

import "strings"

// ToString trims the string at the first null byte, which C uses to indicate the end of a string.
func ToString(cstr string) string {
	if nbi := strings.IndexByte(cstr, 0x00); nbi != -1 {
		return cstr[:nbi]
	}
	return cstr
}

// BytesToString converts a fixed size kernel buffer, like the fields of utsname, to a string.
func BytesToString(b []byte) string {
	return ToString(string(b))
}
