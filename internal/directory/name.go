package directory

import "strings"

// ToStructured splits a display name as "Last First Middle...". Tokens are
// separated by single spaces and empty tokens keep their slot, so the first
// token is always the last name and a single word yields only Last.
func ToStructured(raw string) Name {
	parts := strings.Split(raw, " ")

	var n Name
	n.Last = parts[0]
	if len(parts) > 1 {
		n.First = parts[1]
	}
	if len(parts) > 2 {
		n.Middle = strings.Join(parts[2:], " ")
	}
	return n
}

// ToDisplayString joins a structured name as "Last First Middle", trimmed.
func ToDisplayString(n Name) string {
	return strings.TrimSpace(n.Last + " " + n.First + " " + n.Middle)
}
