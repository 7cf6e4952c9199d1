package message

// PreviewLength is the number of characters kept in a conversation preview.
const PreviewLength = 40

// Preview renders m as a one-line conversation preview, prefixed with the
// sender in group chats and cut to PreviewLength characters plus "...".
func Preview(m Raw, isGroup bool, names NameResolver) string {
	f := Format(m, isGroup, names)
	text := f.Text
	if f.Sender != "" {
		text = f.Sender + ": " + text
	}
	return Truncate(text, PreviewLength)
}

// Truncate cuts s to n characters, appending "..." when anything was cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
