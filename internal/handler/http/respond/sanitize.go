package respond

import (
	"regexp"
)

var (
	// 注意: anthropicKeyPattern を先に適用する（より具体的なパターンから）
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	// 既にマスクされた文字列（*を含む）にはマッチしない
	openaiKeyPattern = regexp.MustCompile(`sk-[a-zA-Z0-9-_]{10,}`)

	bearerPattern = regexp.MustCompile(`(?i)(bearer\s+)[a-zA-Z0-9._~+/=-]{8,}`)
)

// Sanitize masks API keys and bearer tokens in s.
// Upstream error bodies can echo the submitted key, so every detail string
// returned to a client passes through here.
func Sanitize(s string) string {
	s = anthropicKeyPattern.ReplaceAllString(s, "sk-ant-****")
	s = openaiKeyPattern.ReplaceAllString(s, "sk-****")
	s = bearerPattern.ReplaceAllString(s, "${1}****")
	return s
}

// SanitizeError returns err's message with credentials masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return Sanitize(err.Error())
}
