package redact

import "strings"

// Email はローカル部を先頭2文字だけ残して隠す。
func Email(s string) string {
	local, domain, ok := strings.Cut(s, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***"
	}

	if len(local) > 2 {
		local = local[:2] + "***"
	} else {
		local = "***"
	}
	return local + "@" + domain
}

func Token() string { return "[REDACTED_TOKEN]" }
