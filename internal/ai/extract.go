package ai

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls the JSON document out of a model reply: a ```json fence
// first, then any bare fence, then the raw text.
func ExtractJSON(reply string) string {
	if _, rest, ok := strings.Cut(reply, "```json"); ok {
		body, _, _ := strings.Cut(rest, "```")
		return strings.TrimSpace(body)
	}
	if _, rest, ok := strings.Cut(reply, "```"); ok {
		body, _, _ := strings.Cut(rest, "```")
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(reply)
}

// DecodeReply unmarshals the JSON embedded in reply into dst.
func DecodeReply(reply string, dst any) error {
	return json.Unmarshal([]byte(ExtractJSON(reply)), dst)
}
