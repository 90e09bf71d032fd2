package plugin

import (
	"fmt"
	"regexp"
	"strings"
)

const TransferTemplate = "Respond with a JSON markdown block containing only the extracted values. Use null for any values that cannot be determined.\n" +
	"\n" +
	"Example response:\n" +
	"```json\n" +
	"{\n" +
	"    \"recipient\": \"0xaa000b3651bd1e57554ebd7308ca70df7c8c0e8e09d67123cc15c8a8a79342b3\",\n" +
	"    \"amount\": \"1\",\n" +
	"    \"symbol\": \"RGAS\",\n" +
	"    \"index\": 1\n" +
	"}\n" +
	"```\n" +
	"\n" +
	"{{recentMessages}}\n" +
	"\n" +
	"Given the recent messages, extract the following information about the requested coin transfer:\n" +
	"- Recipient wallet address\n" +
	"- Amount to transfer\n" +
	"- symbol (optional, defaults to RGAS)\n" +
	"- index (optional, 1-based index if multiple coins with same symbol exist)\n" +
	"\n" +
	"Respond with a JSON markdown block containing only the extracted values."

var (
	placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)
	jsonBlockPattern   = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
)

// ComposeContext replaces {{key}} placeholders with values from state.
// Unknown keys become empty strings.
func ComposeContext(template string, state State) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(m string) string {
		key := placeholderPattern.FindStringSubmatch(m)[1]
		v, ok := state[key]
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	})
}

// ExtractJSON returns the body of the first fenced code block in a model
// reply, or the trimmed reply when it has none.
func ExtractJSON(reply []byte) []byte {
	if m := jsonBlockPattern.FindSubmatch(reply); m != nil {
		return []byte(strings.TrimSpace(string(m[1])))
	}
	return []byte(strings.TrimSpace(string(reply)))
}
