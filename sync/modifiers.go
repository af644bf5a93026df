package sync

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

func init() {

	// plainText renders an HTML-bearing string field as plain text,
	// e.g. "description|@plainText" in a record shape.
	gjson.AddModifier("plainText", func(raw, arg string) string {
		res := gjson.Parse(raw)
		if !res.Exists() {
			return ""
		}
		// json.Marshal rather than strconv.Quote: Quote emits Go escapes
		// like \x01 that are not valid JSON.
		encoded, err := json.Marshal(StripHTMLToText(res.String()))
		if err != nil {
			return ""
		}
		return string(encoded)
	})

}
