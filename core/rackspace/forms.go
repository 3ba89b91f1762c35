package rackspace

import (
	"fmt"
	"net/url"
	"strconv"
)

// FormValues flattens a payload into the form encoding the provider
// accepts on writes. Booleans are lowercased; everything else uses its
// natural string form.
func FormValues(payload map[string]any) url.Values {
	values := make(url.Values, len(payload))
	for key, val := range payload {
		switch v := val.(type) {
		case bool:
			values.Set(key, strconv.FormatBool(v))
		case string:
			values.Set(key, v)
		default:
			values.Set(key, fmt.Sprint(v))
		}
	}
	return values
}
