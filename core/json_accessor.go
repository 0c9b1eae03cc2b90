package core

import (
	"github.com/buger/jsonparser"
)

// JSONPathAccessor looks up string values by key path without decoding the
// whole document.
type JSONPathAccessor struct{}

func (JSONPathAccessor) GetString(data []byte, path ...string) (string, bool) {
	if len(data) == 0 || len(path) == 0 {
		return "", false
	}
	value, err := jsonparser.GetString(data, path...)
	if err != nil {
		return "", false
	}
	return value, true
}

var profileUsernamePath = []string{"response", "user", "name"}
