package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ID identifies a backend record. The backend sends numeric ids while the
// console also needs string ids for optimistic rows, so both forms decode.
type ID string

func (id ID) String() string { return string(id) }

// IsTemporary reports whether the id was minted locally for an optimistic row.
func (id ID) IsTemporary() bool { return strings.HasPrefix(string(id), TemporaryIDPrefix) }

const TemporaryIDPrefix = "tmp-"

func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}
