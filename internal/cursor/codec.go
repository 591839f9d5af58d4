// Package cursor encodes the resume position of a payment listing as an
// opaque, URL-safe token.
//
// A token is the unpadded base64url form of "<unix millis>:<id>". Precision
// below one millisecond is dropped.
package cursor

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

const delimiter = ":"

var encoding = base64.RawURLEncoding

// Encode returns nil when either part is missing, which callers use to signal
// that there is no next page.
func Encode(createdAt *time.Time, id *int64) *string {
	if createdAt == nil || id == nil {
		return nil
	}
	raw := strconv.FormatInt(createdAt.UnixMilli(), 10) + delimiter + strconv.FormatInt(*id, 10)
	token := encoding.EncodeToString([]byte(raw))
	return &token
}

// Decode never fails. A missing, blank or malformed token yields (nil, nil),
// which callers treat as "start from the first page".
func Decode(token *string) (*time.Time, *int64) {
	if token == nil {
		return nil, nil
	}
	t := strings.TrimSpace(*token)
	if t == "" {
		return nil, nil
	}

	raw, err := encoding.DecodeString(strings.TrimRight(t, "="))
	if err != nil {
		return nil, nil
	}

	msPart, idPart, ok := strings.Cut(string(raw), delimiter)
	if !ok {
		return nil, nil
	}
	ms, err := strconv.ParseInt(msPart, 10, 64)
	if err != nil {
		return nil, nil
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return nil, nil
	}

	createdAt := time.UnixMilli(ms).UTC()
	return &createdAt, &id
}
