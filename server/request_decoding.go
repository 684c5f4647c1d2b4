package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/pkg/errors"
)

const maxRequestBody = 1 << 20

// decodeJSON reads a JSON request body into dst. Malformed bodies are ErrInvalidRequest.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Wrapf(apperrors.ErrInvalidRequest, "malformed request body: %v", err)
	}
	return nil
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return errors.Errorf("expected an integer, got %s", data)
	}
	*f = flexInt(n)
	return nil
}
