package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/baechuer/account-service/internal/domain"
)

// MaxJSONBody bounds JSON request bodies. Uploads use multipart and are not affected.
const MaxJSONBody = 64 << 10

// DecodeJSON decodes exactly one JSON object from the request body into dst.
// Unknown fields, trailing values and oversized bodies are invalid_json.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return domain.ErrInvalidJSON(errors.New("empty body"))
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxJSONBody+1))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ErrInvalidJSON(errors.New("empty body"))
		}
		return domain.ErrInvalidJSON(err)
	}
	if dec.InputOffset() > MaxJSONBody {
		return domain.ErrInvalidJSON(errors.New("body too large"))
	}

	switch err := dec.Decode(&struct{}{}); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return domain.ErrInvalidJSON(err)
	default:
		return domain.ErrInvalidJSON(errors.New("multiple JSON values"))
	}
}
