package handlers

import (
	"encoding/json"

	"github.com/Laisky/errors/v2"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// bindJSON decodes body into dst and runs struct validation, so alt
// request handlers can validate against the pre-read body bytes
// (gateway.Prepare already consumed the gin request body reader).
func bindJSON(body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	if err := validate.Struct(dst); err != nil {
		return errors.Wrap(err, "validate request body")
	}
	return nil
}
