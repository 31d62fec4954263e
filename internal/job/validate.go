package job

import (
	_ "embed"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed request.schema.json
var RequestSchema []byte

type Validator struct {
	schema *gojsonschema.Schema
}

func NewValidator() (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(RequestSchema))
	if err != nil {
		return nil, errors.Wrap(err, "creating schema")
	}

	return &Validator{schema: schema}, nil
}

// Validate checks a raw request body against the request schema.
func (v *Validator) Validate(body []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return errors.Wrap(err, "validating request")
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for idx, err := range result.Errors() {
			errs[idx] = err.String()
		}

		return errors.Errorf(
			"failed to validate request with schema. errors: %v", errs,
		)
	}

	return nil
}
