package schema

// Schema is a map of field names to their expected types.
// Example: {"value": Int(), "tags": Slice(String())}
type Schema map[string]Type

// Validate checks if data conforms to the schema.
// Returns an error aggregating all validation failures found.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		// No schema = no validation
		return nil
	}

	var errs []error

	for fieldName, fieldType := range schema {
		value, exists := data[fieldName]
		if !exists {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: "required",
				Value:  nil,
			})
			continue
		}

		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}

	return nil
}

// ValidatePresent validates only the fields of data that appear in the
// schema, ignoring schema fields the data does not carry. Useful for
// partial configuration payloads.
func ValidatePresent(schema Schema, data map[string]any) error {
	var errs []error

	for fieldName, value := range data {
		fieldType, ok := schema[fieldName]
		if !ok {
			continue
		}
		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}

	return nil
}
