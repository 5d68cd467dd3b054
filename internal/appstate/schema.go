package appstate

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed profile.schema.json
var profileSchemaJSON []byte

const profileSchemaURL = "schema://pending-profile.json"

var (
	profileSchemaOnce sync.Once
	profileSchema     *jsonschema.Schema
	profileSchemaErr  error
)

func compiledProfileSchema() (*jsonschema.Schema, error) {
	profileSchemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal(profileSchemaJSON, &def); err != nil {
			profileSchemaErr = fmt.Errorf("parse profile schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(profileSchemaURL, def); err != nil {
			profileSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		profileSchema, profileSchemaErr = c.Compile(profileSchemaURL)
	})
	return profileSchema, profileSchemaErr
}

// checkPendingProfile reports whether raw is a well-formed pending profile.
func checkPendingProfile(raw []byte) error {
	var parsed any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	schema, err := compiledProfileSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
