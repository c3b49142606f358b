package config

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed permalink.schema.json
var permalinkSchemaJSON string

var permalinkSchema = jsonschema.MustCompileString("permalink.schema.json", permalinkSchemaJSON)

// Encode serializes c as base64 of its JSON form.
func Encode(c Config) string {
	raw, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(raw)
}

// Decode parses a permalink produced by Encode. A leading '#' is ignored.
// Fields absent from the payload keep their Defaults values. Anything
// malformed yields ok=false; Decode never panics.
func Decode(s string) (c Config, ok bool) {
	c, err := decode(s)
	if err != nil {
		return Config{}, false
	}
	return c, true
}

func decode(s string) (Config, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if raw == "" {
		return Config{}, fmt.Errorf("decode permalink: empty")
	}
	payload, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		// Tolerate links whose padding was stripped by a chat client.
		payload, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(raw, "="))
		if err != nil {
			return Config{}, fmt.Errorf("decode permalink: %w", err)
		}
	}

	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return Config{}, fmt.Errorf("decode permalink: %w", err)
	}
	if err := permalinkSchema.Validate(doc); err != nil {
		return Config{}, fmt.Errorf("decode permalink: %w", err)
	}
	fields := doc.(map[string]any)
	if err := roundIntegers(fields); err != nil {
		return Config{}, fmt.Errorf("decode permalink: %w", err)
	}
	normalized, err := json.Marshal(fields)
	if err != nil {
		return Config{}, fmt.Errorf("decode permalink: %w", err)
	}

	c := Defaults()
	if err := json.NewDecoder(bytes.NewReader(normalized)).Decode(&c); err != nil {
		return Config{}, fmt.Errorf("decode permalink: %w", err)
	}
	return c, nil
}

// roundIntegers rounds integer fields that arrive as fractional numbers so the
// typed decode accepts them.
func roundIntegers(fields map[string]any) error {
	for _, key := range []string{"width", "height", "octaves", "contourLevels"} {
		v, ok := fields[key].(float64)
		if !ok {
			continue
		}
		if math.Abs(v) > math.MaxInt32 {
			return fmt.Errorf("%s out of range", key)
		}
		fields[key] = math.Round(v)
	}
	return nil
}
