package eventlog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const recordSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["ts", "type", "reason", "metrics"],
  "additionalProperties": false,
  "properties": {
    "ts": {"type": "string", "minLength": 1},
    "type": {"enum": ["TRADE_EXECUTED", "TRADE_SKIPPED", "RISK_LOCKED"]},
    "reason": {"type": "string", "pattern": "^[A-Z][A-Z0-9_]*$"},
    "metrics": {"type": "object"}
  }
}`

func compileRecordSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("record.json", strings.NewReader(recordSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile("record.json")
}

func validateLine(schema *jsonschema.Schema, raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("record does not match schema: %w", err)
	}
	return nil
}
