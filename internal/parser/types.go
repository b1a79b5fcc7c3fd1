package parser

import (
	"strings"

	"data-audit/internal/model"
)

// KindOf classifies a database type name as reported by
// information_schema.columns.data_type (PostgreSQL and Snowflake spellings).
func KindOf(dataType string) model.Kind {
	t := strings.ToLower(strings.TrimSpace(dataType))
	// Strip length/precision: "numeric(10,2)" -> "numeric"
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}

	switch {
	case t == "":
		return model.KindUnknown
	case strings.HasPrefix(t, "timestamp"), t == "date", t == "datetime":
		return model.KindTemporal
	case strings.Contains(t, "char"), t == "text", t == "string", t == "citext", t == "name", t == "uuid":
		return model.KindText
	}

	switch t {
	case "smallint", "integer", "int", "bigint", "int2", "int4", "int8", "tinyint", "byteint",
		"real", "float", "float4", "float8", "double", "double precision",
		"numeric", "decimal", "number", "serial", "bigserial", "smallserial":
		return model.KindNumeric
	}

	return model.KindUnknown
}
