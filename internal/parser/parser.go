package parser

import (
	"fmt"
	"os"

	"data-audit/internal/model"

	"github.com/pingcap/tidb/parser"
	"github.com/pingcap/tidb/parser/ast"
	"github.com/pingcap/tidb/parser/mysql"
	_ "github.com/pingcap/tidb/parser/test_driver"
)

// Schema maps table name to its declared columns, in declaration order
type Schema map[string][]model.Column

// SQLParser wraps the TiDB parser
type SQLParser struct {
	p *parser.Parser
}

func NewSQLParser() *SQLParser {
	return &SQLParser{
		p: parser.New(),
	}
}

// LoadSchema reads a DDL file and classifies every declared column
func (sp *SQLParser) LoadSchema(path string) (Schema, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return sp.ParseSchema(string(content))
}

// ParseSchema collects the CREATE TABLE statements of a DDL script.
// Other statements are ignored.
func (sp *SQLParser) ParseSchema(ddl string) (Schema, error) {
	stmts, _, err := sp.p.Parse(ddl, "", "")
	if err != nil {
		return nil, fmt.Errorf("schema parse error: %w", err)
	}

	schema := make(Schema)
	for _, stmt := range stmts {
		if createTable, ok := stmt.(*ast.CreateTableStmt); ok {
			schema[createTable.Table.Name.O] = parseCreateTable(createTable)
		}
	}

	return schema, nil
}

func parseCreateTable(node *ast.CreateTableStmt) []model.Column {
	cols := make([]model.Column, 0, len(node.Cols))
	for _, col := range node.Cols {
		cols = append(cols, model.Column{
			Name: col.Name.Name.O,
			Kind: kindOfFieldType(col),
		})
	}
	return cols
}

func kindOfFieldType(col *ast.ColumnDef) model.Kind {
	if col.Tp == nil {
		return model.KindUnknown
	}

	switch col.Tp.GetType() {
	case mysql.TypeTiny, mysql.TypeShort, mysql.TypeInt24, mysql.TypeLong, mysql.TypeLonglong,
		mysql.TypeFloat, mysql.TypeDouble, mysql.TypeNewDecimal, mysql.TypeYear:
		return model.KindNumeric
	case mysql.TypeDate, mysql.TypeDatetime, mysql.TypeTimestamp, mysql.TypeNewDate:
		return model.KindTemporal
	case mysql.TypeVarchar, mysql.TypeVarString, mysql.TypeString, mysql.TypeEnum, mysql.TypeSet,
		mysql.TypeTinyBlob, mysql.TypeMediumBlob, mysql.TypeLongBlob, mysql.TypeBlob:
		if col.Tp.GetCharset() == "binary" || mysql.HasBinaryFlag(col.Tp.GetFlag()) {
			return model.KindUnknown
		}
		return model.KindText
	default:
		return model.KindUnknown
	}
}
