// Package records defines the five delivered tables and maps raw catalog
// API objects onto normalized rows. Mapping is pure: given the same input
// it always produces the same record, and absent optional fields become
// nil values, never errors.
package records

// Delivered table names.
const (
	TableCatalogs = "catalogs"
	TableSchemas  = "schemas"
	TableTables   = "tables"
	TableColumns  = "columns"
	TableVolumes  = "volumes"
)

// ColumnType is the logical type of a delivered column. Destinations map
// these onto their own type systems.
type ColumnType string

const (
	TypeString      ColumnType = "STRING"
	TypeInt         ColumnType = "INT"
	TypeBoolean     ColumnType = "BOOLEAN"
	TypeUTCDatetime ColumnType = "UTC_DATETIME"
)

type ColumnSpec struct {
	Name string
	Type ColumnType
}

// TableSchema declares one delivered table: its natural primary key and its
// columns in delivery order.
type TableSchema struct {
	Name       string
	PrimaryKey []string
	Columns    []ColumnSpec
}

// Record is one normalized row bound for a delivered table. Data is keyed
// by column name; nil values map to SQL NULL.
type Record struct {
	Table string
	Data  map[string]any
}

var declared = []TableSchema{
	{
		Name:       TableCatalogs,
		PrimaryKey: []string{"catalog_name"},
		Columns: []ColumnSpec{
			{Name: "catalog_name", Type: TypeString},
			{Name: "catalog_type", Type: TypeString},
			{Name: "comment", Type: TypeString},
			{Name: "owner", Type: TypeString},
			{Name: "created_at", Type: TypeUTCDatetime},
			{Name: "created_by", Type: TypeString},
			{Name: "updated_at", Type: TypeUTCDatetime},
			{Name: "updated_by", Type: TypeString},
			{Name: "metastore_id", Type: TypeString},
		},
	},
	{
		Name:       TableSchemas,
		PrimaryKey: []string{"full_name"},
		Columns: []ColumnSpec{
			{Name: "full_name", Type: TypeString},
			{Name: "catalog_name", Type: TypeString},
			{Name: "schema_name", Type: TypeString},
			{Name: "comment", Type: TypeString},
			{Name: "owner", Type: TypeString},
			{Name: "created_at", Type: TypeUTCDatetime},
			{Name: "created_by", Type: TypeString},
			{Name: "updated_at", Type: TypeUTCDatetime},
			{Name: "updated_by", Type: TypeString},
		},
	},
	{
		Name:       TableTables,
		PrimaryKey: []string{"full_name"},
		Columns: []ColumnSpec{
			{Name: "full_name", Type: TypeString},
			{Name: "catalog_name", Type: TypeString},
			{Name: "schema_name", Type: TypeString},
			{Name: "table_name", Type: TypeString},
			{Name: "table_type", Type: TypeString},
			{Name: "data_source_format", Type: TypeString},
			{Name: "storage_location", Type: TypeString},
			{Name: "comment", Type: TypeString},
			{Name: "owner", Type: TypeString},
			{Name: "created_at", Type: TypeUTCDatetime},
			{Name: "created_by", Type: TypeString},
			{Name: "updated_at", Type: TypeUTCDatetime},
			{Name: "updated_by", Type: TypeString},
		},
	},
	{
		Name:       TableColumns,
		PrimaryKey: []string{"table_full_name", "column_name"},
		Columns: []ColumnSpec{
			{Name: "table_full_name", Type: TypeString},
			{Name: "column_name", Type: TypeString},
			{Name: "position", Type: TypeInt},
			{Name: "data_type", Type: TypeString},
			{Name: "nullable", Type: TypeBoolean},
			{Name: "comment", Type: TypeString},
			{Name: "partition_index", Type: TypeInt},
		},
	},
	{
		Name:       TableVolumes,
		PrimaryKey: []string{"full_name"},
		Columns: []ColumnSpec{
			{Name: "full_name", Type: TypeString},
			{Name: "catalog_name", Type: TypeString},
			{Name: "schema_name", Type: TypeString},
			{Name: "volume_name", Type: TypeString},
			{Name: "volume_type", Type: TypeString},
			{Name: "storage_location", Type: TypeString},
			{Name: "comment", Type: TypeString},
			{Name: "owner", Type: TypeString},
			{Name: "created_at", Type: TypeUTCDatetime},
			{Name: "created_by", Type: TypeString},
			{Name: "updated_at", Type: TypeUTCDatetime},
			{Name: "updated_by", Type: TypeString},
		},
	},
}

var declaredByName = func() map[string]TableSchema {
	m := make(map[string]TableSchema, len(declared))
	for _, ts := range declared {
		m[ts.Name] = ts
	}
	return m
}()

// Declared returns the delivered table schemas in delivery order.
func Declared() []TableSchema {
	return declared
}

// SchemaFor looks up the schema of one delivered table.
func SchemaFor(table string) (TableSchema, bool) {
	ts, ok := declaredByName[table]
	return ts, ok
}
