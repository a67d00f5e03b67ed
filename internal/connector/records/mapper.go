package records

import (
	"time"

	"github.com/syncflow/syncflow/internal/connector/unitycatalog"
)

const timestampFormat = "2006-01-02T15:04:05Z"

// FormatTime renders t in the delivered timestamp format (UTC ISO-8601,
// second precision).
func FormatTime(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

// epochToUTC renders epoch milliseconds in the delivered timestamp format.
// Zero (an absent source timestamp) renders as the Unix epoch.
func epochToUTC(ms int64) string {
	return FormatTime(time.UnixMilli(ms))
}

// SchemaFullName composes the two-part schema key.
func SchemaFullName(catalogName, schemaName string) string {
	return catalogName + "." + schemaName
}

// TableFullName composes the three-part key used for both tables and
// volumes.
func TableFullName(catalogName, schemaName, objectName string) string {
	return catalogName + "." + schemaName + "." + objectName
}

// MapCatalog maps one catalog listing entry. An absent catalog type is
// reported as MANAGED_CATALOG.
func MapCatalog(c unitycatalog.CatalogInfo) Record {
	catalogType := "MANAGED_CATALOG"
	if c.CatalogType != nil {
		catalogType = *c.CatalogType
	}
	return Record{
		Table: TableCatalogs,
		Data: map[string]any{
			"catalog_name": c.Name,
			"catalog_type": catalogType,
			"comment":      c.Comment,
			"owner":        c.Owner,
			"created_at":   epochToUTC(c.CreatedAt),
			"created_by":   c.CreatedBy,
			"updated_at":   epochToUTC(c.UpdatedAt),
			"updated_by":   c.UpdatedBy,
			"metastore_id": c.MetastoreID,
		},
	}
}

// MapSchema maps one schema listing entry under its parent catalog.
func MapSchema(catalogName string, s unitycatalog.SchemaInfo) Record {
	return Record{
		Table: TableSchemas,
		Data: map[string]any{
			"full_name":    SchemaFullName(catalogName, s.Name),
			"catalog_name": catalogName,
			"schema_name":  s.Name,
			"comment":      s.Comment,
			"owner":        s.Owner,
			"created_at":   epochToUTC(s.CreatedAt),
			"created_by":   s.CreatedBy,
			"updated_at":   epochToUTC(s.UpdatedAt),
			"updated_by":   s.UpdatedBy,
		},
	}
}

// MapTable maps table detail metadata. The identity columns come from the
// listing walk, everything else from the detail call.
func MapTable(catalogName, schemaName, tableName string, d unitycatalog.TableInfo) Record {
	return Record{
		Table: TableTables,
		Data: map[string]any{
			"full_name":          TableFullName(catalogName, schemaName, tableName),
			"catalog_name":       catalogName,
			"schema_name":        schemaName,
			"table_name":         tableName,
			"table_type":         d.TableType,
			"data_source_format": d.DataSourceFormat,
			"storage_location":   d.StorageLocation,
			"comment":            d.Comment,
			"owner":              d.Owner,
			"created_at":         epochToUTC(d.CreatedAt),
			"created_by":         d.CreatedBy,
			"updated_at":         epochToUTC(d.UpdatedAt),
			"updated_by":         d.UpdatedBy,
		},
	}
}

// MapColumn maps one column of a table detail. index is the zero-based
// position in the detail listing, used when the API omits position. The
// data type prefers the rendered type text over the raw type name, and
// nullability defaults to true.
func MapColumn(tableFullName string, index int, col unitycatalog.ColumnInfo) Record {
	position := index
	if col.Position != nil {
		position = *col.Position
	}
	dataType := col.TypeText
	if dataType == nil {
		dataType = col.TypeName
	}
	nullable := true
	if col.Nullable != nil {
		nullable = *col.Nullable
	}
	return Record{
		Table: TableColumns,
		Data: map[string]any{
			"table_full_name": tableFullName,
			"column_name":     col.Name,
			"position":        position,
			"data_type":       dataType,
			"nullable":        nullable,
			"comment":         col.Comment,
			"partition_index": col.PartitionIndex,
		},
	}
}

// MapVolume maps one volume listing entry under its parent schema.
func MapVolume(catalogName, schemaName string, v unitycatalog.VolumeInfo) Record {
	return Record{
		Table: TableVolumes,
		Data: map[string]any{
			"full_name":        TableFullName(catalogName, schemaName, v.Name),
			"catalog_name":     catalogName,
			"schema_name":      schemaName,
			"volume_name":      v.Name,
			"volume_type":      v.VolumeType,
			"storage_location": v.StorageLocation,
			"comment":          v.Comment,
			"owner":            v.Owner,
			"created_at":       epochToUTC(v.CreatedAt),
			"created_by":       v.CreatedBy,
			"updated_at":       epochToUTC(v.UpdatedAt),
			"updated_by":       v.UpdatedBy,
		},
	}
}
