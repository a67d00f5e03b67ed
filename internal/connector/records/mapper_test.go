package records

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syncflow/syncflow/internal/connector/unitycatalog"
)

func ptr[T any](v T) *T {
	return &v
}

func TestTimestampNormalization(t *testing.T) {
	rec := MapCatalog(unitycatalog.CatalogInfo{Name: "main"})
	assert.Equal(t, "1970-01-01T00:00:00Z", rec.Data["created_at"])
	assert.Equal(t, "1970-01-01T00:00:00Z", rec.Data["updated_at"])

	rec = MapCatalog(unitycatalog.CatalogInfo{Name: "main", CreatedAt: 1700000000000})
	assert.Equal(t, "2023-11-14T22:13:20Z", rec.Data["created_at"])
}

func TestFormatTime(t *testing.T) {
	utc := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	assert.Equal(t, "2023-11-14T22:13:20Z", FormatTime(utc))

	// non-UTC inputs are normalized
	est := time.FixedZone("EST", -5*3600)
	assert.Equal(t, "2023-11-15T03:13:20Z", FormatTime(time.Date(2023, 11, 14, 22, 13, 20, 0, est)))
}

func TestMapCatalog(t *testing.T) {
	rec := MapCatalog(unitycatalog.CatalogInfo{
		Name:        "main",
		Owner:       ptr("ops"),
		MetastoreID: ptr("ms-1"),
	})
	assert.Equal(t, TableCatalogs, rec.Table)
	assert.Equal(t, "main", rec.Data["catalog_name"])
	assert.Equal(t, "MANAGED_CATALOG", rec.Data["catalog_type"], "absent catalog type gets the default")
	assert.Equal(t, ptr("ops"), rec.Data["owner"])
	assert.Nil(t, rec.Data["comment"])

	rec = MapCatalog(unitycatalog.CatalogInfo{Name: "ext", CatalogType: ptr("EXTERNAL_CATALOG")})
	assert.Equal(t, "EXTERNAL_CATALOG", rec.Data["catalog_type"])
}

func TestMapSchema(t *testing.T) {
	rec := MapSchema("main", unitycatalog.SchemaInfo{Name: "sales", Comment: ptr("sales data")})
	assert.Equal(t, TableSchemas, rec.Table)
	assert.Equal(t, "main.sales", rec.Data["full_name"])
	assert.Equal(t, "main", rec.Data["catalog_name"])
	assert.Equal(t, "sales", rec.Data["schema_name"])
	assert.Equal(t, ptr("sales data"), rec.Data["comment"])
	assert.Nil(t, rec.Data["owner"])
}

func TestMapTable(t *testing.T) {
	rec := MapTable("main", "sales", "orders", unitycatalog.TableInfo{
		Name:             "orders",
		TableType:        ptr("MANAGED"),
		DataSourceFormat: ptr("DELTA"),
		Comment:          ptr("fact table"),
		CreatedAt:        1700000000000,
	})
	assert.Equal(t, TableTables, rec.Table)
	assert.Equal(t, "main.sales.orders", rec.Data["full_name"])
	assert.Equal(t, "orders", rec.Data["table_name"])
	assert.Equal(t, ptr("MANAGED"), rec.Data["table_type"])
	assert.Equal(t, "2023-11-14T22:13:20Z", rec.Data["created_at"])
	assert.Nil(t, rec.Data["storage_location"])
}

func TestMapColumn(t *testing.T) {
	t.Run("PositionFallback", func(t *testing.T) {
		rec := MapColumn("main.sales.orders", 3, unitycatalog.ColumnInfo{Name: "note"})
		assert.Equal(t, 3, rec.Data["position"], "absent position falls back to the list index")

		rec = MapColumn("main.sales.orders", 3, unitycatalog.ColumnInfo{Name: "id", Position: ptr(0)})
		assert.Equal(t, 0, rec.Data["position"], "an explicit zero position is kept")
	})

	t.Run("DataTypePreference", func(t *testing.T) {
		rec := MapColumn("main.sales.orders", 0, unitycatalog.ColumnInfo{
			Name:     "id",
			TypeText: ptr("bigint"),
			TypeName: ptr("LONG"),
		})
		assert.Equal(t, ptr("bigint"), rec.Data["data_type"])

		rec = MapColumn("main.sales.orders", 0, unitycatalog.ColumnInfo{Name: "id", TypeName: ptr("LONG")})
		assert.Equal(t, ptr("LONG"), rec.Data["data_type"])

		rec = MapColumn("main.sales.orders", 0, unitycatalog.ColumnInfo{Name: "id"})
		assert.Nil(t, rec.Data["data_type"])
	})

	t.Run("Defaults", func(t *testing.T) {
		rec := MapColumn("main.sales.orders", 0, unitycatalog.ColumnInfo{Name: "id"})
		assert.Equal(t, "main.sales.orders", rec.Data["table_full_name"])
		assert.Equal(t, true, rec.Data["nullable"], "nullability defaults to true")
		assert.Nil(t, rec.Data["partition_index"])

		rec = MapColumn("main.sales.orders", 0, unitycatalog.ColumnInfo{
			Name:           "region",
			Nullable:       ptr(false),
			PartitionIndex: ptr(1),
		})
		assert.Equal(t, false, rec.Data["nullable"])
		assert.Equal(t, ptr(1), rec.Data["partition_index"])
	})
}

func TestMapVolume(t *testing.T) {
	rec := MapVolume("main", "sales", unitycatalog.VolumeInfo{
		Name:       "raw_files",
		VolumeType: ptr("MANAGED"),
	})
	assert.Equal(t, TableVolumes, rec.Table)
	assert.Equal(t, "main.sales.raw_files", rec.Data["full_name"])
	assert.Equal(t, "raw_files", rec.Data["volume_name"])
	assert.Equal(t, ptr("MANAGED"), rec.Data["volume_type"])
	assert.Nil(t, rec.Data["owner"])
}

func TestDeclaredSchemas(t *testing.T) {
	decl := Declared()
	require.Len(t, decl, 5)

	names := make([]string, 0, len(decl))
	for _, ts := range decl {
		names = append(names, ts.Name)
	}
	assert.Equal(t, []string{TableCatalogs, TableSchemas, TableTables, TableColumns, TableVolumes}, names)

	columns, ok := SchemaFor(TableColumns)
	require.True(t, ok)
	assert.Equal(t, []string{"table_full_name", "column_name"}, columns.PrimaryKey)
	assert.Len(t, columns.Columns, 7)

	tables, ok := SchemaFor(TableTables)
	require.True(t, ok)
	assert.Equal(t, []string{"full_name"}, tables.PrimaryKey)

	_, ok = SchemaFor("unknown")
	assert.False(t, ok)
}

func TestMapperDeterminism(t *testing.T) {
	in := unitycatalog.CatalogInfo{Name: "main", Owner: ptr("ops"), CreatedAt: 1700000000000}
	assert.Equal(t, MapCatalog(in), MapCatalog(in))
}
