package unitycatalog

// Wire objects returned by the Unity Catalog REST API. Optional fields are
// pointers so an absent field stays distinguishable from an empty value and
// can surface as SQL NULL downstream. Timestamps arrive as epoch
// milliseconds; an absent timestamp decodes as zero.

type CatalogInfo struct {
	Name        string  `json:"name"`
	CatalogType *string `json:"catalog_type"`
	Comment     *string `json:"comment"`
	Owner       *string `json:"owner"`
	CreatedAt   int64   `json:"created_at"`
	CreatedBy   *string `json:"created_by"`
	UpdatedAt   int64   `json:"updated_at"`
	UpdatedBy   *string `json:"updated_by"`
	MetastoreID *string `json:"metastore_id"`
}

type SchemaInfo struct {
	Name      string  `json:"name"`
	Comment   *string `json:"comment"`
	Owner     *string `json:"owner"`
	CreatedAt int64   `json:"created_at"`
	CreatedBy *string `json:"created_by"`
	UpdatedAt int64   `json:"updated_at"`
	UpdatedBy *string `json:"updated_by"`
}

// TableSummary is the stub returned by the table listing endpoint. Only the
// name is trusted; everything else comes from the per-table detail call.
type TableSummary struct {
	Name string `json:"name"`
}

type TableInfo struct {
	Name             string       `json:"name"`
	TableType        *string      `json:"table_type"`
	DataSourceFormat *string      `json:"data_source_format"`
	StorageLocation  *string      `json:"storage_location"`
	Comment          *string      `json:"comment"`
	Owner            *string      `json:"owner"`
	CreatedAt        int64        `json:"created_at"`
	CreatedBy        *string      `json:"created_by"`
	UpdatedAt        int64        `json:"updated_at"`
	UpdatedBy        *string      `json:"updated_by"`
	Columns          []ColumnInfo `json:"columns"`
}

type ColumnInfo struct {
	Name           string  `json:"name"`
	Position       *int    `json:"position"`
	TypeText       *string `json:"type_text"`
	TypeName       *string `json:"type_name"`
	Nullable       *bool   `json:"nullable"`
	Comment        *string `json:"comment"`
	PartitionIndex *int    `json:"partition_index"`
}

type VolumeInfo struct {
	Name            string  `json:"name"`
	VolumeType      *string `json:"volume_type"`
	StorageLocation *string `json:"storage_location"`
	Comment         *string `json:"comment"`
	Owner           *string `json:"owner"`
	CreatedAt       int64   `json:"created_at"`
	CreatedBy       *string `json:"created_by"`
	UpdatedAt       int64   `json:"updated_at"`
	UpdatedBy       *string `json:"updated_by"`
}

// VolumeListing is the result of the volume capability probe. Supported is
// false when the deployment does not expose the volumes endpoint at all;
// the caller treats that as an empty listing, not a failure.
type VolumeListing struct {
	Volumes   []VolumeInfo
	Supported bool
}

type catalogListResponse struct {
	Catalogs []CatalogInfo `json:"catalogs"`
}

type schemaListResponse struct {
	Schemas []SchemaInfo `json:"schemas"`
}

type tableListResponse struct {
	Tables []TableSummary `json:"tables"`
}

type volumeListResponse struct {
	Volumes []VolumeInfo `json:"volumes"`
}

// apiErrorBody is the error envelope the API returns alongside non-2xx
// status codes.
type apiErrorBody struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}
