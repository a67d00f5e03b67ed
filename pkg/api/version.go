package api

// ApiVersion_0_1 is the current governance API version.
const ApiVersion_0_1 = "0.1"

// ServerVersion is the daemon version reported by /version and /health.
const ServerVersion = "0.1.0"

// ServiceName identifies the governance service in health responses.
const ServiceName = "SyncFlow Data Governance API"

type GetVersionRsp struct {
	ServerVersion string `json:"server_version"`
	ApiVersion    string `json:"api_version"`
}

type HealthRsp struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
