package types

// Telemetry metric names for CloudWatch.
// All components MUST use these constants.
const (
	// Metric Names
	MetricAPILatency         = "APILatency"
	MetricAPIRequestCount    = "APIRequestCount"
	MetricBeachesScanned     = "BeachesScanned"
	MetricGoNowAlerts        = "GoNowAlerts"
	MetricScanFailure        = "ScanFailure"
	MetricExternalAPIFailure = "ExternalAPIFailure"

	// Dimension Keys
	DimEndpoint = "Endpoint"
	DimMethod   = "Method"
	DimStatus   = "Status"
	DimBeach    = "BeachID"
	DimProvider = "Provider"

	// Metric Namespace
	MetricNamespace = "BeachScore"
)
