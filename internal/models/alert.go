package models

// ResourceStatus is one item of the alert manager resource status listing,
// fetched with the most severe alert embedded.
type ResourceStatus struct {
	ID       string `json:"id"`
	Severity string `json:"severity"`
	Alert    Alert  `json:"alert"`
}

// Alert is the embedded alert of a ResourceStatus.
type Alert struct {
	ID       string `json:"id,omitempty"`
	Type     string `json:"type"`
	Severity string `json:"severity,omitempty"`
}

// ResourceStatusList is the body of a resource status listing.
type ResourceStatusList struct {
	Items []ResourceStatus `json:"items"`
}

// Resource is the subset of a managed resource needed to name it in a report.
type Resource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
