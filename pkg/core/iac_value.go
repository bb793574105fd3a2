package core

type (
	// IaCValue is a late-bound reference to a property of a resource that is
	// only known once the external reconciliation engine has applied the
	// graph, such as a bucket's regional domain name or a function URL.
	// Wiring an IaCValue into another resource's field also records a graph
	// dependency between the two (see ResourceGraph.AddDependenciesReflect).
	IaCValue struct {
		ResourceId ResourceId
		Property   string
	}
)

// Well-known property names resolved by the engine.
const (
	ARN_IAC_VALUE                  = "arn"
	NAME_IAC_VALUE                 = "name"
	ID_IAC_VALUE                   = "id"
	URL_IAC_VALUE                  = "url"
	DOMAIN_NAME_IAC_VALUE          = "domain_name"
	REGIONAL_DOMAIN_NAME_IAC_VALUE = "regional_domain_name"
	ALL_OBJECTS_ARN_IAC_VALUE      = "all_objects_arn"
	STREAM_ARN_IAC_VALUE           = "stream_arn"
	ENDPOINT_IAC_VALUE             = "endpoint"
)

func ValueOf(r Resource, property string) IaCValue {
	return IaCValue{ResourceId: r.Id(), Property: property}
}

func (v IaCValue) IsZero() bool {
	return v.ResourceId.IsZero() && v.Property == ""
}
