package domain

import "fmt"

// DataSourceError reports that the tracking daemon was unreachable or
// returned a malformed response. The pipeline degrades to partial or
// empty data and warns instead of aborting.
type DataSourceError struct {
	Op  string
	Err error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source: %s: %v", e.Op, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// NarrativeError reports a failed narrative-service call. The report is
// generated without the narrative section.
type NarrativeError struct {
	Op  string
	Err error
}

func (e *NarrativeError) Error() string {
	return fmt.Sprintf("narrative service: %s: %v", e.Op, e.Err)
}

func (e *NarrativeError) Unwrap() error { return e.Err }

// NotifyError reports a failed notification dispatch. It is logged and
// never propagated past the notification layer.
type NotifyError struct {
	Channel string
	Err     error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("notify %s: %v", e.Channel, e.Err)
}

func (e *NotifyError) Unwrap() error { return e.Err }

// ConfigError reports invalid or missing configuration. It is fatal and
// raised before any network call.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}
