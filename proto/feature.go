package proto

// ClientVersionMajor, ClientVersionMinor, ClientVersionPatch identify this
// implementation in the Hello handshake.
const (
	ClientVersionMajor = 24
	ClientVersionMinor = 6
	ClientVersionPatch = 1
)

// ClientRevision is the maximum protocol revision this client advertises.
// The session revision is min(ClientRevision, server-advertised revision).
const ClientRevision = 54465

// MinSupportedRevision is the lowest server revision this client will
// speak to; below it, the handshake fails with "unsupported protocol".
const MinSupportedRevision = 54406

// Feature gates a single protocol capability behind a minimum revision
// number, replacing scattered "if revision >= N" conditionals with one
// decision table consulted by both reader and writer.
type Feature struct {
	Name        string
	MinRevision int
}

// In reports whether the feature is available at the given session
// revision.
func (f Feature) In(revision int) bool {
	return revision >= f.MinRevision
}

var (
	FeatureTempTables              = Feature{"temporary_tables", 50264}
	FeatureTimezone                = Feature{"server_timezone", 54058}
	FeatureQuotaKeyInClientInfo    = Feature{"quota_key_in_client_info", 54060}
	FeatureDisplayName             = Feature{"server_display_name", 54372}
	FeatureVersionPatch            = Feature{"version_patch", 54401}
	FeatureAddendum                = Feature{"addendum", 54441}
	FeatureParallelReplicas        = Feature{"parallel_replicas", 54441}
	FeatureOpenTelemetry           = Feature{"opentelemetry", 54442}
	FeatureInterServerSecretV2     = Feature{"inter_server_secret_v2", 54441}
	FeatureInitialQueryStartTime   = Feature{"initial_query_start_time", 54449}
	FeatureCustomSerialization     = Feature{"custom_serialization", 54454}
	FeaturePasswordComplexityRules = Feature{"password_complexity_rules", 54458}
	FeatureParameters              = Feature{"query_parameters", 54459}
	FeatureServerQueryTimeInProgress = Feature{"server_query_time_in_progress", 54460}
	FeatureTotalBytesInProgress    = Feature{"total_bytes_in_progress", 54463}
)
