package proto

// Query is the wire representation of the Query client message: the
// envelope around a SQL statement, its settings, bound parameters and the
// ClientInfo describing the session that issued it.
type Query struct {
	ID          string
	Body        string
	Secret      string
	Stage       Stage
	Compression Compression
	Settings    Settings
	Parameters  Parameters
	Info        ClientInfo
}

// EncodeAware serializes the Query message for the given session revision.
func (q Query) EncodeAware(buf *Buffer, revision int) {
	ClientCodeQuery.Encode(buf)
	buf.EncodeStr(q.ID)

	info := q.Info
	if q.Secret != "" {
		info.Query = ClientQuerySecondary
	}
	info.EncodeAware(buf, revision)

	q.Settings.Encode(buf)

	if FeatureInterServerSecretV2.In(revision) {
		buf.EncodeStr(q.Secret)
	}

	buf.EncodeUVarInt(uint64(q.Stage))
	buf.EncodeUVarInt(uint64(q.Compression))
	buf.EncodeStr(q.Body)

	if FeatureParameters.In(revision) {
		q.Parameters.Encode(buf)
	}
}
