package proto

// ClientData precedes every Data message, naming the external table the
// following block belongs to (empty for the main query input/output
// stream).
type ClientData struct {
	TableName string
}

// EncodeAware writes the table name. The revision parameter is accepted for
// symmetry with other *Aware encoders; no field here is currently gated by
// protocol revision.
func (d ClientData) EncodeAware(buf *Buffer, _ int) {
	buf.EncodeStr(d.TableName)
}
