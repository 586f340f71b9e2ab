package proto

// Log is a single server-side log line streamed alongside a query.
type Log struct {
	Time     uint32
	ThreadID uint64
	QueryID  string
	Source   string
	Text     string
	Priority int8
}

// Logs accumulates a decoded Log block's columns, re-used across blocks.
type Logs struct {
	Time     *NumColumn[uint32]
	ThreadID *NumColumn[uint64]
	QueryID  *ColStr
	Source   *ColStr
	Text     *ColStr
	Priority *NumColumn[int8]
}

func newLogs() *Logs {
	return &Logs{
		Time:     NewColDateTime(),
		ThreadID: NewColUInt64(),
		QueryID:  NewColStr(),
		Source:   NewColStr(),
		Text:     NewColStr(),
		Priority: NewColInt8(),
	}
}

// Result binds this Logs instance as the Result target of a Block decode.
func (l *Logs) Result() Result {
	if l.Time == nil {
		*l = *newLogs()
	}
	return logsResult{l}
}

type logsResult struct{ l *Logs }

func (r logsResult) Column(name string, typ ColumnType) (ColResult, error) {
	switch name {
	case "event_time", "time":
		return r.l.Time, nil
	case "thread_id":
		return r.l.ThreadID, nil
	case "query_id":
		return r.l.QueryID, nil
	case "source":
		return r.l.Source, nil
	case "text":
		return r.l.Text, nil
	case "priority":
		return r.l.Priority, nil
	default:
		return ColumnFactory(typ)
	}
}

// All materializes every decoded row as a Log slice.
func (l *Logs) All() []Log {
	if l.Time == nil {
		return nil
	}
	n := l.Time.Rows()
	out := make([]Log, n)
	for i := 0; i < n; i++ {
		out[i] = Log{
			Time:     l.Time.Row(i),
			ThreadID: l.ThreadID.Row(i),
			QueryID:  l.QueryID.Row(i),
			Source:   l.Source.Row(i),
			Text:     l.Text.Row(i),
			Priority: l.Priority.Row(i),
		}
	}
	return out
}
