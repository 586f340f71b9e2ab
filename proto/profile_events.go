package proto

import "github.com/go-faster/errors"

// ProfileEventType distinguishes a monotonically increasing counter from a
// point-in-time gauge.
type ProfileEventType uint8

const (
	ProfileEventIncrement ProfileEventType = 1
	ProfileEventGauge     ProfileEventType = 2
)

// ProfileEvent is a single named counter/gauge sample, decoded from one row
// of a ProfileEvents block.
type ProfileEvent struct {
	Host        string
	CurrentTime uint32
	ThreadID    uint64
	Type        ProfileEventType
	Name        string
	Value       int64
}

// ProfileEvents accumulates a decoded ProfileEvents block's columns,
// re-used across blocks so no per-block allocation is needed.
type ProfileEvents struct {
	Host        *ColStr
	CurrentTime *NumColumn[uint32]
	ThreadID    *NumColumn[uint64]
	Type        *NumColumn[int8]
	Name        *ColStr
	Value       *NumColumn[int64]
}

func newProfileEvents() *ProfileEvents {
	return &ProfileEvents{
		Host:        NewColStr(),
		CurrentTime: NewColDateTime(),
		ThreadID:    NewColUInt64(),
		Type:        NewColInt8(),
		Name:        NewColStr(),
		Value:       NewColInt64(),
	}
}

// Result binds this ProfileEvents instance as the Result target of a Block
// decode, matching columns by their well-known names and falling back to
// ColumnFactory for anything unrecognized.
func (p *ProfileEvents) Result() Result {
	if p.Host == nil {
		*p = *newProfileEvents()
	}
	return profileEventsResult{p}
}

type profileEventsResult struct{ p *ProfileEvents }

func (r profileEventsResult) Column(name string, typ ColumnType) (ColResult, error) {
	switch name {
	case "host_name", "host":
		return r.p.Host, nil
	case "current_time":
		return r.p.CurrentTime, nil
	case "thread_id":
		return r.p.ThreadID, nil
	case "type":
		return r.p.Type, nil
	case "name":
		return r.p.Name, nil
	case "value":
		return r.p.Value, nil
	default:
		return ColumnFactory(typ)
	}
}

// All materializes every decoded row as a ProfileEvent slice.
func (p *ProfileEvents) All() ([]ProfileEvent, error) {
	if p.Host == nil {
		return nil, nil
	}
	n := p.Host.Rows()
	if p.Name.Rows() != n || p.Value.Rows() != n {
		return nil, errors.New("profile events: column length mismatch")
	}
	out := make([]ProfileEvent, n)
	for i := 0; i < n; i++ {
		out[i] = ProfileEvent{
			Host:        p.Host.Row(i),
			CurrentTime: p.CurrentTime.Row(i),
			ThreadID:    p.ThreadID.Row(i),
			Type:        ProfileEventType(p.Type.Row(i)),
			Name:        p.Name.Row(i),
			Value:       p.Value.Row(i),
		}
	}
	return out, nil
}
