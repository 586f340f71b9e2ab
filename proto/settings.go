package proto

import "github.com/go-faster/errors"

// Setting is a single name/value pair in the query's settings profile. The
// wire value is always sent as its textual representation; the server
// parses and type-checks it.
type Setting struct {
	Key       string
	Value     string
	Important bool
	Custom    bool
}

// Settings is the ordered list of settings sent at the head of a Query
// message, terminated by an empty key.
type Settings []Setting

// Encode writes each setting followed by the empty-string terminator.
func (s Settings) Encode(buf *Buffer) {
	for _, set := range s {
		buf.EncodeStr(set.Key)
		buf.EncodeBool(set.Important)
		buf.EncodeBool(set.Custom)
		buf.EncodeStr(set.Value)
	}
	buf.EncodeStr("")
}

// Parameter is a single bound query parameter (`{name:Type}` substitution),
// sent immediately after Settings when FeatureParameters is negotiated.
type Parameter struct {
	Key   string
	Value string
}

// Parameters is the ordered list of bound parameters, terminated the same
// way as Settings.
type Parameters []Parameter

// Encode writes each parameter followed by the empty-string terminator.
func (p Parameters) Encode(buf *Buffer) {
	for _, pr := range p {
		buf.EncodeStr(pr.Key)
		buf.EncodeBool(false)
		buf.EncodeBool(true) // is_custom always true: parameters are client-supplied
		buf.EncodeStr(pr.Value)
	}
	buf.EncodeStr("")
}

// DecodeSettings reads settings until the terminating empty key.
func DecodeSettings(r *Reader) (Settings, error) {
	var out Settings
	for {
		key, err := r.Str()
		if err != nil {
			return nil, errors.Wrap(err, "key")
		}
		if key == "" {
			return out, nil
		}
		important, err := r.Bool()
		if err != nil {
			return nil, errors.Wrap(err, "important")
		}
		custom, err := r.Bool()
		if err != nil {
			return nil, errors.Wrap(err, "custom")
		}
		value, err := r.Str()
		if err != nil {
			return nil, errors.Wrap(err, "value")
		}
		out = append(out, Setting{Key: key, Value: value, Important: important, Custom: custom})
	}
}
