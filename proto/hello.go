package proto

import "github.com/go-faster/errors"

// ClientHello is the first message sent on a new connection, identifying
// the client and requesting a database/user/password session.
type ClientHello struct {
	Name            string
	VersionMajor    int
	VersionMinor    int
	ProtocolVersion int

	Database string
	User     string
	Password string
}

// Encode writes the Hello client message.
func (h ClientHello) Encode(buf *Buffer) {
	ClientCodeHello.Encode(buf)
	buf.EncodeStr(h.Name)
	buf.EncodeUVarInt(uint64(h.VersionMajor))
	buf.EncodeUVarInt(uint64(h.VersionMinor))
	buf.EncodeUVarInt(uint64(h.ProtocolVersion))
	buf.EncodeStr(h.Database)
	buf.EncodeStr(h.User)
	buf.EncodeStr(h.Password)
}

// ServerHello is the server's handshake response, advertising its own
// version and the negotiated protocol revision.
type ServerHello struct {
	Name            string
	VersionMajor    int
	VersionMinor    int
	ProtocolVersion int
	VersionPatch    int

	Timezone    string
	DisplayName string

	PasswordComplexityRules []PasswordComplexityRule
}

// PasswordComplexityRule is a single server-enforced password rule,
// returned post FeaturePasswordComplexityRules purely for client-side
// diagnostics; this client never enforces it locally.
type PasswordComplexityRule struct {
	Pattern     string
	Explanation string
}

// Decode reads a Hello server message. The session's negotiated revision is
// min(ClientRevision, h.ProtocolVersion), computed by the caller once both
// sides have exchanged hellos.
func (h *ServerHello) Decode(r *Reader) error {
	name, err := r.Str()
	if err != nil {
		return errors.Wrap(err, "name")
	}
	major, err := r.UVarInt()
	if err != nil {
		return errors.Wrap(err, "version_major")
	}
	minor, err := r.UVarInt()
	if err != nil {
		return errors.Wrap(err, "version_minor")
	}
	revision, err := r.UVarInt()
	if err != nil {
		return errors.Wrap(err, "revision")
	}
	h.Name = name
	h.VersionMajor = int(major)
	h.VersionMinor = int(minor)
	h.ProtocolVersion = int(revision)

	if FeatureTimezone.In(h.ProtocolVersion) {
		tz, err := r.Str()
		if err != nil {
			return errors.Wrap(err, "timezone")
		}
		h.Timezone = tz
	}
	if FeatureDisplayName.In(h.ProtocolVersion) {
		dn, err := r.Str()
		if err != nil {
			return errors.Wrap(err, "display_name")
		}
		h.DisplayName = dn
	}
	if FeatureVersionPatch.In(h.ProtocolVersion) {
		patch, err := r.UVarInt()
		if err != nil {
			return errors.Wrap(err, "version_patch")
		}
		h.VersionPatch = int(patch)
	}
	if FeaturePasswordComplexityRules.In(h.ProtocolVersion) {
		n, err := r.UVarInt()
		if err != nil {
			return errors.Wrap(err, "password_complexity_rules count")
		}
		h.PasswordComplexityRules = make([]PasswordComplexityRule, 0, n)
		for i := uint64(0); i < n; i++ {
			pattern, err := r.Str()
			if err != nil {
				return errors.Wrapf(err, "rule %d pattern", i)
			}
			explanation, err := r.Str()
			if err != nil {
				return errors.Wrapf(err, "rule %d explanation", i)
			}
			h.PasswordComplexityRules = append(h.PasswordComplexityRules, PasswordComplexityRule{
				Pattern:     pattern,
				Explanation: explanation,
			})
		}
	}
	if FeatureInterServerSecretV2.In(h.ProtocolVersion) {
		if _, err := r.UInt64(); err != nil {
			return errors.Wrap(err, "nonce")
		}
	}
	return nil
}
