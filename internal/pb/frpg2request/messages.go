// Package frpg2request holds the handful of frpg2_request protobuf
// messages the login/auth handshake actually exchanges. The production
// schema is generated elsewhere and out of scope here; these types are
// hand-authored against google.golang.org/protobuf/encoding/protowire's
// tag/varint/bytes primitives so the wire format they read and write
// still matches real protoc-gen-go output field-for-field.
package frpg2request

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// RequestQueryLoginServerInfo is sent by the client on the login port.
// VersionNum is a 64-bit field (protobuf's JSON/text mapping renders
// 64-bit integers as quoted strings, matching the quoted versionnum
// seen on the wire versus the unquoted 32-bit port field below).
type RequestQueryLoginServerInfo struct {
	SteamID    string
	VersionNum uint64
}

func (m *RequestQueryLoginServerInfo) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, m.SteamID)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, m.VersionNum)
	return b
}

func (m *RequestQueryLoginServerInfo) Unmarshal(data []byte) error {
	return forEachField(data, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		switch num {
		case 1:
			s, err := v.asString()
			if err != nil {
				return err
			}
			m.SteamID = s
		case 2:
			n, err := v.asVarint()
			if err != nil {
				return err
			}
			m.VersionNum = n
		}
		return nil
	})
}

// RequestQueryLoginServerInfoResponse redirects the client to the auth
// server.
type RequestQueryLoginServerInfoResponse struct {
	ServerIP string
	Port     uint32
}

func (m *RequestQueryLoginServerInfoResponse) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, m.ServerIP)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Port))
	return b
}

func (m *RequestQueryLoginServerInfoResponse) Unmarshal(data []byte) error {
	return forEachField(data, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		switch num {
		case 1:
			s, err := v.asString()
			if err != nil {
				return err
			}
			m.ServerIP = s
		case 2:
			n, err := v.asVarint()
			if err != nil {
				return err
			}
			m.Port = uint32(n)
		}
		return nil
	})
}

// RequestHandshake carries the AES-128-CWC key the client wants the
// session switched to.
type RequestHandshake struct {
	AESCWCKey []byte
}

func (m *RequestHandshake) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, m.AESCWCKey)
	return b
}

func (m *RequestHandshake) Unmarshal(data []byte) error {
	return forEachField(data, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		if num == 1 {
			bs, err := v.asBytes()
			if err != nil {
				return err
			}
			m.AESCWCKey = bs
		}
		return nil
	})
}

// GetServiceStatus is sent by the client immediately after the cipher
// switch and the 16-byte sync block.
type GetServiceStatus struct {
	SteamID string
}

func (m *GetServiceStatus) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, m.SteamID)
	return b
}

func (m *GetServiceStatus) Unmarshal(data []byte) error {
	return forEachField(data, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		if num == 1 {
			s, err := v.asString()
			if err != nil {
				return err
			}
			m.SteamID = s
		}
		return nil
	})
}

// GetServiceStatusResponse is the server's fixed reply.
type GetServiceStatusResponse struct {
	ID           uint32
	SteamID      string
	UnknownField uint32
	VersionNum   uint64
}

func (m *GetServiceStatusResponse) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.ID))
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, m.SteamID)
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.UnknownField))
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, m.VersionNum)
	return b
}

func (m *GetServiceStatusResponse) Unmarshal(data []byte) error {
	return forEachField(data, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		switch num {
		case 1:
			n, err := v.asVarint()
			if err != nil {
				return err
			}
			m.ID = uint32(n)
		case 2:
			s, err := v.asString()
			if err != nil {
				return err
			}
			m.SteamID = s
		case 3:
			n, err := v.asVarint()
			if err != nil {
				return err
			}
			m.UnknownField = uint32(n)
		case 4:
			n, err := v.asVarint()
			if err != nil {
				return err
			}
			m.VersionNum = n
		}
		return nil
	})
}

// fieldValue is the raw decoded value for one wire field, deferring the
// interpretation (varint vs length-delimited) to the caller, matching how
// generated code dispatches on the declared Go struct field type.
type fieldValue struct {
	typ protowire.Type
	n   uint64
	b   []byte
}

func (v fieldValue) asVarint() (uint64, error) {
	if v.typ != protowire.VarintType {
		return 0, fmt.Errorf("frpg2request: expected varint field")
	}
	return v.n, nil
}

func (v fieldValue) asBytes() ([]byte, error) {
	if v.typ != protowire.BytesType {
		return nil, fmt.Errorf("frpg2request: expected length-delimited field")
	}
	return v.b, nil
}

func (v fieldValue) asString() (string, error) {
	b, err := v.asBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func forEachField(data []byte, fn func(protowire.Number, protowire.Type, fieldValue) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		var fv fieldValue
		fv.typ = typ

		switch typ {
		case protowire.VarintType:
			val, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			fv.n = val
			data = data[n:]
		case protowire.BytesType:
			val, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			fv.b = val
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
			continue
		}

		if err := fn(num, typ, fv); err != nil {
			return err
		}
	}
	return nil
}
