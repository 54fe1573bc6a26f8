package frpg2request_test

import (
	"testing"

	"frpg2-server/internal/pb/frpg2request"

	"github.com/stretchr/testify/require"
)

func TestRequestQueryLoginServerInfoRoundTrip(t *testing.T) {
	want := frpg2request.RequestQueryLoginServerInfo{SteamID: "76561198000000000", VersionNum: 10}

	var got frpg2request.RequestQueryLoginServerInfo
	require.NoError(t, got.Unmarshal(want.Marshal()))
	require.Equal(t, want, got)
}

func TestRequestQueryLoginServerInfoResponseRoundTrip(t *testing.T) {
	want := frpg2request.RequestQueryLoginServerInfoResponse{ServerIP: "127.0.0.1", Port: 10001}

	var got frpg2request.RequestQueryLoginServerInfoResponse
	require.NoError(t, got.Unmarshal(want.Marshal()))
	require.Equal(t, want, got)
}

func TestRequestHandshakeRoundTrip(t *testing.T) {
	want := frpg2request.RequestHandshake{AESCWCKey: []byte("0123456789abcdef")}

	var got frpg2request.RequestHandshake
	require.NoError(t, got.Unmarshal(want.Marshal()))
	require.Equal(t, want, got)
}

func TestGetServiceStatusRoundTrip(t *testing.T) {
	want := frpg2request.GetServiceStatus{SteamID: "76561198000000001"}

	var got frpg2request.GetServiceStatus
	require.NoError(t, got.Unmarshal(want.Marshal()))
	require.Equal(t, want, got)
}

func TestGetServiceStatusResponseRoundTrip(t *testing.T) {
	want := frpg2request.GetServiceStatusResponse{ID: 2, SteamID: "\x00", UnknownField: 0, VersionNum: 0}

	var got frpg2request.GetServiceStatusResponse
	require.NoError(t, got.Unmarshal(want.Marshal()))
	require.Equal(t, want, got)
}
