// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

package frame

// SettingsId identifies one tunable carried in a SETTINGS frame.
type SettingsId uint32

const (
	SettingsUploadBandwidth             SettingsId = 1
	SettingsDownloadBandwidth           SettingsId = 2
	SettingsRoundTripTime               SettingsId = 3
	SettingsMaxConcurrentStreams        SettingsId = 4
	SettingsCurrentCwnd                 SettingsId = 5
	SettingsDownloadRetransRate         SettingsId = 6
	SettingsInitialWindowSize           SettingsId = 7
	SettingsClientCertificateVectorSize SettingsId = 8
)

// SettingsFlags are the per-entry flag bits of a SETTINGS value, packed
// into the top 8 bits of the 32-bit id word on the wire.
type SettingsFlags uint8

const (
	SettingsFlagPersistValue SettingsFlags = 1
	SettingsFlagPersisted    SettingsFlags = 2
)

// SettingsKey pairs a SettingsId with the per-entry flags it was sent or
// received with, mirroring org.eclipse.jetty.spdy.api.SettingsInfo.Key.
type SettingsKey struct {
	ID    SettingsId
	Flags SettingsFlags
}
