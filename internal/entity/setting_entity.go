package entity

import "time"

const (
	SettingGroupPusher  = "pusher"
	SettingGroupGeneral = "general"

	SettingPusherEnabled    = "pusher_enabled"
	SettingPusherAppKey     = "pusher_app_key"
	SettingPusherAppCluster = "pusher_app_cluster"
)

// Setting is a grouped key/value pair. Value is kept as raw JSON.
type Setting struct {
	Id        uint
	Group     string
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

// RealtimeConfig is what dashboards fetch before subscribing.
type RealtimeConfig struct {
	Enabled bool   `json:"pusher_enabled"`
	AppKey  string `json:"pusher_app_key"`
	Cluster string `json:"pusher_app_cluster"`
}
