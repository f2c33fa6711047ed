package web

import (
	"encoding/json"
	"time"

	"github.com/rnse-control/canbridge/internal/status"
)

// StatusJSON is the JSON representation of the bridge status.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Interface     string         `json:"interface"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	StartTime     string         `json:"start_time"`
	Timestamp     string         `json:"timestamp"`
	MQTT          MQTTStatus     `json:"mqtt"`
	Counts        CountsJSON     `json:"frame_counts"`
	PerKind       map[string]int `json:"per_kind"`
}

// MQTTStatus reports broker connection state.
type MQTTStatus struct {
	Connected   bool   `json:"connected"`
	Broker      string `json:"broker"`
	TopicPrefix string `json:"topic_prefix"`
}

// CountsJSON is the JSON representation of frame counts.
type CountsJSON struct {
	Received    int `json:"received"`
	Published   int `json:"published"`
	DecodeSkips int `json:"decode_skips"`
	Transmitted int `json:"transmitted"`
}

func formatJSON(snap status.Snapshot) []byte {
	perKind := make(map[string]int, len(snap.Counts.PerKind))
	for k, v := range snap.Counts.PerKind {
		perKind[string(k)] = v
	}

	sj := StatusJSON{
		Status: StatusInner{
			Interface:     snap.Config.Interface,
			UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
			StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
			Timestamp:     snap.Now.UTC().Format(time.RFC3339),
			MQTT: MQTTStatus{
				Connected:   snap.MQTTConnected,
				Broker:      snap.Config.Broker,
				TopicPrefix: snap.Config.TopicPrefix,
			},
			Counts: CountsJSON{
				Received:    snap.Counts.Received,
				Published:   snap.Counts.Published,
				DecodeSkips: snap.Counts.DecodeSkips,
				Transmitted: snap.Counts.Transmitted,
			},
			PerKind: perKind,
		},
	}

	data, _ := json.MarshalIndent(sj, "", "  ")
	return data
}
