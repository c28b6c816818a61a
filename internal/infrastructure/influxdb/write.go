package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// PortalEventMeasurement holds one point per portal event.
const PortalEventMeasurement = "portal_events"

// WritePortalEvent records a portal event. kind and outcome are tags;
// status (the HTTP status returned) and count are fields so events can be
// summed per kind over time.
//
// Example:
//
//	client.WritePortalEvent("token_removed", "refused", 403, time.Now())
func (c *Client) WritePortalEvent(kind, outcome string, status int, at time.Time) {
	c.WritePointWithTime(PortalEventMeasurement,
		map[string]string{
			"kind":    kind,
			"outcome": outcome,
		},
		map[string]interface{}{
			"status": status,
			"count":  1,
		},
		at,
	)
}

// WritePointWithTime writes an arbitrary point. Writes on a closed client
// are dropped.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, at))
}
