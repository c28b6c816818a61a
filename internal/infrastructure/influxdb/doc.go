// Package influxdb records portal activity in InfluxDB v2.
//
// Every portal event (token added or removed, credentials provisioned,
// gate unlocked or refused, stream toggled) becomes one point in the
// portal_events measurement:
//
//	portal_events,kind=gate_unlocked,outcome=ok status=200i,count=1i
//
// Writes are non-blocking and batched (influxdb.batch_size points or
// influxdb.flush_interval seconds, whichever comes first). Asynchronous
// failures reach the callback set with SetOnError.
//
// InfluxDB is optional; the daemon only connects when influxdb.enabled
// is true.
package influxdb
