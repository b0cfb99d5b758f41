// Package ws implements the WebSocket simulator served at /ws/simulate.
//
// Protocol (JSON text frames):
//
//	server → {"event":"ready","data":{"generation":1,"coefficients_version":"..."}} on connect
//	client → SimulateRequest {"vehicle":{...},"controls":{...}}
//	server → {"event":"verdict","data":ReportResponse}
//	server → {"event":"error","error":"..."} for a bad frame or request
//	server → {"event":"reload","data":{...}} after a coefficient reload,
//	         followed by a fresh verdict for the client's last request
//
// Each client gets a dedicated write goroutine (writePump) that drains a
// buffered channel and sends ping frames every 54s. The read side answers
// frames in order and extends the read deadline on every frame or pong.
// A client whose buffer fills up is disconnected.
package ws
