package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kozaktomas/photobook/internal/constants"
)

func isJobTerminal(status JobStatus) bool {
	return status == JobStatusCompleted || status == JobStatusFailed
}

// streamExportEvents writes the job snapshot as a "status" event, then relays
// job events until the job finishes or the client goes away. A comment line
// is sent between events so proxies keep slow exports open.
func streamExportEvents(w http.ResponseWriter, r *http.Request, job *ExportJob) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	eventCh := job.AddListener()
	defer job.RemoveListener(eventCh)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	snap := job.Snapshot()
	sendSSEEvent(w, flusher, "status", snap)
	if isJobTerminal(snap.Status) {
		return
	}

	heartbeat := time.NewTicker(constants.SSEHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case event, ok := <-eventCh:
			if !ok {
				// Closed when the job ends; the final event may have been dropped.
				sendSSEEvent(w, flusher, "status", job.Snapshot())
				return
			}
			sendSSEEvent(w, flusher, event.Type, event)
			if event.Type == eventCompleted || event.Type == eventFailed {
				return
			}
		}
	}
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, eventType string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		jsonData = []byte(`{}`)
	}
	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, jsonData)
	flusher.Flush()
}
