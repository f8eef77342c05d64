package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/xelth-com/tradetrack/internal/notify"
	"github.com/xelth-com/tradetrack/internal/websocket"
)

// topic reads and checks the {topic} path variable.
func topic(w http.ResponseWriter, req *http.Request) (notify.Topic, bool) {
	t := notify.Topic(mux.Vars(req)["topic"])
	if !t.Valid() {
		respondDetail(w, http.StatusNotFound, "Unknown notification topic")
		return "", false
	}
	return t, true
}

func (r *Router) listNotifications(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"pending":   r.bus.Snapshot(),
		"refreshed": r.bus.Refreshed(),
	})
}

func (r *Router) topicNotifications(w http.ResponseWriter, req *http.Request) {
	t, ok := topic(w, req)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, r.bus.Pending(t))
}

func (r *Router) clearTopic(w http.ResponseWriter, req *http.Request) {
	t, ok := topic(w, req)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"cleared": r.bus.ClearAll(t)})
}

// clearNotification dismisses one entry; imei is optional
func (r *Router) clearNotification(w http.ResponseWriter, req *http.Request) {
	t, ok := topic(w, req)
	if !ok {
		return
	}
	n := r.bus.Clear(t, mux.Vars(req)["po"], req.URL.Query().Get("imei"))
	respondJSON(w, http.StatusOK, map[string]int{"cleared": n})
}

// RefreshRequest names the collections to mark stale. Empty means all.
type RefreshRequest struct {
	Types []notify.DataType `json:"types"`
}

func (r *Router) triggerRefresh(w http.ResponseWriter, req *http.Request) {
	var body RefreshRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		respondDetail(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	var stamps map[notify.DataType]time.Time
	if len(body.Types) == 0 {
		stamps = r.bus.TriggerGlobalRefresh()
	} else {
		stamps = r.bus.TriggerRefresh(body.Types...)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"refreshed": stamps})
}

// serveWs streams bus events to a browser. The token may be passed as a query parameter.
func (r *Router) serveWs(w http.ResponseWriter, req *http.Request) {
	if r.hub == nil {
		respondDetail(w, http.StatusServiceUnavailable, "Notification stream is not available")
		return
	}
	snapshot := func() (map[notify.Topic][]notify.Notification, map[notify.DataType]time.Time) {
		return r.bus.Snapshot(), r.bus.Refreshed()
	}
	websocket.ServeWs(r.hub, actor(req).UserID, snapshot, w, req)
}
