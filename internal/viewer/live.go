package viewer

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/patientor/patientor/internal/platform/websocket"
	"github.com/patientor/patientor/internal/state"
)

// Topics browsers subscribe to.
const (
	TopicPatients  = "patients"
	TopicDiagnoses = "diagnoses"
)

// PatientTopic is the topic for changes to one patient.
func PatientTopic(id string) string {
	return "patient:" + id
}

// PublishChanges forwards every state change made through v to pub.
func (v *Viewer) PublishChanges(pub websocket.EventPublisher) {
	v.store.Subscribe(func(prev, next state.State) {
		ch := state.Diff(prev, next)
		if ch.Empty() {
			return
		}
		ctx := context.Background()
		var events []websocket.Event
		for _, id := range ch.Added {
			events = append(events, websocket.Event{Type: "patient.added", Topic: TopicPatients, PatientID: id})
		}
		for _, id := range ch.Updated {
			events = append(events,
				websocket.Event{Type: "patient.updated", Topic: PatientTopic(id), PatientID: id},
				websocket.Event{Type: "patient.updated", Topic: TopicPatients, PatientID: id},
			)
		}
		if ch.DiagnosesChanged {
			events = append(events, websocket.Event{Type: "diagnoses.updated", Topic: TopicDiagnoses})
		}
		for _, ev := range events {
			if err := pub.Publish(ctx, ev); err != nil {
				v.logger.Warn().Err(err).Str("topic", ev.Topic).Msg("publishing change")
			}
		}
	})
}

// liveScript reloads the page when its topic changes, unless the user is
// editing a form.
const liveScript = `(function () {
  var m = location.pathname.match(/^\/patients\/([^/]+)$/);
  var topic = m ? "patient:" + decodeURIComponent(m[1]) : "patients";
  var proto = location.protocol === "https:" ? "wss:" : "ws:";
  var ws = new WebSocket(proto + "//" + location.host + "/events?topic=" + encodeURIComponent(topic));
  ws.onmessage = function () {
    var el = document.activeElement;
    if (el && el.form) return;
    location.reload();
  };
})();
`

func (h *Handler) LiveScript(c echo.Context) error {
	return c.Blob(http.StatusOK, "text/javascript; charset=utf-8", []byte(liveScript))
}
