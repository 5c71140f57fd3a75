package httptransport

import (
	"io"
	"mime"
	"net/http"

	"projectdir/pkg/requestcontext"
)

// maxPayloadBytes bounds ingestion bodies; targeting payloads are small.
const maxPayloadBytes = 1 << 20

// handleCreateProject ingests one project group. The raw body is passed to
// the service untouched so the audit log can keep the payload verbatim.
func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	if !isJSONRequest(r) {
		writeMessage(w, http.StatusBadRequest, "not a json request")
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		h.logger.WarnContext(r.Context(), "unreadable request body",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err.Error(),
		)
		writeMessage(w, http.StatusBadRequest, "unable to read request body")
		return
	}
	if len(raw) == 0 {
		writeMessage(w, http.StatusBadRequest, "not a json request")
		return
	}

	if err := h.ingest.Ingest(r.Context(), raw); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "successfully wrote to projects")
}

func isJSONRequest(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	return err == nil && mediaType == "application/json"
}
