package httptransport

import (
	"net/http"
	"strconv"

	"projectdir/internal/selection"
)

// handleRequestProject answers a selection query. Both a match and a
// genuine not-found use status 200; an internal fault is collapsed into the
// not-found body as well (already logged and counted by the engine).
func (h *Handler) handleRequestProject(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := selection.Filters{
		ProjectID: intArg(q.Get("projectid")),
		Country:   stringArg(q.Get("country")),
		MinNumber: intArg(q.Get("number")),
		Keyword:   stringArg(q.Get("keyword")),
	}

	outcome := h.selection.Select(r.Context(), filters)
	if outcome.Status != selection.StatusFound {
		writeMessage(w, http.StatusOK, "no project found")
		return
	}
	writeJSON(w, http.StatusOK, outcome.Projection)
}

func stringArg(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// intArg treats an unparsable value as an absent filter rather than an
// error.
func intArg(v string) *int64 {
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
