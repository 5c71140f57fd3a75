package httptransport

import (
	"encoding/json"
	"net/http"

	dErrors "projectdir/pkg/domain-errors"
)

// messageResponse is the envelope for acknowledgements and failures:
// {"message": ...}.
type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// writeError maps domain error codes onto HTTP statuses. Validation and
// constraint failures are both "bad input"; only genuine internal faults
// become 500s.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if dErrors.HasCode(err, dErrors.CodeBadRequest) || dErrors.HasCode(err, dErrors.CodeConflict) {
		status = http.StatusBadRequest
	}
	writeMessage(w, status, dErrors.Message(err))
}
