/* response.go
 * Contains the JSON responders and the mapping from upstream results to gateway status codes
 */

package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"numerai-bot/api/api"
	"numerai-bot/api/external"
	"numerai-bot/api/store"
	"numerai-bot/api/validate"
)

func respondWithJSON(w http.ResponseWriter, code int, payload Envelope) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal response: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, Envelope{Error: message})
}

// respondUpstream writes the result of a Numerai API read.
// Preconditions: receives the result, the upstream status and the error returned with them
// Postconditions: writes 200 with the data on success, 502 with the issues on a validation error, 504 when the
// upstream could not be reached, 404 when the upstream answered 404 and 502 for any other upstream status
func respondUpstream(w http.ResponseWriter, status int, err error, data any) {
	envelope := Envelope{UpstreamStatus: &status}

	var verr *validate.ValidationError
	switch {
	case errors.As(err, &verr):
		envelope.Error = "upstream response did not match the expected shape"
		envelope.Issues = verr.Issues
		respondWithJSON(w, http.StatusBadGateway, envelope)
	case errors.Is(err, external.ErrUsernameRequired):
		envelope.Error = err.Error()
		respondWithJSON(w, http.StatusBadRequest, envelope)
	case err != nil:
		envelope.Error = err.Error()
		respondWithJSON(w, http.StatusInternalServerError, envelope)
	case status == external.StatusTransportError:
		envelope.Error = "upstream could not be reached"
		respondWithJSON(w, http.StatusGatewayTimeout, envelope)
	case status == http.StatusNotFound:
		envelope.Error = "not found upstream"
		respondWithJSON(w, http.StatusNotFound, envelope)
	case status != http.StatusOK:
		envelope.Error = fmt.Sprintf("upstream returned status %d", status)
		respondWithJSON(w, http.StatusBadGateway, envelope)
	default:
		envelope.Data = data
		respondWithJSON(w, http.StatusOK, envelope)
	}
}

// respondArchive writes the result of a read from the snapshot store
func respondArchive(w http.ResponseWriter, err error, data any) {
	switch {
	case errors.Is(err, api.ErrStoreDisabled):
		respondWithError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, store.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case err != nil:
		log.Printf("archive read failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "failed to read archive")
	default:
		respondWithJSON(w, http.StatusOK, Envelope{Data: data})
	}
}
