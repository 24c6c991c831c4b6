package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"mafia-table/internal/tts"
)

func (s *server) ttsSpeakHandler(w http.ResponseWriter, r *http.Request) {
	if !s.tts.Enabled() {
		writeHTTPError(w, http.StatusServiceUnavailable, "tts_disabled")
		return
	}
	var body tts.SpeakRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeHTTPError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if strings.TrimSpace(body.Text) == "" || len(body.Text) > tts.MaxTextLen {
		writeHTTPError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	audio, err := s.tts.Synthesize(r.Context(), body)
	if err != nil {
		log.Error().Err(err).Msg("tts synthesis failed")
		writeHTTPError(w, http.StatusBadGateway, "tts_failed")
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}
