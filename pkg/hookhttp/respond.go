package hookhttp

import (
	"net/http"

	"github.com/joeydtaylor/steeze-hooks/pkg/codec"
)

func writeJSON(w http.ResponseWriter, payload []byte, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if len(payload) > 0 {
		_, _ = w.Write(payload)
		return
	}
	_, _ = w.Write([]byte(`{}`))
}

func writeValue(w http.ResponseWriter, status int, v any) {
	b, err := codec.JSON.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, b, status)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	b, _ := codec.JSON.Marshal(map[string]string{"error": msg})
	writeJSON(w, b, status)
}
