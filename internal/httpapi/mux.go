package httpapi

import (
	"net/http"
)

func NewMux(probes ...Probe) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, probes)
	return mux
}
